package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
)

// thresholdRangeFile is one tier entry of the thresholds YAML file.
// An omitted max means the range is unbounded.
type thresholdRangeFile struct {
	Tier  domain.GradeTier `yaml:"tier"`
	Min   float64          `yaml:"min"`
	Max   *float64         `yaml:"max"`
	Label string           `yaml:"label"`
	Color string           `yaml:"color"`
}

// LoadThresholdsFile reads per-pollutant range overrides from a YAML file and
// merges them over base. Pollutants absent from the file keep base's ranges.
//
//	PM25:
//	  - {tier: GOOD, min: 0, max: 15, label: 좋음, color: "#4CAF50"}
//	  - {tier: MODERATE, min: 15, max: 35, label: 보통, color: "#FFC107"}
//	  - {tier: BAD, min: 35, max: 75, label: 나쁨, color: "#FF9800"}
//	  - {tier: VERY_BAD, min: 75, label: 매우나쁨, color: "#F44336"}
func LoadThresholdsFile(path string, base domain.ThresholdTable) (domain.ThresholdTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read THRESHOLDS_FILE: %w", err)
	}
	return ParseThresholds(data, base)
}

// ParseThresholds decodes YAML range overrides and merges them over base.
func ParseThresholds(data []byte, base domain.ThresholdTable) (domain.ThresholdTable, error) {
	var file map[domain.Pollutant][]thresholdRangeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse THRESHOLDS_FILE: %w", err)
	}

	overrides := make(domain.ThresholdTable, len(file))
	for p, entries := range file {
		ranges := make([]domain.ThresholdRange, len(entries))
		for i, e := range entries {
			upper := math.Inf(1)
			if e.Max != nil {
				upper = *e.Max
			}
			ranges[i] = domain.ThresholdRange{Tier: e.Tier, Min: e.Min, Max: upper, Label: e.Label, Color: e.Color}
		}
		overrides[p] = ranges
	}

	table, err := base.WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid THRESHOLDS_FILE: %w", err)
	}
	return table, nil
}
