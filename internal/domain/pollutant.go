package domain

import (
	"encoding/json"
	"fmt"
)

// Pollutant identifies a measured air pollutant.
type Pollutant string

const (
	PM25 Pollutant = "PM25"
	PM10 Pollutant = "PM10"
	O3   Pollutant = "O3"
)

// Pollutants lists every pollutant in evaluation order. The order decides
// which pollutant supplies the overall label when several share the worst tier.
var Pollutants = []Pollutant{PM25, PM10, O3}

// Valid reports whether p is one of the known pollutants.
func (p Pollutant) Valid() bool {
	switch p {
	case PM25, PM10, O3:
		return true
	default:
		return false
	}
}

// Unit returns the concentration unit used by AirKorea for the pollutant.
func (p Pollutant) Unit() string {
	switch p {
	case PM25, PM10:
		return "µg/m³"
	case O3:
		return "ppm"
	default:
		return ""
	}
}

// GradeTier is an air-quality severity bucket. Higher values are more severe.
type GradeTier int

const (
	Good GradeTier = iota
	Moderate
	Bad
	VeryBad
)

var tierNames = map[GradeTier]string{
	Good:     "GOOD",
	Moderate: "MODERATE",
	Bad:      "BAD",
	VeryBad:  "VERY_BAD",
}

// Tiers lists every tier from least to most severe.
var Tiers = []GradeTier{Good, Moderate, Bad, VeryBad}

func (t GradeTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("GradeTier(%d)", int(t))
}

// Valid reports whether t is one of the four defined tiers.
func (t GradeTier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// ParseGradeTier converts a tier name such as "VERY_BAD" to a GradeTier.
func ParseGradeTier(s string) (GradeTier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return Good, fmt.Errorf("unknown grade tier %q", s)
}

func (t GradeTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *GradeTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("grade tier: %w", err)
	}
	parsed, err := ParseGradeTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText lets GradeTier be used as a YAML scalar and a JSON map key.
func (t GradeTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *GradeTier) UnmarshalText(text []byte) error {
	parsed, err := ParseGradeTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
