// Command genmock turns captured AirKorea region responses into a fixture of
// classified station readings. It runs the same representative selection and
// normalization as the refresh cycle so the fixture matches live output.
//
// Each input file is named after its region (서울.json, 부산.json, ...) and
// holds either a full AirKorea response or a bare items array.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -fixtures-dir data/mock/airkorea \
//	  -thresholds thresholds.yaml \
//	  -out data/mock/readings.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wibaek/soma-hands-on-2/internal/config"
	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

type envelope struct {
	Response struct {
		Body struct {
			Items []domain.RawStationRecord `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("fixtures-dir", "", "directory of per-region AirKorea response files")
	thresholdsFile := flag.String("thresholds", "", "optional YAML threshold overrides")
	out := flag.String("out", "", "output path for the readings fixture")
	flag.Parse()

	if *dir == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -fixtures-dir, -out")
	}

	thresholds := domain.DefaultThresholds()
	if *thresholdsFile != "" {
		t, err := config.LoadThresholdsFile(*thresholdsFile, thresholds)
		if err != nil {
			return err
		}
		thresholds = t
	}
	normalizer := domain.NewNormalizer(thresholds, domain.DefaultRegionCoordinates())

	paths, err := filepath.Glob(filepath.Join(*dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	readings := make([]domain.StationReading, 0, len(paths))
	for _, path := range paths {
		region := strings.TrimSuffix(filepath.Base(path), ".json")
		records, err := readRecords(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for i := range records {
			records[i].Region = region
		}

		rep, ok := pipeline.SelectRepresentative(region, records)
		if !ok {
			log.Printf("%s: no stations", region)
			continue
		}
		reading := normalizer.Normalize(rep)
		readings = append(readings, reading)
		log.Printf("%s: %d stations, representative %s (%s)", region, len(records), reading.StationName, reading.Overall.Tier)
	}

	if err := writeJSON(*out, readings); err != nil {
		return fmt.Errorf("writing readings fixture: %w", err)
	}
	log.Printf("wrote readings fixture: %s", *out)

	printStats(readings)
	return nil
}

func readRecords(path string) ([]domain.RawStationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []domain.RawStationRecord
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return env.Response.Body.Items, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(readings []domain.StationReading) {
	tiers := make(map[domain.GradeTier]int)
	unplaced := 0
	for _, r := range readings {
		tiers[r.Overall.Tier]++
		if !r.Displayable() {
			unplaced++
		}
	}

	fmt.Printf("\n=== Readings: %d ===\n", len(readings))
	for _, t := range domain.Tiers {
		fmt.Printf("  %-9s %d\n", t, tiers[t])
	}
	fmt.Printf("  unplaced  %d\n", unplaced)
}
