package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Display colors shared by every pollutant in the default table.
const (
	ColorGood     = "#4CAF50"
	ColorModerate = "#FFC107"
	ColorBad      = "#FF9800"
	ColorVeryBad  = "#F44336"
)

// ThresholdRange is one tier's concentration band for a pollutant.
//
// Max is inclusive. Min is inclusive for the least severe tier and exclusive
// otherwise, so adjacent ranges share a boundary without overlapping: with
// PM2.5 good up to 15 and moderate up to 35, 15 is good and 15.1 is moderate.
type ThresholdRange struct {
	Tier  GradeTier
	Min   float64
	Max   float64 // math.Inf(1) for the most severe tier
	Label string
	Color string
}

// Contains reports whether v falls inside the range.
func (r ThresholdRange) Contains(v float64) bool {
	if v > r.Max {
		return false
	}
	if r.Tier == Good {
		return v >= r.Min
	}
	return v > r.Min
}

type thresholdRangeJSON struct {
	Tier  GradeTier `json:"tier"`
	Min   float64   `json:"min"`
	Max   *float64  `json:"max"` // null when unbounded
	Label string    `json:"label"`
	Color string    `json:"color"`
}

// MarshalJSON encodes an unbounded Max as null, since JSON has no infinity.
func (r ThresholdRange) MarshalJSON() ([]byte, error) {
	out := thresholdRangeJSON{Tier: r.Tier, Min: r.Min, Label: r.Label, Color: r.Color}
	if !math.IsInf(r.Max, 1) {
		upper := r.Max
		out.Max = &upper
	}
	return json.Marshal(out)
}

func (r *ThresholdRange) UnmarshalJSON(data []byte) error {
	var in thresholdRangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("threshold range: %w", err)
	}
	*r = ThresholdRange{Tier: in.Tier, Min: in.Min, Max: math.Inf(1), Label: in.Label, Color: in.Color}
	if in.Max != nil {
		r.Max = *in.Max
	}
	return nil
}

// ThresholdTable holds the ascending tier ranges of every pollutant.
type ThresholdTable map[Pollutant][]ThresholdRange

// DefaultThresholds returns the national forecast grade boundaries.
func DefaultThresholds() ThresholdTable {
	return ThresholdTable{
		PM25: standardRanges(15, 35, 75),
		PM10: standardRanges(30, 80, 150),
		O3:   standardRanges(0.03, 0.09, 0.15),
	}
}

// standardRanges builds the four tiers from the good, moderate, and bad upper bounds.
func standardRanges(good, moderate, bad float64) []ThresholdRange {
	return []ThresholdRange{
		{Tier: Good, Min: 0, Max: good, Label: "좋음", Color: ColorGood},
		{Tier: Moderate, Min: good, Max: moderate, Label: "보통", Color: ColorModerate},
		{Tier: Bad, Min: moderate, Max: bad, Label: "나쁨", Color: ColorBad},
		{Tier: VeryBad, Min: bad, Max: math.Inf(1), Label: "매우나쁨", Color: ColorVeryBad},
	}
}

// Ranges returns the ranges for p, or nil if p has no entry.
func (t ThresholdTable) Ranges(p Pollutant) []ThresholdRange {
	return t[p]
}

// Range returns the range of tier for pollutant p.
func (t ThresholdTable) Range(p Pollutant, tier GradeTier) (ThresholdRange, bool) {
	for _, r := range t[p] {
		if r.Tier == tier {
			return r, true
		}
	}
	return ThresholdRange{}, false
}

// WithOverrides returns a copy of t where every pollutant present in
// overrides has its ranges replaced. The result is validated.
func (t ThresholdTable) WithOverrides(overrides ThresholdTable) (ThresholdTable, error) {
	merged := make(ThresholdTable, len(t))
	for p, ranges := range t {
		merged[p] = append([]ThresholdRange(nil), ranges...)
	}
	for p, ranges := range overrides {
		merged[p] = append([]ThresholdRange(nil), ranges...)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Validate checks that each pollutant's ranges partition [0, +Inf): one range
// per tier in ascending order, starting at zero, each starting where the
// previous one ends, the last one unbounded.
func (t ThresholdTable) Validate() error {
	for _, p := range Pollutants {
		if _, ok := t[p]; !ok {
			return fmt.Errorf("thresholds: missing pollutant %s", p)
		}
	}
	for p, ranges := range t {
		if !p.Valid() {
			return fmt.Errorf("thresholds: unknown pollutant %q", p)
		}
		if err := validateRanges(ranges); err != nil {
			return fmt.Errorf("thresholds %s: %w", p, err)
		}
	}
	return nil
}

func validateRanges(ranges []ThresholdRange) error {
	if len(ranges) != len(Tiers) {
		return fmt.Errorf("want %d ranges, got %d", len(Tiers), len(ranges))
	}
	for i, r := range ranges {
		if r.Tier != Tiers[i] {
			return fmt.Errorf("range %d: want tier %s, got %s", i, Tiers[i], r.Tier)
		}
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return fmt.Errorf("range %s: NaN bound", r.Tier)
		}
		if r.Max <= r.Min {
			return fmt.Errorf("range %s: max %g must exceed min %g", r.Tier, r.Max, r.Min)
		}
		if i == 0 && r.Min != 0 {
			return fmt.Errorf("range %s: must start at 0, got %g", r.Tier, r.Min)
		}
		if i > 0 && r.Min != ranges[i-1].Max {
			return fmt.Errorf("range %s: gap or overlap at %g (previous max %g)", r.Tier, r.Min, ranges[i-1].Max)
		}
	}
	if last := ranges[len(ranges)-1]; !math.IsInf(last.Max, 1) {
		return errors.New("most severe range must be unbounded")
	}
	return nil
}
