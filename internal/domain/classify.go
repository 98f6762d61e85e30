package domain

import "math"

// Grade is a classified pollutant value: the tier plus the display label and
// color of the range that matched.
type Grade struct {
	Pollutant Pollutant `json:"pollutant"`
	Tier      GradeTier `json:"tier"`
	Label     string    `json:"label"`
	Color     string    `json:"color"`
}

// Concentrations holds the nullable pollutant values of one station.
type Concentrations struct {
	PM25 *float64 `json:"pm25"`
	PM10 *float64 `json:"pm10"`
	O3   *float64 `json:"o3"`
}

// Get returns the value for p, or nil when absent or p is unknown.
func (c Concentrations) Get(p Pollutant) *float64 {
	switch p {
	case PM25:
		return c.PM25
	case PM10:
		return c.PM10
	case O3:
		return c.O3
	default:
		return nil
	}
}

// Classify maps a pollutant value to its grade. It returns false when the
// value is nil, negative, not finite, or the pollutant has no ranges.
func (t ThresholdTable) Classify(p Pollutant, v *float64) (Grade, bool) {
	if v == nil {
		return Grade{}, false
	}
	value := *v
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return Grade{}, false
	}
	for _, r := range t[p] {
		if r.Contains(value) {
			return Grade{Pollutant: p, Tier: r.Tier, Label: r.Label, Color: r.Color}, true
		}
	}
	return Grade{}, false
}

// Aggregate returns the worst grade among the classifiable values in c.
// Pollutants are evaluated in [Pollutants] order and a later pollutant only
// wins with a strictly worse tier, so ties keep the earlier pollutant's label
// and color. With nothing classifiable the PM2.5 good grade is returned.
func (t ThresholdTable) Aggregate(c Concentrations) Grade {
	worst, found := Grade{}, false
	for _, p := range Pollutants {
		g, ok := t.Classify(p, c.Get(p))
		if !ok {
			continue
		}
		if !found || g.Tier > worst.Tier {
			worst, found = g, true
		}
	}
	if found {
		return worst
	}
	return t.defaultGrade()
}

func (t ThresholdTable) defaultGrade() Grade {
	if r, ok := t.Range(PM25, Good); ok {
		return Grade{Pollutant: PM25, Tier: Good, Label: r.Label, Color: r.Color}
	}
	return Grade{Pollutant: PM25, Tier: Good, Label: "좋음", Color: ColorGood}
}
