package domain

import "time"

// StationReading is the canonical, classified state of one station for a
// single refresh cycle. Readings are rebuilt on every refresh and never mutated.
type StationReading struct {
	StationName    string              `json:"station_name"`
	Region         string              `json:"region"`
	Coordinates    *Coordinates        `json:"coordinates"`
	Concentrations Concentrations      `json:"concentrations"`
	Grades         map[Pollutant]Grade `json:"grades"`
	Overall        Grade               `json:"overall"`
	Label          string              `json:"label"`
	Color          string              `json:"color"`
	ObservedAt     *time.Time          `json:"observed_at"`

	// Raw is the record the reading was built from, kept for diagnostics.
	Raw *RawStationRecord `json:"-"`
}

// GradeFor returns the classification of p, if the value was classifiable.
func (r StationReading) GradeFor(p Pollutant) (Grade, bool) {
	g, ok := r.Grades[p]
	return g, ok
}

// Displayable reports whether the reading can be placed on a map.
func (r StationReading) Displayable() bool {
	return r.Coordinates != nil
}
