package domain

// Normalizer converts raw station records into classified readings.
type Normalizer struct {
	thresholds ThresholdTable
	regions    RegionCoordinateTable
}

// NewNormalizer creates a Normalizer. A nil thresholds or regions argument
// selects the defaults.
func NewNormalizer(thresholds ThresholdTable, regions RegionCoordinateTable) *Normalizer {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	if regions == nil {
		regions = DefaultRegionCoordinates()
	}
	return &Normalizer{thresholds: thresholds, regions: regions}
}

// Thresholds returns the table used for classification.
func (n *Normalizer) Thresholds() ThresholdTable {
	return n.thresholds
}

// Normalize parses, locates, and classifies a raw record. It never fails:
// malformed or missing fields degrade to nil values and an unplaceable
// station gets nil coordinates.
func (n *Normalizer) Normalize(raw RawStationRecord) StationReading {
	conc := Concentrations{
		PM25: ParseOptionalNumber(raw.PM25Value),
		PM10: ParseOptionalNumber(raw.PM10Value),
		O3:   ParseOptionalNumber(raw.O3Value),
	}

	grades := make(map[Pollutant]Grade, len(Pollutants))
	for _, p := range Pollutants {
		if g, ok := n.thresholds.Classify(p, conc.Get(p)); ok {
			grades[p] = g
		}
	}
	overall := n.thresholds.Aggregate(conc)

	rec := raw
	return StationReading{
		StationName:    raw.Name(),
		Region:         raw.RegionName(),
		Coordinates:    n.regions.Resolve(raw),
		Concentrations: conc,
		Grades:         grades,
		Overall:        overall,
		Label:          overall.Label,
		Color:          overall.Color,
		ObservedAt:     parseDataTime(raw.DataTime),
		Raw:            &rec,
	}
}
