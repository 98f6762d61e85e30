package pipeline

import "github.com/wibaek/soma-hands-on-2/internal/domain"

// selectionStrategy picks a representative from a region's records, or
// reports that it has no opinion.
type selectionStrategy func(region string, records []domain.RawStationRecord) (domain.RawStationRecord, bool)

// selectionStrategies are tried in order; the first match wins.
var selectionStrategies = []selectionStrategy{
	stationNamedAfterRegion,
	firstWithParticulates,
	firstRecord,
}

// SelectRepresentative chooses the one station displayed for a region.
// It returns false when the region returned no records.
func SelectRepresentative(region string, records []domain.RawStationRecord) (domain.RawStationRecord, bool) {
	for _, strategy := range selectionStrategies {
		if rec, ok := strategy(region, records); ok {
			return rec, true
		}
	}
	return domain.RawStationRecord{}, false
}

func stationNamedAfterRegion(region string, records []domain.RawStationRecord) (domain.RawStationRecord, bool) {
	for _, rec := range records {
		if domain.ContainsName(rec.Name(), region) {
			return rec, true
		}
	}
	return domain.RawStationRecord{}, false
}

func firstWithParticulates(_ string, records []domain.RawStationRecord) (domain.RawStationRecord, bool) {
	for _, rec := range records {
		if rec.HasValue(domain.PM25) && rec.HasValue(domain.PM10) {
			return rec, true
		}
	}
	return domain.RawStationRecord{}, false
}

func firstRecord(_ string, records []domain.RawStationRecord) (domain.RawStationRecord, bool) {
	if len(records) == 0 {
		return domain.RawStationRecord{}, false
	}
	return records[0], true
}
