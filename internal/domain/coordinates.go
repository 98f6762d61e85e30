package domain

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Coordinates is a WGS-84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RegionCoordinate is the default display position of a region.
type RegionCoordinate struct {
	Region string
	Coordinates
}

// RegionCoordinateTable maps region names to default positions. It is an
// ordered list because the station-name scan returns the first match.
type RegionCoordinateTable []RegionCoordinate

// DefaultRegionCoordinates returns the city-hall positions of the 17 sido.
func DefaultRegionCoordinates() RegionCoordinateTable {
	return RegionCoordinateTable{
		{Region: "서울", Coordinates: Coordinates{Lat: 37.5665, Lng: 126.9780}},
		{Region: "부산", Coordinates: Coordinates{Lat: 35.1796, Lng: 129.0756}},
		{Region: "대구", Coordinates: Coordinates{Lat: 35.8714, Lng: 128.6014}},
		{Region: "인천", Coordinates: Coordinates{Lat: 37.4563, Lng: 126.7052}},
		{Region: "광주", Coordinates: Coordinates{Lat: 35.1595, Lng: 126.8526}},
		{Region: "대전", Coordinates: Coordinates{Lat: 36.3504, Lng: 127.3845}},
		{Region: "울산", Coordinates: Coordinates{Lat: 35.5384, Lng: 129.3114}},
		{Region: "세종", Coordinates: Coordinates{Lat: 36.4800, Lng: 127.2890}},
		{Region: "경기", Coordinates: Coordinates{Lat: 37.4138, Lng: 127.5183}},
		{Region: "강원", Coordinates: Coordinates{Lat: 37.8228, Lng: 128.1555}},
		{Region: "충북", Coordinates: Coordinates{Lat: 36.8, Lng: 127.7}},
		{Region: "충남", Coordinates: Coordinates{Lat: 36.5, Lng: 126.8}},
		{Region: "전북", Coordinates: Coordinates{Lat: 35.7175, Lng: 127.153}},
		{Region: "전남", Coordinates: Coordinates{Lat: 34.8679, Lng: 126.991}},
		{Region: "경북", Coordinates: Coordinates{Lat: 36.4919, Lng: 128.888}},
		{Region: "경남", Coordinates: Coordinates{Lat: 35.4606, Lng: 128.2132}},
		{Region: "제주", Coordinates: Coordinates{Lat: 33.4996, Lng: 126.5312}},
	}
}

// Regions returns the region names in table order.
func (t RegionCoordinateTable) Regions() []string {
	names := make([]string, len(t))
	for i, rc := range t {
		names[i] = rc.Region
	}
	return names
}

// Lookup returns the default position of region.
func (t RegionCoordinateTable) Lookup(region string) (Coordinates, bool) {
	region = normalizeName(region)
	if region == "" {
		return Coordinates{}, false
	}
	for _, rc := range t {
		if normalizeName(rc.Region) == region {
			return rc.Coordinates, true
		}
	}
	return Coordinates{}, false
}

// CoordinateStrategy is one step of the coordinate fallback chain.
type CoordinateStrategy func(rec RawStationRecord) (Coordinates, bool)

// Strategies returns the fallback chain in evaluation order: the record's own
// coordinates, its region's default position, then the first region whose
// name appears in the station name.
func (t RegionCoordinateTable) Strategies() []CoordinateStrategy {
	return []CoordinateStrategy{
		OwnCoordinates,
		t.RegionDefault,
		t.StationNameScan,
	}
}

// Resolve runs the fallback chain and returns the first position found,
// or nil when the station cannot be placed.
func (t RegionCoordinateTable) Resolve(rec RawStationRecord) *Coordinates {
	for _, attempt := range t.Strategies() {
		if c, ok := attempt(rec); ok {
			return &c
		}
	}
	return nil
}

// OwnCoordinates uses dmY/dmX when both parse as finite numbers.
func OwnCoordinates(rec RawStationRecord) (Coordinates, bool) {
	lat := ParseOptionalNumber(rec.DmY)
	lng := ParseOptionalNumber(rec.DmX)
	if lat == nil || lng == nil {
		return Coordinates{}, false
	}
	if math.Abs(*lat) > 90 || math.Abs(*lng) > 180 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *lat, Lng: *lng}, true
}

// RegionDefault looks up the record's region in the table.
func (t RegionCoordinateTable) RegionDefault(rec RawStationRecord) (Coordinates, bool) {
	return t.Lookup(rec.RegionName())
}

// StationNameScan returns the first table region contained in the station name.
func (t RegionCoordinateTable) StationNameScan(rec RawStationRecord) (Coordinates, bool) {
	name := rec.Name()
	if name == "" {
		return Coordinates{}, false
	}
	for _, rc := range t {
		if ContainsName(name, rc.Region) {
			return rc.Coordinates, true
		}
	}
	return Coordinates{}, false
}

// ContainsName reports whether needle occurs in haystack after NFC
// normalization. Hangul from some sources arrives decomposed into jamo,
// which would otherwise never match the precomposed table names.
func ContainsName(haystack, needle string) bool {
	needle = normalizeName(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(normalizeName(haystack), needle)
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
