package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RawValue is a scalar field from the AirKorea payload. The API documents
// every field as a string, but numbers and nulls appear in practice.
// Valid is false when the field was absent or null.
type RawValue struct {
	Value string
	Valid bool
}

// Raw is a convenience constructor for a present value.
func Raw(s string) RawValue {
	return RawValue{Value: s, Valid: true}
}

// String returns the trimmed value, or "" when absent.
func (v RawValue) String() string {
	if !v.Valid {
		return ""
	}
	return strings.TrimSpace(v.Value)
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = RawValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("raw value: %w", err)
		}
		*v = RawValue{Value: s, Valid: true}
	case '{', '[':
		return fmt.Errorf("raw value: unexpected %s", data)
	default:
		// numbers and booleans keep their literal text
		*v = RawValue{Value: string(data), Valid: true}
	}
	return nil
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// RawStationRecord is one item of the AirKorea real-time response, plus the
// region it was requested for.
type RawStationRecord struct {
	StationName RawValue `json:"stationName"`
	SidoName    RawValue `json:"sidoName"`
	DataTime    RawValue `json:"dataTime"`
	PM25Value   RawValue `json:"pm25Value"`
	PM10Value   RawValue `json:"pm10Value"`
	O3Value     RawValue `json:"o3Value"`
	DmX         RawValue `json:"dmX"` // longitude
	DmY         RawValue `json:"dmY"` // latitude

	// Region is the sido the record was fetched for. Set by the pipeline.
	Region string `json:"-"`
}

// Name returns the trimmed station name.
func (r RawStationRecord) Name() string {
	return r.StationName.String()
}

// RegionName returns the requested region, falling back to the sidoName field.
func (r RawStationRecord) RegionName() string {
	if region := strings.TrimSpace(r.Region); region != "" {
		return region
	}
	return r.SidoName.String()
}

// HasValue reports whether the pollutant field for p carries a measurement.
func (r RawStationRecord) HasValue(p Pollutant) bool {
	return ParseOptionalNumber(r.valueFor(p)) != nil
}

func (r RawStationRecord) valueFor(p Pollutant) RawValue {
	switch p {
	case PM25:
		return r.PM25Value
	case PM10:
		return r.PM10Value
	case O3:
		return r.O3Value
	default:
		return RawValue{}
	}
}
