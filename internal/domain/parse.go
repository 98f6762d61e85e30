package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// missingSentinels are the placeholder strings meaning "no measurement".
// Matching is case-insensitive after trimming.
var missingSentinels = []string{"", "-", "no data"}

// seoul is the time zone of AirKorea timestamps. KST has no daylight saving,
// so a fixed zone avoids depending on the host tzdata.
var seoul = time.FixedZone("KST", 9*60*60)

// ParseOptionalNumber converts a raw field to a number. Absent fields,
// sentinels, unparseable text, NaN and infinities all yield nil.
func ParseOptionalNumber(raw RawValue) *float64 {
	if !raw.Valid {
		return nil
	}
	s := strings.TrimSpace(raw.Value)
	for _, sentinel := range missingSentinels {
		if strings.EqualFold(s, sentinel) {
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseDataTime parses "2006-01-02 15:04" in KST. AirKorea reports the last
// hour of a day as "24:00", which is rolled over to 00:00 of the next day.
// Returns nil when the value is absent or malformed.
func parseDataTime(raw RawValue) *time.Time {
	s := raw.String()
	if s == "" {
		return nil
	}

	rollover := false
	if date, clock, ok := strings.Cut(s, " "); ok && strings.HasPrefix(clock, "24:") {
		s = date + " 00:" + strings.TrimPrefix(clock, "24:")
		rollover = true
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", s, seoul)
	if err != nil {
		return nil
	}
	if rollover {
		t = t.AddDate(0, 0, 1)
	}
	return &t
}
