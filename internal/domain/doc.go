// Package domain models AirKorea real-time air-quality station data.
//
// # Data Source
//
// Readings come from the AirKorea open API published by the Korea Environment
// Corporation (https://www.airkorea.or.kr). The regional real-time endpoint
// (getCtprvnRltmMesureDnsty) returns every measuring station of one sido
// (province or metropolitan city) with its latest hourly concentrations.
//
// # AirKorea Data Conventions
//
// Numeric fields:
//
//	Concentrations arrive as JSON strings, e.g. "pm25Value": "23".
//	Some gateways and recorded fixtures send plain numbers or null instead,
//	so every scalar is decoded into a [RawValue].
//
// Missing measurements:
//
//	"-" is the AirKorea sentinel for "no measurement this hour" (station
//	offline, calibration, communication failure). Empty strings, null, and
//	"no data" are treated the same way. See [ParseOptionalNumber].
//
// Units:
//
//	PM2.5 and PM10 in µg/m³, O3 in ppm.
//
// Time format:
//
//	"YYYY-MM-DD HH:MM" in Korea Standard Time. The hour runs 01..24, so the
//	reading for midnight is reported as "24:00" of the previous day.
//
// Coordinates:
//
//	dmX is longitude and dmY is latitude (WGS-84). They come from the
//	station-list endpoint (getMsrstnList), not the real-time endpoint.
//
// # Grade Classification
//
// Each pollutant value maps to one of four tiers using the national
// forecast grade boundaries:
//
//	PM2.5: ≤15 good | ≤35 moderate | ≤75 bad | >75 very bad
//	PM10:  ≤30 good | ≤80 moderate | ≤150 bad | >150 very bad
//	O3:    ≤0.03 good | ≤0.09 moderate | ≤0.15 bad | >0.15 very bad
//
// The overall station grade is the worst tier among its pollutants. When two
// pollutants share the worst tier, the one evaluated first (PM2.5, PM10, O3)
// supplies the label and color. A station with no classifiable value is
// graded good.
package domain
