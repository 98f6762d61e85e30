package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestClassify_InvalidInputs(t *testing.T) {
	table := DefaultThresholds()

	cases := []struct {
		name      string
		pollutant Pollutant
		value     *float64
	}{
		{name: "nil value", pollutant: PM25, value: nil},
		{name: "negative value", pollutant: PM10, value: ptr(-1)},
		{name: "small negative value", pollutant: O3, value: ptr(-0.001)},
		{name: "NaN", pollutant: PM25, value: ptr(math.NaN())},
		{name: "positive infinity", pollutant: PM25, value: ptr(math.Inf(1))},
		{name: "unknown pollutant", pollutant: Pollutant("SO2"), value: ptr(0.004)},
		{name: "empty pollutant", pollutant: Pollutant(""), value: ptr(10)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := table.Classify(tc.pollutant, tc.value)
			assert.False(t, ok)
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	table := DefaultThresholds()

	cases := []struct {
		pollutant Pollutant
		value     float64
		want      GradeTier
	}{
		{PM25, 0, Good},
		{PM25, 15, Good},
		{PM25, 15.5, Moderate},
		{PM25, 16, Moderate},
		{PM25, 35, Moderate},
		{PM25, 36, Bad},
		{PM25, 75, Bad},
		{PM25, 76, VeryBad},
		{PM25, 500, VeryBad},
		{PM10, 30, Good},
		{PM10, 31, Moderate},
		{PM10, 80, Moderate},
		{PM10, 150, Bad},
		{PM10, 151, VeryBad},
		{PM10, 200, VeryBad},
		{O3, 0.02, Good},
		{O3, 0.03, Good},
		{O3, 0.031, Moderate},
		{O3, 0.09, Moderate},
		{O3, 0.1, Bad},
		{O3, 0.15, Bad},
		{O3, 0.151, VeryBad},
	}

	for _, tc := range cases {
		g, ok := table.Classify(tc.pollutant, ptr(tc.value))
		require.True(t, ok, "%s %g should classify", tc.pollutant, tc.value)
		assert.Equal(t, tc.want, g.Tier, "%s %g", tc.pollutant, tc.value)
		assert.Equal(t, tc.pollutant, g.Pollutant)
	}
}

func TestClassify_ExactlyOneRangeMatches(t *testing.T) {
	table := DefaultThresholds()
	values := []float64{0, 0.01, 0.03, 0.0300001, 0.09, 0.15, 1, 14.9, 15, 15.01, 30, 35, 75, 80, 150, 151, 1e6}

	for _, p := range Pollutants {
		for _, v := range values {
			matches := 0
			for _, r := range table.Ranges(p) {
				if r.Contains(v) {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "%s %g should match exactly one range", p, v)

			g, ok := table.Classify(p, ptr(v))
			require.True(t, ok)
			r, found := table.Range(p, g.Tier)
			require.True(t, found)
			assert.True(t, r.Contains(v), "returned tier range must contain %g", v)
			assert.Equal(t, r.Label, g.Label)
			assert.Equal(t, r.Color, g.Color)
		}
	}
}

func TestAggregate_WorstCaseAcrossPollutants(t *testing.T) {
	table := DefaultThresholds()

	g := table.Aggregate(Concentrations{PM25: ptr(10), PM10: ptr(200), O3: ptr(0.02)})

	assert.Equal(t, VeryBad, g.Tier)
	assert.Equal(t, PM10, g.Pollutant)
	assert.Equal(t, "매우나쁨", g.Label)
	assert.Equal(t, ColorVeryBad, g.Color)
}

func TestAggregate_AllNilDefaultsToGood(t *testing.T) {
	table := DefaultThresholds()

	g := table.Aggregate(Concentrations{})

	assert.Equal(t, Good, g.Tier)
	assert.Equal(t, PM25, g.Pollutant)
	assert.Equal(t, "좋음", g.Label)
	assert.Equal(t, ColorGood, g.Color)
}

func TestAggregate_UnclassifiableValuesIgnored(t *testing.T) {
	table := DefaultThresholds()

	g := table.Aggregate(Concentrations{PM25: ptr(-5), PM10: ptr(45), O3: ptr(math.NaN())})

	assert.Equal(t, Moderate, g.Tier)
	assert.Equal(t, PM10, g.Pollutant)
}

func TestAggregate_TieBreakPrefersEarlierPollutant(t *testing.T) {
	table := DefaultThresholds()
	// Give PM10 a distinct very-bad color so the tie-break is observable.
	pm10 := append([]ThresholdRange(nil), table[PM10]...)
	pm10[3].Color = "#800080"
	pm10[3].Label = "PM10 very bad"
	table, err := table.WithOverrides(ThresholdTable{PM10: pm10})
	require.NoError(t, err)

	for range 5 {
		g := table.Aggregate(Concentrations{PM25: ptr(80), PM10: ptr(200)})
		assert.Equal(t, VeryBad, g.Tier)
		assert.Equal(t, PM25, g.Pollutant)
		assert.Equal(t, ColorVeryBad, g.Color)
		assert.Equal(t, "매우나쁨", g.Label)
	}
}

func TestAggregate_LaterPollutantWinsOnlyWhenStrictlyWorse(t *testing.T) {
	table := DefaultThresholds()

	g := table.Aggregate(Concentrations{PM25: ptr(20), PM10: ptr(50), O3: ptr(0.12)})

	assert.Equal(t, Bad, g.Tier)
	assert.Equal(t, O3, g.Pollutant)
}
