package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds_Valid(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())
}

func TestThresholdTable_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(ThresholdTable)
		wantErr string
	}{
		{
			name:    "missing pollutant",
			mutate:  func(tt ThresholdTable) { delete(tt, O3) },
			wantErr: "missing pollutant O3",
		},
		{
			name:    "gap between tiers",
			mutate:  func(tt ThresholdTable) { tt[PM25][1].Min = 16 },
			wantErr: "gap or overlap",
		},
		{
			name:    "overlap between tiers",
			mutate:  func(tt ThresholdTable) { tt[PM10][2].Min = 70 },
			wantErr: "gap or overlap",
		},
		{
			name:    "bounded last tier",
			mutate:  func(tt ThresholdTable) { tt[O3][3].Max = 1 },
			wantErr: "unbounded",
		},
		{
			name:    "does not start at zero",
			mutate:  func(tt ThresholdTable) { tt[PM25][0].Min = 1 },
			wantErr: "must start at 0",
		},
		{
			name:    "tiers out of order",
			mutate:  func(tt ThresholdTable) { tt[PM25][0].Tier, tt[PM25][1].Tier = Moderate, Good },
			wantErr: "want tier GOOD",
		},
		{
			name:    "too few tiers",
			mutate:  func(tt ThresholdTable) { tt[PM25] = tt[PM25][:2] },
			wantErr: "want 4 ranges",
		},
		{
			name:    "unknown pollutant",
			mutate:  func(tt ThresholdTable) { tt["CO"] = DefaultThresholds()[PM25] },
			wantErr: "unknown pollutant",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := DefaultThresholds()
			tc.mutate(table)
			err := table.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestThresholdTable_WithOverrides(t *testing.T) {
	base := DefaultThresholds()
	overrides := ThresholdTable{PM25: standardRanges(10, 25, 50)}

	merged, err := base.WithOverrides(overrides)
	require.NoError(t, err)

	g, ok := merged.Classify(PM25, ptr(12))
	require.True(t, ok)
	assert.Equal(t, Moderate, g.Tier)

	// untouched pollutants keep the defaults
	g, ok = merged.Classify(PM10, ptr(30))
	require.True(t, ok)
	assert.Equal(t, Good, g.Tier)

	// base table is not modified
	g, ok = base.Classify(PM25, ptr(12))
	require.True(t, ok)
	assert.Equal(t, Good, g.Tier)
}

func TestThresholdTable_WithOverridesRejectsInvalid(t *testing.T) {
	bad := standardRanges(10, 25, 50)
	bad[2].Min = 30

	_, err := DefaultThresholds().WithOverrides(ThresholdTable{PM25: bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PM25")
}

func TestThresholdRange_JSONUnboundedMax(t *testing.T) {
	r := ThresholdRange{Tier: VeryBad, Min: 75, Max: math.Inf(1), Label: "매우나쁨", Color: ColorVeryBad}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"VERY_BAD","min":75,"max":null,"label":"매우나쁨","color":"#F44336"}`, string(data))

	var decoded ThresholdRange
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, math.IsInf(decoded.Max, 1))
	assert.Equal(t, VeryBad, decoded.Tier)
}

func TestGradeTier_Ordering(t *testing.T) {
	assert.Less(t, Good, Moderate)
	assert.Less(t, Moderate, Bad)
	assert.Less(t, Bad, VeryBad)
}

func TestParseGradeTier(t *testing.T) {
	for _, tier := range Tiers {
		parsed, err := ParseGradeTier(tier.String())
		require.NoError(t, err)
		assert.Equal(t, tier, parsed)
	}

	_, err := ParseGradeTier("TERRIBLE")
	assert.Error(t, err)
}

func TestGradeTier_Advice(t *testing.T) {
	assert.Equal(t, "매우나쁨", VeryBad.Advice().Title)
	assert.Equal(t, "모든 사람들에게 영향이 있을 수 있음", VeryBad.Advice().Message)
	assert.Equal(t, "민감군은 장시간 실외활동을 줄이는 것이 좋음", Moderate.Advice().Recommendation)
	assert.Equal(t, Good.Advice(), GradeTier(42).Advice())
}
