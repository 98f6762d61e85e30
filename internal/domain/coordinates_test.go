package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestResolve_OwnCoordinatesWin(t *testing.T) {
	table := DefaultRegionCoordinates()
	rec := RawStationRecord{
		StationName: Raw("종로구"),
		Region:      "부산",
		DmX:         Raw("126.97"),
		DmY:         Raw("37.56"),
	}

	c := table.Resolve(rec)

	require.NotNil(t, c)
	assert.Equal(t, Coordinates{Lat: 37.56, Lng: 126.97}, *c)
}

func TestResolve_RegionDefault(t *testing.T) {
	table := DefaultRegionCoordinates()
	rec := RawStationRecord{
		StationName: Raw("해운대"),
		Region:      "부산",
		DmX:         Raw("-"),
		DmY:         Raw("35.16"),
	}

	c := table.Resolve(rec)

	require.NotNil(t, c)
	assert.Equal(t, Coordinates{Lat: 35.1796, Lng: 129.0756}, *c)
}

func TestResolve_SidoNameUsedWhenRegionUnset(t *testing.T) {
	table := DefaultRegionCoordinates()
	rec := RawStationRecord{StationName: Raw("연동"), SidoName: Raw("제주")}

	c := table.Resolve(rec)

	require.NotNil(t, c)
	assert.Equal(t, Coordinates{Lat: 33.4996, Lng: 126.5312}, *c)
}

func TestResolve_StationNameScan(t *testing.T) {
	table := DefaultRegionCoordinates()
	rec := RawStationRecord{StationName: Raw("서울 종로구"), Region: "Unknown"}

	c := table.Resolve(rec)

	require.NotNil(t, c)
	assert.Equal(t, Coordinates{Lat: 37.5665, Lng: 126.9780}, *c)
}

func TestResolve_StationNameScanReturnsFirstTableMatch(t *testing.T) {
	table := RegionCoordinateTable{
		{Region: "A", Coordinates: Coordinates{Lat: 1, Lng: 1}},
		{Region: "B", Coordinates: Coordinates{Lat: 2, Lng: 2}},
	}
	rec := RawStationRecord{StationName: Raw("B-A station")}

	c := table.Resolve(rec)

	require.NotNil(t, c)
	assert.Equal(t, Coordinates{Lat: 1, Lng: 1}, *c)
}

func TestResolve_Unplaceable(t *testing.T) {
	table := DefaultRegionCoordinates()

	cases := []struct {
		name string
		rec  RawStationRecord
	}{
		{name: "empty record", rec: RawStationRecord{}},
		{name: "unknown region and name", rec: RawStationRecord{StationName: Raw("Nowhere"), Region: "Atlantis"}},
		{name: "out of range coordinates", rec: RawStationRecord{StationName: Raw("X"), DmX: Raw("500"), DmY: Raw("37")}},
		{name: "only latitude", rec: RawStationRecord{StationName: Raw("X"), DmY: Raw("37.5")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, table.Resolve(tc.rec))
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	table := DefaultRegionCoordinates()
	rec := RawStationRecord{StationName: Raw("경기 수원"), Region: "?"}

	first := table.Resolve(rec)
	for range 10 {
		assert.Equal(t, first, table.Resolve(rec))
	}
}

func TestLookup_MatchesDecomposedHangul(t *testing.T) {
	table := DefaultRegionCoordinates()
	decomposed := norm.NFD.String("대전")
	require.NotEqual(t, "대전", decomposed)

	c, ok := table.Lookup(decomposed)

	require.True(t, ok)
	assert.Equal(t, Coordinates{Lat: 36.3504, Lng: 127.3845}, c)
}

func TestContainsName(t *testing.T) {
	assert.True(t, ContainsName("서울 종로구", "서울"))
	assert.True(t, ContainsName(norm.NFD.String("서울 종로구"), "서울"))
	assert.False(t, ContainsName("종로구", "서울"))
	assert.False(t, ContainsName("종로구", ""))
}

func TestRegions_Order(t *testing.T) {
	regions := DefaultRegionCoordinates().Regions()

	assert.Len(t, regions, 17)
	assert.Equal(t, "서울", regions[0])
	assert.Equal(t, "제주", regions[len(regions)-1])
}
