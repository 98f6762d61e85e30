package pipeline_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

func TestRenderer_SkipsUnplaceableStations(t *testing.T) {
	n := domain.NewNormalizer(nil, nil)
	readings := []domain.StationReading{
		n.Normalize(domain.RawStationRecord{StationName: domain.Raw("종로구"), Region: "서울", PM25Value: domain.Raw("10")}),
		n.Normalize(domain.RawStationRecord{StationName: domain.Raw("Nowhere"), Region: "Atlantis"}),
		n.Normalize(domain.RawStationRecord{StationName: domain.Raw("연산동"), Region: "부산", PM10Value: domain.Raw("200")}),
	}
	require.Nil(t, readings[1].Coordinates)

	surface := &recordingSurface{}
	r := pipeline.NewRenderer(surface, pipeline.NewSelection(), slog.Default())

	require.NoError(t, r.LoadBatch(context.Background(), readings))

	assert.Equal(t, []string{"close", "clear", "add:종로구", "add:연산동"}, surface.commands)
	require.Len(t, surface.markers, 2)
	assert.Equal(t, domain.ColorVeryBad, surface.markers[1].marker.Color)
	assert.Equal(t, domain.VeryBad, surface.markers[1].marker.Tier)
	assert.Equal(t, domain.Coordinates{Lat: 35.1796, Lng: 129.0756}, surface.markers[1].marker.Position)
}

func TestRenderer_ClickFiresSelection(t *testing.T) {
	n := domain.NewNormalizer(nil, nil)
	reading := n.Normalize(domain.RawStationRecord{StationName: domain.Raw("종로구"), Region: "서울", PM25Value: domain.Raw("40")})

	selection := pipeline.NewSelection()
	var selected []domain.StationReading
	selection.OnStationSelected(func(r domain.StationReading) { selected = append(selected, r) })

	surface := &recordingSurface{}
	r := pipeline.NewRenderer(surface, selection, slog.Default())
	require.NoError(t, r.LoadBatch(context.Background(), []domain.StationReading{reading}))
	require.Len(t, surface.markers, 1)

	surface.markers[0].onClick()

	require.Len(t, selected, 1)
	assert.Equal(t, "종로구", selected[0].StationName)
	assert.Equal(t, domain.Bad, selected[0].Overall.Tier)
	current, ok := selection.Current()
	require.True(t, ok)
	assert.Equal(t, "종로구", current.StationName)
}

func TestRenderer_TotalFailureLeavesMarkersUntouched(t *testing.T) {
	src := &mockSource{}
	allRegionsOK(src)
	surface := &recordingSurface{}
	selection := pipeline.NewSelection()

	r := newReconciler(src,
		pipeline.WithSelection(selection),
		pipeline.WithSink("markers", pipeline.NewRenderer(surface, selection, slog.Default())),
	)
	_, err := r.Refresh(context.Background(), testRegions)
	require.NoError(t, err)
	drawn := append([]string(nil), surface.commands...)

	src.ExpectedCalls = nil
	src.On("FetchRegion", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	_, err = r.Refresh(context.Background(), testRegions)
	require.ErrorIs(t, err, pipeline.ErrTotalFetchFailure)

	assert.Equal(t, drawn, surface.commands)
	assert.Len(t, surface.markers, 3)
}

func TestSelection_ListenersRunInRegistrationOrder(t *testing.T) {
	s := pipeline.NewSelection()
	var order []int
	s.OnStationSelected(func(domain.StationReading) { order = append(order, 1) })
	unsubscribe := s.OnStationSelected(func(domain.StationReading) { order = append(order, 2) })
	s.OnStationSelected(func(domain.StationReading) { order = append(order, 3) })

	s.Notify(domain.StationReading{StationName: "a"})
	unsubscribe()
	s.Notify(domain.StationReading{StationName: "b"})

	assert.Equal(t, []int{1, 2, 3, 1, 3}, order)
}
