package pipeline_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchRegion(ctx context.Context, region string) ([]domain.RawStationRecord, error) {
	args := m.Called(ctx, region)
	recs, _ := args.Get(0).([]domain.RawStationRecord)
	return recs, args.Error(1)
}

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) LoadBatch(ctx context.Context, readings []domain.StationReading) error {
	args := m.Called(ctx, readings)
	return args.Error(0)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context, regions []string) (pipeline.Result, error) {
	args := m.Called(ctx, regions)
	return args.Get(0).(pipeline.Result), args.Error(1)
}

type drawnMarker struct {
	marker  pipeline.Marker
	onClick func()
}

// recordingSurface captures draw commands in order.
type recordingSurface struct {
	mu       sync.Mutex
	commands []string
	markers  []drawnMarker
}

func (s *recordingSurface) AddMarker(m pipeline.Marker, onClick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, "add:"+m.StationName)
	s.markers = append(s.markers, drawnMarker{marker: m, onClick: onClick})
}

func (s *recordingSurface) ClearMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, "clear")
	s.markers = nil
}

func (s *recordingSurface) CloseInfoWindows() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, "close")
}

// --- fixtures ---

var testRegions = []string{"서울", "부산", "대구"}

func seoulRecords() []domain.RawStationRecord {
	return []domain.RawStationRecord{
		{StationName: domain.Raw("종로구"), SidoName: domain.Raw("서울"), PM25Value: domain.Raw("12"), PM10Value: domain.Raw("40"), DmX: domain.Raw("126.98"), DmY: domain.Raw("37.57")},
		{StationName: domain.Raw("서울숲"), SidoName: domain.Raw("서울"), PM25Value: domain.Raw("80"), PM10Value: domain.Raw("90"), O3Value: domain.Raw("0.02")},
	}
}

func busanRecords() []domain.RawStationRecord {
	return []domain.RawStationRecord{
		{StationName: domain.Raw("광복동"), SidoName: domain.Raw("부산"), PM25Value: domain.Raw("-"), PM10Value: domain.Raw("30")},
		{StationName: domain.Raw("연산동"), SidoName: domain.Raw("부산"), PM25Value: domain.Raw("20"), PM10Value: domain.Raw("45"), DataTime: domain.Raw("2024-03-15 14:00")},
	}
}

func daeguRecords() []domain.RawStationRecord {
	return []domain.RawStationRecord{
		{StationName: domain.Raw("수창동"), SidoName: domain.Raw("대구"), PM25Value: domain.Raw("-"), PM10Value: domain.Raw("-")},
		{StationName: domain.Raw("신암동"), SidoName: domain.Raw("대구"), PM25Value: domain.Raw("-"), PM10Value: domain.Raw("")},
	}
}

func singleStation(region, station string) []domain.RawStationRecord {
	return []domain.RawStationRecord{
		{StationName: domain.Raw(station), SidoName: domain.Raw(region), PM25Value: domain.Raw("8"), PM10Value: domain.Raw("20")},
	}
}

func stationNames(readings []domain.StationReading) []string {
	names := make([]string, len(readings))
	for i, r := range readings {
		names[i] = r.StationName
	}
	return names
}
