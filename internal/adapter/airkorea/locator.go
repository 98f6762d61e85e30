package airkorea

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/observability"
)

// RegionFetcher returns the raw readings of a region.
type RegionFetcher interface {
	FetchRegion(ctx context.Context, region string) ([]domain.RawStationRecord, error)
}

// StationLister returns the measuring stations matching an address.
type StationLister interface {
	FetchStations(ctx context.Context, addr string) ([]Station, error)
}

// DefaultListDelay is the pause between a region call and the station-list
// call that follows it on a cache miss.
const DefaultListDelay = 200 * time.Millisecond

// StationLocator decorates a RegionFetcher, filling in dmX/dmY for records
// that arrive without them from the station list service. Positions are
// cached per region and station name. A failing station list never fails
// the region fetch: the records pass through unchanged.
type StationLocator struct {
	inner     RegionFetcher
	stations  StationLister
	cache     *lruCache[domain.Coordinates]
	clock     clockwork.Clock
	listDelay time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// LocatorOption configures a StationLocator.
type LocatorOption func(*StationLocator)

// WithListDelay sets the pause before a station-list call. Zero disables it.
func WithListDelay(d time.Duration) LocatorOption {
	return func(l *StationLocator) { l.listDelay = d }
}

// WithLocatorClock sets the time source used for the list delay.
func WithLocatorClock(c clockwork.Clock) LocatorOption {
	return func(l *StationLocator) { l.clock = c }
}

// NewStationLocator creates a locating decorator around inner.
func NewStationLocator(inner RegionFetcher, stations StationLister, maxEntries int, metrics *observability.Metrics, logger *slog.Logger, opts ...LocatorOption) *StationLocator {
	l := &StationLocator{
		inner:     inner,
		stations:  stations,
		cache:     newLRUCache[domain.Coordinates](maxEntries),
		clock:     clockwork.NewRealClock(),
		listDelay: DefaultListDelay,
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *StationLocator) FetchRegion(ctx context.Context, region string) ([]domain.RawStationRecord, error) {
	records, err := l.inner.FetchRegion(ctx, region)
	if err != nil {
		return nil, err
	}

	listed := false
	for i := range records {
		if _, ok := domain.OwnCoordinates(records[i]); ok {
			continue
		}
		key := cacheKey(region, records[i].Name())
		pos, ok := l.cache.get(key)
		if ok {
			l.metrics.StationCache.WithLabelValues("hit").Inc()
		} else {
			l.metrics.StationCache.WithLabelValues("miss").Inc()
			if listed {
				continue
			}
			listed = true
			if !l.loadStations(ctx, region) {
				continue
			}
			if pos, ok = l.cache.get(key); !ok {
				continue
			}
		}
		records[i].DmX = domain.Raw(formatCoordinate(pos.Lng))
		records[i].DmY = domain.Raw(formatCoordinate(pos.Lat))
	}
	return records, nil
}

// loadStations caches the positions of every station listed for region.
// The call is spaced from the preceding region call by the list delay.
func (l *StationLocator) loadStations(ctx context.Context, region string) bool {
	if l.listDelay > 0 {
		timer := l.clock.NewTimer(l.listDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.Chan():
		}
	}

	stations, err := l.stations.FetchStations(ctx, region)
	if err != nil {
		l.logger.Warn("station list unavailable, keeping records without coordinates",
			"region", region,
			"error", err,
		)
		return false
	}

	for _, s := range stations {
		pos, ok := domain.OwnCoordinates(domain.RawStationRecord{DmX: s.DmX, DmY: s.DmY})
		if !ok || s.Name == "" {
			continue
		}
		l.cache.put(cacheKey(region, s.Name), pos)
	}
	l.logger.Debug("station list cached", "region", region, "stations", len(stations))
	return true
}

func cacheKey(region, station string) string {
	return region + "|" + station
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
