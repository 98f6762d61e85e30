package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/observability"
)

// DataSource returns the raw station records of one region.
type DataSource interface {
	FetchRegion(ctx context.Context, region string) ([]domain.RawStationRecord, error)
}

// BatchLoader receives every successfully refreshed reading set.
type BatchLoader interface {
	LoadBatch(ctx context.Context, readings []domain.StationReading) error
}

// DefaultRegionDelay is the pause between consecutive region fetches.
const DefaultRegionDelay = 200 * time.Millisecond

var (
	// ErrTotalFetchFailure means no region could be fetched. The previous
	// snapshot is kept.
	ErrTotalFetchFailure = errors.New("all region fetches failed")

	// ErrRefreshInProgress is returned when Refresh is called while another
	// refresh is fetching.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrRefreshCancelled means the caller's context ended before every
	// region was fetched. Nothing is published and the previous snapshot is kept.
	ErrRefreshCancelled = errors.New("refresh cancelled")
)

// RegionFetchError records a failed region fetch.
type RegionFetchError struct {
	Region string
	Err    error
}

func (e *RegionFetchError) Error() string {
	return fmt.Sprintf("fetch region %s: %v", e.Region, e.Err)
}

func (e *RegionFetchError) Unwrap() error { return e.Err }

// State is the refresh state machine position.
type State int32

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	if s == StateFetching {
		return "FETCHING"
	}
	return "IDLE"
}

// Outcome classifies a finished refresh.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeTotalFailure   Outcome = "total_failure"
	OutcomeCancelled      Outcome = "cancelled"
)

// Snapshot is an immutable, published reading set.
type Snapshot struct {
	CycleID     string                  `json:"cycle_id"`
	RefreshedAt time.Time               `json:"refreshed_at"`
	Readings    []domain.StationReading `json:"readings"`
	Failures    []*RegionFetchError     `json:"-"`
}

// Find returns the reading of the named station.
func (s *Snapshot) Find(stationName string) (domain.StationReading, bool) {
	for _, r := range s.Readings {
		if r.StationName == stationName {
			return r, true
		}
	}
	return domain.StationReading{}, false
}

// Result describes one refresh cycle.
type Result struct {
	CycleID  string
	Outcome  Outcome
	Readings []domain.StationReading
	Failures []*RegionFetchError
	// Empty lists regions that answered with no stations.
	Empty    []string
	Duration time.Duration
}

type cycleIDKey struct{}

// CycleID returns the refresh cycle a sink is being called for, or "" when
// ctx does not come from a refresh.
func CycleID(ctx context.Context) string {
	id, _ := ctx.Value(cycleIDKey{}).(string)
	return id
}

// WithCycleID tags ctx with a refresh cycle id.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIDKey{}, id)
}

type sink struct {
	name   string
	loader BatchLoader
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock sets the time source used for delays and timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(r *Reconciler) { r.clock = c }
}

// WithRegionDelay sets the pause between region fetches. Zero disables it.
func WithRegionDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.regionDelay = d }
}

// WithSink adds a loader that receives every refreshed reading set. Sinks are
// called in the order they were added.
func WithSink(name string, l BatchLoader) Option {
	return func(r *Reconciler) { r.sinks = append(r.sinks, sink{name: name, loader: l}) }
}

// WithSelection shares a selection hub with the rendering side.
func WithSelection(s *Selection) Option {
	return func(r *Reconciler) { r.selection = s }
}

// Reconciler fetches every region, picks one representative station per
// region, classifies it, and publishes the resulting set.
type Reconciler struct {
	source      DataSource
	normalizer  *domain.Normalizer
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	regionDelay time.Duration
	sinks       []sink
	selection   *Selection

	state    atomic.Int32
	snapshot atomic.Pointer[Snapshot]
}

// New creates a Reconciler reading from source.
func New(source DataSource, normalizer *domain.Normalizer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Reconciler {
	r := &Reconciler{
		source:      source,
		normalizer:  normalizer,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		regionDelay: DefaultRegionDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.selection == nil {
		r.selection = NewSelection()
	}
	return r
}

// CheckReadiness returns nil once a reading set has been published.
func (r *Reconciler) CheckReadiness(_ context.Context) error {
	if r.snapshot.Load() == nil {
		return errors.New("no air-quality data has been loaded yet")
	}
	return nil
}

// State returns the current refresh state.
func (r *Reconciler) State() State {
	return State(r.state.Load())
}

// Current returns the published snapshot, or nil before the first successful refresh.
func (r *Reconciler) Current() *Snapshot {
	return r.snapshot.Load()
}

// Thresholds returns the table readings are classified against.
func (r *Reconciler) Thresholds() domain.ThresholdTable {
	return r.normalizer.Thresholds()
}

// OnStationSelected registers a listener for station selections.
func (r *Reconciler) OnStationSelected(fn func(domain.StationReading)) (unsubscribe func()) {
	return r.selection.OnStationSelected(fn)
}

// NotifyStationSelected fires the selection listeners for reading.
func (r *Reconciler) NotifyStationSelected(reading domain.StationReading) {
	r.selection.Notify(reading)
}

// SelectStation selects the named station from the current snapshot.
func (r *Reconciler) SelectStation(stationName string) (domain.StationReading, bool) {
	snap := r.snapshot.Load()
	if snap == nil {
		return domain.StationReading{}, false
	}
	reading, ok := snap.Find(stationName)
	if ok {
		r.selection.Notify(reading)
	}
	return reading, ok
}

// Selected returns the most recently selected station.
func (r *Reconciler) Selected() (domain.StationReading, bool) {
	return r.selection.Current()
}

// Refresh fetches regions one at a time, in order, and publishes the
// representative readings. Region failures are recorded and skipped. When
// every region fails the previous snapshot is kept and an error wrapping
// ErrTotalFetchFailure is returned. If ctx ends before every region has been
// fetched, nothing is published and the error wraps ErrRefreshCancelled.
func (r *Reconciler) Refresh(ctx context.Context, regions []string) (Result, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateFetching)) {
		return Result{}, ErrRefreshInProgress
	}
	defer r.state.Store(int32(StateIdle))

	start := r.clock.Now()
	res := Result{CycleID: uuid.NewString()}
	logger := r.logger.With("cycle_id", res.CycleID)
	logger.Info("refresh started", "regions", len(regions))

	attempted, complete := r.fetchAll(ctx, logger, regions, &res)
	res.Duration = r.clock.Since(start)
	r.metrics.RefreshDuration.Observe(res.Duration.Seconds())

	if !complete {
		res.Outcome = OutcomeCancelled
		res.Readings = nil
		r.metrics.RefreshesTotal.WithLabelValues(string(res.Outcome)).Inc()
		logger.Warn("refresh cancelled, keeping previous data",
			"fetched_regions", attempted,
			"remaining_regions", len(regions)-attempted,
			"error", ctx.Err(),
		)
		return res, fmt.Errorf("refresh %s: %w: %w", res.CycleID, ErrRefreshCancelled, ctx.Err())
	}

	if attempted > 0 && len(res.Failures) == attempted {
		res.Outcome = OutcomeTotalFailure
		res.Readings = nil
		r.metrics.RefreshesTotal.WithLabelValues(string(res.Outcome)).Inc()
		logger.Error("refresh failed, keeping previous data", "failures", len(res.Failures))
		return res, fmt.Errorf("refresh %s: %w", res.CycleID, ErrTotalFetchFailure)
	}

	res.Outcome = OutcomeSuccess
	if len(res.Failures) > 0 {
		res.Outcome = OutcomePartialSuccess
	}
	r.metrics.RefreshesTotal.WithLabelValues(string(res.Outcome)).Inc()

	// A complete set is delivered to every sink even if the caller goes away now.
	r.publish(context.WithoutCancel(ctx), logger, &Snapshot{
		CycleID:     res.CycleID,
		RefreshedAt: r.clock.Now(),
		Readings:    res.Readings,
		Failures:    res.Failures,
	})

	logger.Info("refresh complete",
		"outcome", res.Outcome,
		"stations", len(res.Readings),
		"failures", len(res.Failures),
		"empty_regions", len(res.Empty),
		"duration", res.Duration,
	)
	return res, nil
}

// fetchAll walks the regions and fills res. It stops between regions once
// ctx ends and reports complete=false; a fetch already issued runs to
// completion regardless of ctx.
func (r *Reconciler) fetchAll(ctx context.Context, logger *slog.Logger, regions []string, res *Result) (attempted int, complete bool) {
	fetchCtx := context.WithoutCancel(ctx)
	for i, region := range regions {
		if i > 0 && !sleepWithContext(ctx, r.clock, r.regionDelay) {
			return attempted, false
		}
		if ctx.Err() != nil {
			return attempted, false
		}
		attempted++

		records, err := r.source.FetchRegion(fetchCtx, region)
		if err != nil {
			r.recordFailure(logger, region, err, res)
			continue
		}

		rep, ok := SelectRepresentative(region, records)
		if !ok {
			logger.Debug("region returned no stations", "region", region)
			res.Empty = append(res.Empty, region)
			continue
		}
		rep.Region = region

		reading := r.normalizer.Normalize(rep)
		res.Readings = append(res.Readings, reading)
		logger.Debug("region reconciled",
			"region", region,
			"station", reading.StationName,
			"grade", reading.Overall.Tier,
			"candidates", len(records),
		)
	}
	return attempted, true
}

func (r *Reconciler) recordFailure(logger *slog.Logger, region string, err error, res *Result) {
	res.Failures = append(res.Failures, &RegionFetchError{Region: region, Err: err})
	r.metrics.RegionFailures.WithLabelValues(region).Inc()
	logger.Warn("region fetch failed, skipping", "region", region, "error", err)
}

// publish swaps the snapshot and hands the readings to every sink. Sink
// errors are logged; the snapshot stays published either way.
func (r *Reconciler) publish(ctx context.Context, logger *slog.Logger, snap *Snapshot) {
	r.snapshot.Store(snap)

	unresolvable := 0
	for _, reading := range snap.Readings {
		if !reading.Displayable() {
			unresolvable++
		}
	}
	r.metrics.StationsDisplayed.Set(float64(len(snap.Readings) - unresolvable))
	r.metrics.StationsUnresolvable.Set(float64(unresolvable))

	ctx = WithCycleID(ctx, snap.CycleID)
	for _, s := range r.sinks {
		if err := s.loader.LoadBatch(ctx, snap.Readings); err != nil {
			r.metrics.SinkErrors.WithLabelValues(s.name).Inc()
			logger.Error("sink load failed", "sink", s.name, "error", err, "batch_size", len(snap.Readings))
			continue
		}
		r.metrics.ReadingsPublished.WithLabelValues(s.name).Add(float64(len(snap.Readings)))
	}
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
