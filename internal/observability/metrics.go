package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// air-quality refresh pipeline.
type Metrics struct {
	RefreshesTotal   *prometheus.CounterVec // labels: outcome={success,partial_success,total_failure}
	RefreshDuration  prometheus.Histogram
	RegionFailures   *prometheus.CounterVec // labels: region
	SchedulerRunning prometheus.Gauge

	// Snapshot metrics.
	StationsDisplayed    prometheus.Gauge
	StationsUnresolvable prometheus.Gauge

	// AirKorea client metrics.
	AirKoreaRequests    *prometheus.CounterVec   // labels: endpoint={realtime,stations}, outcome={success,error}
	AirKoreaAPIDuration *prometheus.HistogramVec // labels: endpoint
	StationCache        *prometheus.CounterVec   // labels: result={hit,miss}

	// Sink metrics.
	ReadingsPublished *prometheus.CounterVec // labels: sink={markers,kafka,mqtt}
	SinkErrors        *prometheus.CounterVec // labels: sink
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality",
			Name:      "refreshes_total",
			Help:      "Completed refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "air_quality",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete refresh cycle across all regions.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		RegionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality",
			Name:      "region_fetch_failures_total",
			Help:      "Region fetches that failed during a refresh.",
		}, []string{"region"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "air_quality",
			Name:      "scheduler_running",
			Help:      "1 when periodic refresh is active, 0 otherwise.",
		}),
		StationsDisplayed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "air_quality",
			Name:      "stations_displayed",
			Help:      "Representative stations in the current snapshot.",
		}),
		StationsUnresolvable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "air_quality",
			Name:      "stations_unresolvable",
			Help:      "Stations in the current snapshot without coordinates.",
		}),
		AirKoreaRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality",
			Name:      "airkorea_requests_total",
			Help:      "AirKorea API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		AirKoreaAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "air_quality",
			Name:      "airkorea_api_duration_seconds",
			Help:      "AirKorea API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		StationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality",
			Name:      "station_cache_total",
			Help:      "Station coordinate cache lookups by result.",
		}, []string{"result"}),
		ReadingsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality",
			Name:      "readings_published_total",
			Help:      "Readings delivered to each sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality",
			Name:      "sink_errors_total",
			Help:      "Failed deliveries of a refreshed set to a sink.",
		}, []string{"sink"}),
	}

	prometheus.MustRegister(
		m.RefreshesTotal,
		m.RefreshDuration,
		m.RegionFailures,
		m.SchedulerRunning,
		m.StationsDisplayed,
		m.StationsUnresolvable,
		m.AirKoreaRequests,
		m.AirKoreaAPIDuration,
		m.StationCache,
		m.ReadingsPublished,
		m.SinkErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RefreshesTotal:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "air_quality", Name: "refreshes_total"}, []string{"outcome"}),
		RefreshDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "air_quality", Name: "refresh_duration_seconds"}),
		RegionFailures:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "air_quality", Name: "region_fetch_failures_total"}, []string{"region"}),
		SchedulerRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "air_quality", Name: "scheduler_running"}),
		StationsDisplayed:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "air_quality", Name: "stations_displayed"}),
		StationsUnresolvable: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "air_quality", Name: "stations_unresolvable"}),
		AirKoreaRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "air_quality", Name: "airkorea_requests_total"}, []string{"endpoint", "outcome"}),
		AirKoreaAPIDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "air_quality", Name: "airkorea_api_duration_seconds"}, []string{"endpoint"}),
		StationCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "air_quality", Name: "station_cache_total"}, []string{"result"}),
		ReadingsPublished:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "air_quality", Name: "readings_published_total"}, []string{"sink"}),
		SinkErrors:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "air_quality", Name: "sink_errors_total"}, []string{"sink"}),
	}
}
