package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/wibaek/soma-hands-on-2/internal/adapter/airkorea"
	"github.com/wibaek/soma-hands-on-2/internal/adapter/dashboard"
	httpadapter "github.com/wibaek/soma-hands-on-2/internal/adapter/http"
	kafkaadapter "github.com/wibaek/soma-hands-on-2/internal/adapter/kafka"
	mqttadapter "github.com/wibaek/soma-hands-on-2/internal/adapter/mqtt"
	"github.com/wibaek/soma-hands-on-2/internal/config"
	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/observability"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

type closer interface {
	Close() error
}

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := airkorea.NewClient(cfg.AirKoreaServiceKey, cfg.AirKoreaBaseURL, cfg.AirKoreaTimeout, metrics, logger)
	source := airkorea.NewStationLocator(client, client, cfg.StationCacheSize, metrics, logger,
		airkorea.WithListDelay(cfg.RegionDelay),
	)
	normalizer := domain.NewNormalizer(cfg.Thresholds, domain.DefaultRegionCoordinates())

	selection := pipeline.NewSelection()
	board := dashboard.NewBoard()
	opts := []pipeline.Option{
		pipeline.WithRegionDelay(cfg.RegionDelay),
		pipeline.WithSelection(selection),
		pipeline.WithSink("markers", pipeline.NewRenderer(board, selection, logger)),
	}

	var closers []closer
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithSink("kafka", writer))
		closers = append(closers, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}
	if cfg.MQTTEnabled() {
		publisher := mqttadapter.NewPublisher(cfg, logger)
		if err := publisher.Connect(ctx); err != nil {
			logger.Error("mqtt connect failed", "broker", cfg.MQTTBroker, "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithSink("mqtt", publisher))
		closers = append(closers, publisher)
		logger.Info("mqtt sink enabled", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)
	}

	reconciler := pipeline.New(source, normalizer, logger, metrics, opts...)
	reconciler.OnStationSelected(func(r domain.StationReading) {
		logger.Info("station selected", "station", r.StationName, "region", r.Region, "grade", r.Overall.Tier)
	})

	opsSrv := httpadapter.NewServer(cfg.HTTPAddr, reconciler, reconciler, logger)
	dashSrv := dashboard.NewServer(cfg.DashboardAddr,
		dashboard.NewHandler(reconciler, board, cfg.Regions, client, normalizer), logger)

	go func() {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	go func() {
		if err := dashSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("dashboard server error", "error", err)
		}
	}()

	if _, err := reconciler.Refresh(ctx, cfg.Regions); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}

	scheduler := pipeline.NewScheduler(reconciler, cfg.Regions, clockwork.NewRealClock(), logger, metrics)
	if err := scheduler.StartPeriodicRefresh(ctx, cfg.RefreshInterval); err != nil {
		logger.Error("failed to start periodic refresh", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	scheduler.StopPeriodicRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := dashSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard server shutdown error", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
