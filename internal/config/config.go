package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	DashboardAddr   string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// AirKorea data source.
	AirKoreaServiceKey string
	AirKoreaBaseURL    string
	AirKoreaTimeout    time.Duration
	StationCacheSize   int

	// Refresh cycle.
	RefreshInterval time.Duration
	RegionDelay     time.Duration
	Regions         []string
	ThresholdsFile  string
	Thresholds      domain.ThresholdTable

	// Kafka sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// MQTT sink, disabled when MQTTBroker is empty.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string
}

// MQTTEnabled reports whether readings should be published over MQTT.
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	airKoreaTimeout, err := parsePositiveDuration("AIRKOREA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	regionDelay, err := parseRegionDelay()
	if err != nil {
		return nil, err
	}
	mqttPort, err := parsePort("MQTT_PORT", 1883)
	if err != nil {
		return nil, err
	}

	thresholdsFile := os.Getenv("THRESHOLDS_FILE")
	thresholds := domain.DefaultThresholds()
	if thresholdsFile != "" {
		thresholds, err = LoadThresholdsFile(thresholdsFile, thresholds)
		if err != nil {
			return nil, err
		}
	}

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	kafkaEnabled := kafkaBrokers != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		DashboardAddr:   sharedcfg.EnvOrDefault("DASHBOARD_ADDR", ":8081"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AirKoreaServiceKey: os.Getenv("AIRKOREA_SERVICE_KEY"),
		AirKoreaBaseURL:    strings.TrimRight(sharedcfg.EnvOrDefault("AIRKOREA_BASE_URL", "https://apis.data.go.kr/B552584"), "/"),
		AirKoreaTimeout:    airKoreaTimeout,
		StationCacheSize:   parseStationCacheSize(),

		RefreshInterval: refreshInterval,
		RegionDelay:     regionDelay,
		Regions:         parseRegions(os.Getenv("REGIONS")),
		ThresholdsFile:  thresholdsFile,
		Thresholds:      thresholds,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "air-quality-readings"),

		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTPort:        mqttPort,
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "air-quality"),
		MQTTTopicPrefix: strings.Trim(sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "airquality"), "/"),
	}

	if cfg.AirKoreaServiceKey == "" {
		return nil, errors.New("AIRKOREA_SERVICE_KEY is required")
	}
	if u, err := url.Parse(cfg.AirKoreaBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid AIRKOREA_BASE_URL")
	}
	if len(cfg.Regions) == 0 {
		return nil, errors.New("REGIONS must name at least one region")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MQTTEnabled() && cfg.MQTTTopicPrefix == "" {
		return nil, errors.New("MQTT_TOPIC_PREFIX is required when MQTT_BROKER is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseRegionDelay allows zero so that tests and replays can run without pauses.
func parseRegionDelay() (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault("REGION_DELAY", "200ms"))
	if err != nil || d < 0 {
		return 0, errors.New("invalid REGION_DELAY")
	}
	return d, nil
}

func parsePort(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseStationCacheSize() int {
	if s := os.Getenv("STATION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

// parseRegions splits a comma-separated region list, dropping blanks and
// duplicates. An empty value yields the default sido list.
func parseRegions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return domain.DefaultRegionCoordinates().Regions()
	}
	seen := make(map[string]bool)
	var regions []string
	for _, part := range strings.Split(s, ",") {
		region := strings.TrimSpace(part)
		if region == "" || seen[region] {
			continue
		}
		seen[region] = true
		regions = append(regions, region)
	}
	return regions
}
