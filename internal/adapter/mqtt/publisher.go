package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/wibaek/soma-hands-on-2/internal/config"
	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

const publishTimeout = 5 * time.Second

// tokenPublisher is the subset of paho.Client used for publishing.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Summary is the retained per-refresh overview message.
type Summary struct {
	CycleID     string           `json:"cycle_id,omitempty"`
	PublishedAt time.Time        `json:"published_at"`
	Stations    int              `json:"stations"`
	Worst       *domain.Grade    `json:"worst,omitempty"`
	Regions     map[string]Brief `json:"regions"`
}

// Brief is the grade of one region in a Summary.
type Brief struct {
	Station string           `json:"station"`
	Tier    domain.GradeTier `json:"tier"`
	Label   string           `json:"label"`
	Color   string           `json:"color"`
}

// Publisher publishes every refreshed reading as a retained message on
// {prefix}/regions/{region} plus a summary on {prefix}/summary.
// It implements pipeline.BatchLoader.
type Publisher struct {
	client paho.Client
	pub    tokenPublisher
	prefix string
	logger *slog.Logger
}

// NewPublisher creates an MQTT publisher for the configured broker. Call
// Connect before the first refresh.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := paho.NewClient(opts)
	return &Publisher{client: client, pub: client, prefix: cfg.MQTTTopicPrefix, logger: logger}
}

// Connect waits for the initial broker connection or ctx to end.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Close disconnects from the broker, letting in-flight publishes finish.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}

func (p *Publisher) LoadBatch(ctx context.Context, readings []domain.StationReading) error {
	if len(readings) == 0 {
		return nil
	}

	var errs []error
	for _, r := range readings {
		if err := p.publish(ctx, RegionTopic(p.prefix, r.Region), r); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.publish(ctx, p.prefix+"/summary", Summarize(pipeline.CycleID(ctx), time.Now().UTC(), readings)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p *Publisher) publish(ctx context.Context, topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	token := p.pub.Publish(topic, 1, true, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	p.logger.Debug("published", "topic", topic)
	return nil
}

// RegionTopic returns the topic of a region's reading. MQTT wildcard and
// separator characters in the region name are replaced.
func RegionTopic(prefix, region string) string {
	clean := strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(strings.TrimSpace(region))
	if clean == "" {
		clean = "unknown"
	}
	return prefix + "/regions/" + clean
}

// Summarize builds the summary message for a reading set. The worst grade
// keeps the earliest region on ties.
func Summarize(cycleID string, at time.Time, readings []domain.StationReading) Summary {
	s := Summary{
		CycleID:     cycleID,
		PublishedAt: at,
		Stations:    len(readings),
		Regions:     make(map[string]Brief, len(readings)),
	}
	for _, r := range readings {
		s.Regions[r.Region] = Brief{Station: r.StationName, Tier: r.Overall.Tier, Label: r.Label, Color: r.Color}
		if s.Worst == nil || r.Overall.Tier > s.Worst.Tier {
			g := r.Overall
			s.Worst = &g
		}
	}
	return s
}
