package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/wibaek/soma-hands-on-2/internal/config"
	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per reading to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes the readings of a refresh in a single
// WriteMessages call. Messages are keyed by region so each region's history
// stays ordered within one partition.
func (w *Writer) LoadBatch(ctx context.Context, readings []domain.StationReading) error {
	if len(readings) == 0 {
		return nil
	}
	cycleID := pipeline.CycleID(ctx)
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(readings[i], cycleID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d readings: %w", len(msgs), err)
	}
	w.logger.Debug("readings written to kafka", "count", len(msgs), "cycle_id", cycleID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationReading into a Kafka message.
func serializeToMessage(r domain.StationReading, cycleID string) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station reading: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "grade", Value: []byte(r.Overall.Tier.String())},
		{Key: "station", Value: []byte(r.StationName)},
	}
	if cycleID != "" {
		headers = append(headers, kafkago.Header{Key: "cycle_id", Value: []byte(cycleID)})
	}
	if r.ObservedAt != nil {
		headers = append(headers, kafkago.Header{Key: "observed_at", Value: []byte(r.ObservedAt.Format(time.RFC3339))})
	}
	return kafkago.Message{
		Key:     []byte(r.Region),
		Value:   data,
		Headers: headers,
	}, nil
}
