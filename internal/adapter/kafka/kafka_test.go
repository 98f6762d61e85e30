package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wibaek/soma-hands-on-2/internal/domain"
	"github.com/wibaek/soma-hands-on-2/internal/pipeline"
)

type fakeMessageWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeMessageWriter) Close() error {
	f.closed = true
	return nil
}

func testReading(t *testing.T) domain.StationReading {
	t.Helper()
	return domain.NewNormalizer(nil, nil).Normalize(domain.RawStationRecord{
		StationName: domain.Raw("종로구"),
		Region:      "서울",
		DataTime:    domain.Raw("2024-03-15 14:00"),
		PM25Value:   domain.Raw("40"),
		PM10Value:   domain.Raw("20"),
	})
}

func TestSerializeToMessage(t *testing.T) {
	reading := testReading(t)

	msg, err := serializeToMessage(reading, "cycle-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("서울"), msg.Key)
	assert.Contains(t, string(msg.Value), `"station_name":"종로구"`)
	assert.Contains(t, string(msg.Value), `"tier":"BAD"`)
	assert.NotContains(t, string(msg.Value), "Raw")
	require.Len(t, msg.Headers, 4)
	assert.Equal(t, "grade", msg.Headers[0].Key)
	assert.Equal(t, []byte("BAD"), msg.Headers[0].Value)
	assert.Equal(t, "station", msg.Headers[1].Key)
	assert.Equal(t, "cycle_id", msg.Headers[2].Key)
	assert.Equal(t, []byte("cycle-1"), msg.Headers[2].Value)
	assert.Equal(t, "observed_at", msg.Headers[3].Key)
	assert.Equal(t, []byte(reading.ObservedAt.Format(time.RFC3339)), msg.Headers[3].Value)
}

func TestSerializeToMessage_OptionalHeaders(t *testing.T) {
	msg, err := serializeToMessage(domain.StationReading{StationName: "x", Region: "제주"}, "")
	require.NoError(t, err)
	assert.Len(t, msg.Headers, 2)
}

func TestWriter_LoadBatch(t *testing.T) {
	fake := &fakeMessageWriter{}
	w := &Writer{writer: fake, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ctx := pipeline.WithCycleID(context.Background(), "cycle-7")

	require.NoError(t, w.LoadBatch(ctx, []domain.StationReading{testReading(t), testReading(t)}))
	require.Len(t, fake.msgs, 2)
	assert.Equal(t, []byte("cycle-7"), fake.msgs[0].Headers[2].Value)

	require.NoError(t, w.LoadBatch(ctx, nil))
	assert.Len(t, fake.msgs, 2)

	require.NoError(t, w.Close())
	assert.True(t, fake.closed)
}

func TestWriter_LoadBatchError(t *testing.T) {
	fake := &fakeMessageWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fake, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.LoadBatch(context.Background(), []domain.StationReading{testReading(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
