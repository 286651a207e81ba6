package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/envis/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock writer ---

type fakeWriter struct {
	failures int
	calls    int
	written  []kafkago.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() domain.ArtifactEvent {
	return domain.ArtifactEvent{
		ID:          "evt-1",
		Kind:        domain.ArtifactGeoJSON,
		Path:        "uploads/processed.geojson",
		Variable:    "sst",
		Count:       42,
		GeneratedAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	var decoded domain.ArtifactEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "artifact_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.ArtifactGeoJSON), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-07-01T12:00:00Z"), msg.Headers[1].Value)
}

func TestPublisher_Notify(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, logger: discardLogger()}

	require.NoError(t, p.Notify(context.Background(), testEvent()))
	require.Len(t, w.written, 1)
	assert.Equal(t, []byte("evt-1"), w.written[0].Key)
}

func TestPublisher_RetriesTransientFailure(t *testing.T) {
	w := &fakeWriter{failures: 1}
	p := &Publisher{writer: w, logger: discardLogger()}

	require.NoError(t, p.Notify(context.Background(), testEvent()))
	assert.Equal(t, 2, w.calls)
	assert.Len(t, w.written, 1)
}

func TestPublisher_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: publishAttempts}
	p := &Publisher{writer: w, logger: discardLogger()}

	err := p.Notify(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evt-1")
	assert.Equal(t, publishAttempts, w.calls)
	assert.Empty(t, w.written)
}

func TestPublisher_StopsOnCancel(t *testing.T) {
	w := &fakeWriter{failures: publishAttempts}
	p := &Publisher{writer: w, logger: discardLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Notify(ctx, testEvent())
	require.Error(t, err)
	assert.Equal(t, 1, w.calls)
}
