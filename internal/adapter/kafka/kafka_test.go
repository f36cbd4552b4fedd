package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func headers(msg kafkago.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func TestSerializeToMessage_Success(t *testing.T) {
	completed := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	outcome := domain.Outcome{Year: 2020, Success: true, FilePath: "out/A652_2020.parquet", CompletedAt: completed}

	msg, err := serializeToMessage(outcome)
	require.NoError(t, err)

	assert.Equal(t, []byte("2020"), msg.Key)
	assert.Equal(t, completed, msg.Time)
	h := headers(msg)
	assert.Equal(t, "A652", h["station"])
	assert.Equal(t, "success", h["result"])
	assert.Equal(t, "", h["kind"])
	assert.Equal(t, "2024-03-01T10:00:00Z", h["completed_at"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, float64(2020), body["year"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "out/A652_2020.parquet", body["file_path"])
	assert.NotContains(t, body, "error_message")
}

func TestSerializeToMessage_Failure(t *testing.T) {
	outcome := domain.Failed(2021, domain.FailureNoStationData, domain.ErrNoStationData)

	msg, err := serializeToMessage(outcome)
	require.NoError(t, err)

	h := headers(msg)
	assert.Equal(t, "failed", h["result"])
	assert.Equal(t, "no_station_data", h["kind"])

	var decoded domain.Outcome
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, outcome.ErrorMessage, decoded.ErrorMessage)
	assert.Equal(t, domain.FailureNoStationData, decoded.Kind)
	assert.Empty(t, decoded.FilePath)
}

func TestPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := &Publisher{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background(), domain.Succeeded(2019, "out/A652_2019.parquet")))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("2019"), fw.msgs[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	p := &Publisher{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), domain.Succeeded(2019, "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2019")
	assert.Contains(t, err.Error(), "leader not available")
}
