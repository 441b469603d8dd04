package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()
	_, err := NewProducer(nil)
	require.Error(t, err)
}

func TestPublishEvent(t *testing.T) {
	t.Parallel()
	w := &recordingWriter{}
	p := &Producer{writer: w}

	err := p.PublishEvent(context.Background(), "report_events", "r-1", map[string]string{"type": "report_created"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	m := w.msgs[0]
	assert.Equal(t, "report_events", m.Topic)
	assert.Equal(t, []byte("r-1"), m.Key)

	var got map[string]string
	require.NoError(t, json.Unmarshal(m.Value, &got))
	assert.Equal(t, "report_created", got["type"])
}

func TestPublishEvent_Errors(t *testing.T) {
	t.Parallel()

	p := &Producer{writer: &recordingWriter{err: errors.New("broker down")}}
	require.ErrorContains(t, p.PublishEvent(context.Background(), "t", "k", 1), "broker down")

	p = &Producer{writer: &recordingWriter{}}
	require.ErrorContains(t, p.PublishEvent(context.Background(), "t", "k", make(chan int)), "json.Marshal")
}
