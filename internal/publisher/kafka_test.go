package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflexa/internal/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
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

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "reflexa.scores"})
	assert.NotNil(t, p)
	assert.NotNil(t, p.writer)
	assert.Equal(t, "reflexa.scores", p.Topic())
	_ = p.Close()
}

func TestDeliverKeysByWallet(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "t"}

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := events.Event{Type: events.ScoreVerified, Wallet: "0xabc", RoundID: "r1", Score: 920, ReactionTime: 180, At: at}
	require.NoError(t, p.Deliver(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "0xabc", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "score_verified", string(msg.Headers[0].Value))

	var got events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, 920, got.Score)
	assert.Equal(t, "r1", got.RoundID)
}

func TestDeliverReturnsWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w}

	err := p.Deliver(context.Background(), events.Event{Type: events.BadgeClaimed, Wallet: "0xabc"})
	assert.EqualError(t, err, "broker down")
}

func TestDeliverCanceledContext(t *testing.T) {
	p := NewKafkaPublisher(Config{Brokers: []string{"localhost:9999"}, Topic: "test"})
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Deliver(ctx, events.Event{Type: events.ScoreVerified, Wallet: "0xabc"})
	assert.Error(t, err)
}
