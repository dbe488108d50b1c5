package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_Defaults(t *testing.T) {
	p := NewProducer([]string{"b1:9092", "b2:9092"}, "foodbot.orders")

	w := p.writer
	assert.Equal(t, "foodbot.orders", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.False(t, w.Async)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)

	require.NoError(t, p.Close())
}

func TestNewProducer_Options(t *testing.T) {
	p := NewProducer([]string{"b1:9092"}, "foodbot.orders",
		WithBatchTimeout(time.Millisecond),
		WithWriteTimeout(time.Second),
	)

	assert.Equal(t, time.Millisecond, p.writer.BatchTimeout)
	assert.Equal(t, time.Second, p.writer.WriteTimeout)
	require.NoError(t, p.Close())
}
