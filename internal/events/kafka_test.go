package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaPublisher_PartitionsByMessageKey(t *testing.T) {
	p := NewKafkaPublisher([]string{"broker-1:9092"}, "checkout-events", zerolog.Nop())
	t.Cleanup(func() { p.Close() })

	kp, ok := p.(*kafkaPublisher)
	require.True(t, ok)

	// Messages are keyed by user id; per-user ordering holds only with a
	// key-aware balancer.
	assert.IsType(t, &kafka.Hash{}, kp.writer.Balancer)
	assert.Equal(t, "checkout-events", kp.writer.Topic)
}
