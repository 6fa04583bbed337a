package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCache struct {
	evicted []int64
	err     error
}

func (f *fakeCache) Evict(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.evicted = append(f.evicted, id)
	return nil
}

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "product_events", Value: []byte(value)}
}

func TestConsumer_EvictsOnProductEvents(t *testing.T) {
	cache := &fakeCache{}
	c := NewConsumer(cache, zap.NewNop())

	for _, event := range []string{"ProductCreated", "ProductUpdated", "ProductHidden"} {
		err := c.processMessage(context.Background(), message(`{"event":"`+event+`","payload":{"product_id":42}}`))
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{42, 42, 42}, cache.evicted)
}

func TestConsumer_IgnoresUnknownEvents(t *testing.T) {
	cache := &fakeCache{}
	c := NewConsumer(cache, zap.NewNop())

	require.NoError(t, c.processMessage(context.Background(), message(`{"event":"Something","payload":{}}`)))
	assert.Empty(t, cache.evicted)
}

func TestConsumer_Errors(t *testing.T) {
	c := NewConsumer(&fakeCache{err: errors.New("redis down")}, zap.NewNop())

	assert.Error(t, c.processMessage(context.Background(), message(`not json`)))
	assert.Error(t, c.processMessage(context.Background(), message(`{"event":"ProductHidden","payload":{"product_id":1}}`)))
}
