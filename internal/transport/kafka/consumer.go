package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/pkg/kafka"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"go.uber.org/zap"
)

type CacheEvicter interface {
	Evict(ctx context.Context, id int64) error
}

// Consumer drops cached products when product events arrive. The event is
// published only after the write committed, so this also clears entries
// that a concurrent reader cached from the pre-commit state.
type Consumer struct {
	cache  CacheEvicter
	logger *zap.Logger
}

func NewConsumer(cache CacheEvicter, logger *zap.Logger) *Consumer {
	return &Consumer{
		cache:  cache,
		logger: logger,
	}
}

func (c *Consumer) Start(ctx context.Context, brokers []string, groupID string) error {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		groupID,
		[]string{domain.ProductEventsTopic},
		c.processMessage,
		c.logger,
	)

	return consumerGroup.Run(ctx)
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Debug(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
	)

	type EventWrapper struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}

	var wrapper EventWrapper
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		mylogger.Error(ctx, c.logger, "Error unmarshalling wrapper", zap.Error(err))
		return err
	}

	switch wrapper.Event {
	case domain.EventProductUpdated, domain.EventProductHidden, domain.EventProductCreated:
		var event domain.ProductChangedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Warn(ctx, c.logger, "Error unmarshalling event structure", zap.Error(err))
			return err
		}

		if err := c.cache.Evict(ctx, event.ProductID); err != nil {
			mylogger.Warn(
				ctx,
				c.logger,
				"Error evicting product",
				zap.Int64("product_id", event.ProductID),
				zap.Error(err),
			)

			return fmt.Errorf("evict product %d: %w", event.ProductID, err)
		}
	default:
		mylogger.Warn(ctx, c.logger, "Ignored event type", zap.String("event_type", wrapper.Event))
	}

	return nil
}
