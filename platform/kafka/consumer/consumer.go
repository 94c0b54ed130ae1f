package consumer

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/you-humble/paystack-checkout/platform/kafka"
)

type Logger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

type consumer struct {
	group       sarama.ConsumerGroup
	topics      []string
	logger      Logger
	middlewares []kafka.Middleware
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, logger Logger, middlewares ...kafka.Middleware) *consumer {
	return &consumer{
		group:       group,
		topics:      topics,
		logger:      logger,
		middlewares: middlewares,
	}
}

// Consume blocks until ctx is done or the group is closed.
func (c *consumer) Consume(ctx context.Context, handler kafka.MessageHandler) error {
	gh := NewGroupHandler(handler, c.logger, c.middlewares...)

	for {
		if err := c.group.Consume(ctx, c.topics, gh); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}

			c.logger.Error(ctx, "kafka consume failed", zap.Strings("topics", c.topics), zap.Error(err))
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Info(ctx, "kafka consumer group rebalancing", zap.Strings("topics", c.topics))
	}
}
