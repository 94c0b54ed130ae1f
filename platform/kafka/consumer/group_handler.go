package consumer

import (
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/you-humble/paystack-checkout/platform/kafka"
)

type groupHandler struct {
	handler kafka.MessageHandler
	logger  Logger
}

func NewGroupHandler(handler kafka.MessageHandler, logger Logger, middlewares ...kafka.Middleware) *groupHandler {
	return &groupHandler{
		handler: kafka.Chain(handler, middlewares...),
		logger:  logger,
	}
}

func (g *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (g *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message only after the handler accepted it. A handler
// error ends the claim without marking, which ends the session; the next
// session resumes from the failed record's offset.
func (g *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for {
		select {
		case record, ok := <-claim.Messages():
			if !ok {
				g.logger.Info(ctx, "kafka claim closed", zap.String("topic", claim.Topic()))
				return nil
			}

			if err := g.handler(ctx, toMessage(record)); err != nil {
				g.logger.Error(ctx, "kafka handler failed",
					zap.String("topic", record.Topic),
					zap.Int64("offset", record.Offset),
					zap.Error(err),
				)
				return fmt.Errorf("handle %s/%d@%d: %w", record.Topic, record.Partition, record.Offset, err)
			}

			session.MarkMessage(record, "")

		case <-ctx.Done():
			return nil
		}
	}
}

func toMessage(record *sarama.ConsumerMessage) kafka.Message {
	headers := make(map[string][]byte, len(record.Headers))
	for _, h := range record.Headers {
		if h != nil && h.Key != nil {
			headers[string(h.Key)] = h.Value
		}
	}

	return kafka.Message{
		Headers:   headers,
		Timestamp: record.Timestamp,
		Key:       record.Key,
		Value:     record.Value,
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
	}
}
