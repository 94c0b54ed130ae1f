package producer

import (
	"context"
	"slices"

	"github.com/IBM/sarama"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/you-humble/paystack-checkout/platform/kafka"
)

type Logger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

type producer struct {
	syncProducer sarama.SyncProducer
	topic        string
	logger       Logger
}

func NewProducer(syncProducer sarama.SyncProducer, topic string, logger Logger) *producer {
	return &producer{
		syncProducer: syncProducer,
		topic:        topic,
		logger:       logger,
	}
}

func (p *producer) Send(ctx context.Context, msg kafka.OutgoingMessage) error {
	partition, offset, err := p.syncProducer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.ByteEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: recordHeaders(msg.Headers),
	})
	if err != nil {
		p.logger.Error(ctx, "kafka send failed",
			zap.String("topic", p.topic),
			zap.String("key", string(msg.Key)),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info(ctx, "kafka message sent",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("key", string(msg.Key)),
	)

	return nil
}

func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}

	keys := lo.Keys(headers)
	slices.Sort(keys)

	return lo.Map(keys, func(k string, _ int) sarama.RecordHeader {
		return sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])}
	})
}
