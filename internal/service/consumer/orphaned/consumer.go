package orphconsumer

import (
	"context"
	"fmt"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/kafka"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

type Converter interface {
	OrphanedTransactionToModel(data []byte) (model.OrphanedTransaction, error)
}

type Service interface {
	ReconcileOrphan(ctx context.Context, event model.OrphanedTransaction) error
}

type service struct {
	consumer kafka.Consumer
	conv     Converter
	svc      Service
}

func NewOrphanedConsumer(
	consumer kafka.Consumer,
	conv Converter,
	svc Service,
) *service {
	return &service{consumer: consumer, conv: conv, svc: svc}
}

func (s *service) RunOrphanedConsume(ctx context.Context) error {
	logger.Info(ctx, "Starting orphaned transaction consumer")

	if err := s.consumer.Consume(ctx, s.orphanedHandler); err != nil {
		logger.Error(ctx, "Consume from transaction.orphaned topic error", logger.ErrorF(err))
		return err
	}

	return nil
}

func (s *service) orphanedHandler(ctx context.Context, msg kafka.Message) error {
	event, err := s.conv.OrphanedTransactionToModel(msg.Value)
	if err != nil {
		// A record that never decodes would block the partition.
		logger.Error(ctx, "Skip undecodable orphaned transaction record",
			logger.Int64("offset", msg.Offset),
			logger.ErrorF(err),
		)
		return nil
	}

	if err := s.svc.ReconcileOrphan(ctx, event); err != nil {
		logger.Error(ctx, "consumer.ReconcileOrphan", logger.ErrorF(err))
		return fmt.Errorf("reconcile orphan: %w", err)
	}

	return nil
}
