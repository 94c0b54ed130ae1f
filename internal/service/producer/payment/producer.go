package pmtproducer

import (
	"context"
	"fmt"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/kafka"
)

type Converter interface {
	PaidOrderToRecord(m model.PaidOrder) ([]byte, error)
	OrphanedTransactionToRecord(m model.OrphanedTransaction) ([]byte, error)
}

type service struct {
	paid     kafka.Producer
	orphaned kafka.Producer
	conv     Converter
}

func NewPaymentProducer(paid, orphaned kafka.Producer, conv Converter) *service {
	return &service{paid: paid, orphaned: orphaned, conv: conv}
}

func (s *service) SendOrderPaid(ctx context.Context, event model.PaidOrder) error {
	payload, err := s.conv.PaidOrderToRecord(event)
	if err != nil {
		return fmt.Errorf("converter paid_order_to_record error: %w", err)
	}

	if err := s.paid.Send(ctx, kafka.OutgoingMessage{
		Key:     []byte(event.OrderID.String()),
		Value:   payload,
		Headers: map[string]string{"event_id": event.EventID.String(), "event_type": "order.paid"},
	}); err != nil {
		return fmt.Errorf("producer to order.paid topic error: %w", err)
	}

	return nil
}

func (s *service) SendTransactionOrphaned(ctx context.Context, event model.OrphanedTransaction) error {
	payload, err := s.conv.OrphanedTransactionToRecord(event)
	if err != nil {
		return fmt.Errorf("converter orphaned_transaction_to_record error: %w", err)
	}

	if err := s.orphaned.Send(ctx, kafka.OutgoingMessage{
		Key:     []byte(event.Reference),
		Value:   payload,
		Headers: map[string]string{"event_id": event.EventID.String(), "event_type": "transaction.orphaned"},
	}); err != nil {
		return fmt.Errorf("producer to transaction.orphaned topic error: %w", err)
	}

	return nil
}
