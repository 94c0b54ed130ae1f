package converter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/you-humble/paystack-checkout/internal/model"
)

type paidOrderRecord struct {
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	Reference   string    `json:"reference"`
	AmountMinor int64     `json:"amount_minor"`
	PaidAt      time.Time `json:"paid_at"`
}

type orphanedTransactionRecord struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	Reference  string    `json:"reference"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

type kafkaConverter struct{}

func NewKafkaConverter() *kafkaConverter { return &kafkaConverter{} }

func (c *kafkaConverter) PaidOrderToRecord(m model.PaidOrder) ([]byte, error) {
	payload, err := json.Marshal(paidOrderRecord{
		EventID:     m.EventID.String(),
		OrderID:     m.OrderID.String(),
		Reference:   m.Reference,
		AmountMinor: m.AmountMinor,
		PaidAt:      m.PaidAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal paid order record: %w", err)
	}
	return payload, nil
}

func (c *kafkaConverter) OrphanedTransactionToRecord(m model.OrphanedTransaction) ([]byte, error) {
	payload, err := json.Marshal(orphanedTransactionRecord{
		EventID:    m.EventID.String(),
		OrderID:    m.OrderID.String(),
		Reference:  m.Reference,
		Reason:     string(m.Reason),
		OccurredAt: m.OccurredAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal orphaned transaction record: %w", err)
	}
	return payload, nil
}

func (c *kafkaConverter) OrphanedTransactionToModel(data []byte) (model.OrphanedTransaction, error) {
	var rec orphanedTransactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.OrphanedTransaction{}, fmt.Errorf("unmarshal orphaned transaction record: %w", err)
	}

	eventID, err := uuid.Parse(rec.EventID)
	if err != nil {
		return model.OrphanedTransaction{}, fmt.Errorf("event_id: %w", err)
	}
	orderID, err := uuid.Parse(rec.OrderID)
	if err != nil {
		return model.OrphanedTransaction{}, fmt.Errorf("order_id: %w", err)
	}
	if rec.Reference == "" {
		return model.OrphanedTransaction{}, fmt.Errorf("reference is empty")
	}

	return model.OrphanedTransaction{
		EventID:    eventID,
		OrderID:    orderID,
		Reference:  rec.Reference,
		Reason:     model.OrphanReason(rec.Reason),
		OccurredAt: rec.OccurredAt,
	}, nil
}
