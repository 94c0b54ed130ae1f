package pmtproducer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-humble/paystack-checkout/internal/converter"
	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/kafka"
)

type recordingProducer struct {
	sent []kafka.OutgoingMessage
	err  error
}

func (p *recordingProducer) Send(_ context.Context, msg kafka.OutgoingMessage) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func TestSendOrderPaid(t *testing.T) {
	t.Parallel()

	paid, orphaned := &recordingProducer{}, &recordingProducer{}
	svc := NewPaymentProducer(paid, orphaned, converter.NewKafkaConverter())

	event := model.PaidOrder{
		EventID:     uuid.New(),
		OrderID:     uuid.New(),
		Reference:   "ref-1",
		AmountMinor: 500000,
		PaidAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.SendOrderPaid(context.Background(), event))

	require.Len(t, paid.sent, 1)
	assert.Empty(t, orphaned.sent)

	msg := paid.sent[0]
	assert.Equal(t, []byte(event.OrderID.String()), msg.Key)
	assert.Equal(t, event.EventID.String(), msg.Headers["event_id"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "ref-1", body["reference"])
}

func TestSendTransactionOrphaned(t *testing.T) {
	t.Parallel()

	t.Run("keyed by reference", func(t *testing.T) {
		t.Parallel()

		paid, orphaned := &recordingProducer{}, &recordingProducer{}
		svc := NewPaymentProducer(paid, orphaned, converter.NewKafkaConverter())

		event := model.OrphanedTransaction{
			EventID:   uuid.New(),
			OrderID:   uuid.New(),
			Reference: "ref-2",
			Reason:    model.OrphanReasonOrderNotFound,
		}
		require.NoError(t, svc.SendTransactionOrphaned(context.Background(), event))

		require.Len(t, orphaned.sent, 1)
		assert.Empty(t, paid.sent)
		assert.Equal(t, []byte("ref-2"), orphaned.sent[0].Key)
		assert.Equal(t, "transaction.orphaned", orphaned.sent[0].Headers["event_type"])
	})

	t.Run("producer error is wrapped", func(t *testing.T) {
		t.Parallel()

		brokerErr := errors.New("broker unavailable")
		svc := NewPaymentProducer(&recordingProducer{}, &recordingProducer{err: brokerErr}, converter.NewKafkaConverter())

		err := svc.SendTransactionOrphaned(context.Background(), model.OrphanedTransaction{Reference: "ref-3"})
		require.Error(t, err)
		assert.ErrorIs(t, err, brokerErr)
	})
}
