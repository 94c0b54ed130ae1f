package converter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-humble/paystack-checkout/internal/model"
)

func TestPaidOrderToRecord(t *testing.T) {
	t.Parallel()

	ev := model.PaidOrder{
		EventID:     uuid.New(),
		OrderID:     uuid.New(),
		Reference:   "ref-1",
		AmountMinor: 500000,
		PaidAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("WAT", 3600)),
	}

	payload, err := NewKafkaConverter().PaidOrderToRecord(ev)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, ev.OrderID.String(), got["order_id"])
	assert.Equal(t, "ref-1", got["reference"])
	assert.EqualValues(t, 500000, got["amount_minor"])
	assert.Equal(t, "2024-05-01T09:00:00Z", got["paid_at"])
}

func TestOrphanedTransactionToModel(t *testing.T) {
	t.Parallel()

	conv := NewKafkaConverter()

	t.Run("decodes what the producer encodes", func(t *testing.T) {
		t.Parallel()

		in := model.OrphanedTransaction{
			EventID:    uuid.New(),
			OrderID:    uuid.New(),
			Reference:  "ref-9",
			Reason:     model.OrphanReasonStoreFailure,
			OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}
		payload, err := conv.OrphanedTransactionToRecord(in)
		require.NoError(t, err)

		out, err := conv.OrphanedTransactionToModel(payload)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("rejects bad order id", func(t *testing.T) {
		t.Parallel()

		_, err := conv.OrphanedTransactionToModel([]byte(`{"event_id":"` + uuid.NewString() + `","order_id":"nope","reference":"r"}`))
		require.Error(t, err)
		assert.ErrorContains(t, err, "order_id")
	})

	t.Run("rejects non json", func(t *testing.T) {
		t.Parallel()

		_, err := conv.OrphanedTransactionToModel([]byte("not json"))
		require.Error(t, err)
	})
}
