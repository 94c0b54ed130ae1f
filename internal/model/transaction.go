package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VerifyStatus string

const (
	VerifyStatusPaid               VerifyStatus = "paid"
	VerifyStatusAlreadyPaid        VerifyStatus = "already_paid"
	VerifyStatusAmountMismatch     VerifyStatus = "amount_mismatch"
	VerifyStatusVerificationFailed VerifyStatus = "verification_failed"
)

// GatewaySuccess is the provider's status for a settled transaction.
const GatewaySuccess = "success"

type InitializeParams struct {
	OrderID uuid.UUID
	Email   string
	// Major units, at most two decimal places.
	Amount decimal.Decimal
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type GatewayInitializeParams struct {
	Email string
	// Major units; the gateway client converts to minor units.
	Amount      decimal.Decimal
	CallbackURL string
}

type GatewayTransaction struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
	Channel     string
	// Provider message for non-success statuses.
	GatewayResponse string
	PaidAt          *time.Time
}

type VerifyResult struct {
	Status         VerifyStatus
	OrderID        uuid.UUID
	Reference      string
	ExpectedMinor  int64
	GatewayMinor   int64
	GatewayStatus  string
	PaidAt         *time.Time
	GatewayMessage string
}

type OrphanReason string

const (
	OrphanReasonOrderNotFound OrphanReason = "order_not_found"
	OrphanReasonAlreadyPaid   OrphanReason = "order_already_paid"
	OrphanReasonStoreFailure  OrphanReason = "store_failure"
)

// OrphanedTransaction is a gateway transaction whose reference could not be
// stored on the order.
type OrphanedTransaction struct {
	EventID    uuid.UUID
	OrderID    uuid.UUID
	Reference  string
	Reason     OrphanReason
	OccurredAt time.Time
}

type PaidOrder struct {
	EventID     uuid.UUID
	OrderID     uuid.UUID
	Reference   string
	AmountMinor int64
	PaidAt      time.Time
}
