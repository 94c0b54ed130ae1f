package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID         uuid.UUID
	TotalPrice decimal.Decimal
	// Gateway reference of the latest initialized transaction.
	TransactionReference *string
	IsPaid               bool
	// Set together with IsPaid.
	PaidAt      *time.Time
	IsDelivered bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MaxAmount is the largest total the orders.total_price NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// TotalMinor returns the total in minor units. ok is false when the total
// has more than two decimal places.
func (o *Order) TotalMinor() (minor int64, ok bool) {
	return ToMinor(o.TotalPrice)
}

// ToMinor converts major units to minor units. ok is false for fractions of
// a minor unit and for values outside [0, MaxInt64].
func ToMinor(amount decimal.Decimal) (int64, bool) {
	shifted := amount.Shift(2)
	if !shifted.IsInteger() || shifted.IsNegative() || shifted.GreaterThan(maxMinor) {
		return 0, false
	}
	return shifted.IntPart(), true
}

type OrderStats struct {
	TotalOrders     int64
	PaidOrders      int64
	DeliveredOrders int64
	PendingOrders   int64
}
