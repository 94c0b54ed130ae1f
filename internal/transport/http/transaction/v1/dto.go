package http

import (
	"time"

	"github.com/shopspring/decimal"
)

type initializeRequest struct {
	Email   string          `json:"email"`
	Amount  decimal.Decimal `json:"amount"`
	OrderID string          `json:"orderId"`
}

type initializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
	Reference        string `json:"reference"`
}

type verifyResponse struct {
	OrderID     string     `json:"order_id,omitempty"`
	Reference   string     `json:"reference"`
	Status      string     `json:"status"`
	AmountMinor int64      `json:"amount_minor"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

type verifyFailure struct {
	Status        string `json:"status"`
	ExpectedMinor int64  `json:"expected_amount_minor,omitempty"`
	GatewayMinor  int64  `json:"gateway_amount_minor,omitempty"`
	GatewayStatus string `json:"gateway_status,omitempty"`
}
