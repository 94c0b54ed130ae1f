package dto

import (
	"encoding/json"
	"time"
)

// PaystackEnvelope wraps every Paystack API response.
type PaystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type PaystackInitializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type PaystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackVerifyData struct {
	ID              int64      `json:"id"`
	Status          string     `json:"status"`
	Reference       string     `json:"reference"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Channel         string     `json:"channel"`
	GatewayResponse string     `json:"gateway_response"`
	PaidAt          *time.Time `json:"paid_at"`
}
