package response

import (
	"encoding/json"
	"net/http"

	"github.com/you-humble/paystack-checkout/platform/logger"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(r.Context(), "write response", logger.ErrorF(err))
	}
}

func OK(w http.ResponseWriter, r *http.Request, message string, data any) {
	JSON(w, r, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Fail(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	JSON(w, r, status, Envelope{Success: false, Message: message, Data: data})
}
