package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/internal/transport/http/response"
)

const maxBodyBytes = 1 << 16

type TransactionService interface {
	Initialize(ctx context.Context, params model.InitializeParams) (*model.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*model.VerifyResult, error)
}

type handler struct {
	svc TransactionService
}

func NewTransactionHandler(service TransactionService) *handler {
	return &handler{svc: service}
}

// Register mounts the routes on r. Middlewares apply to transaction routes only.
func (h *handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/transaction", func(r chi.Router) {
		r.Use(middlewares...)
		r.Post("/initialize", h.Initialize)
		r.Get("/verify/{reference}", h.Verify)
	})
}

func (h *handler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.Fail(w, r, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	ordID, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		response.Fail(w, r, http.StatusBadRequest, "Invalid orderId", nil)
		return
	}

	res, err := h.svc.Initialize(r.Context(), model.InitializeParams{
		OrderID: ordID,
		Email:   strings.TrimSpace(req.Email),
		Amount:  req.Amount,
	})
	if err != nil {
		status, msg := mapError(err)
		response.Fail(w, r, status, msg, nil)
		return
	}

	response.OK(w, r, "Authorization URL created", initializeResponse{
		AuthorizationURL: res.AuthorizationURL,
		AccessCode:       res.AccessCode,
		Reference:        res.Reference,
	})
}

func (h *handler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	res, err := h.svc.Verify(r.Context(), reference)
	if err != nil {
		status, msg := mapError(err)
		var data any
		if res != nil {
			data = verifyFailure{
				Status:        string(res.Status),
				ExpectedMinor: res.ExpectedMinor,
				GatewayMinor:  res.GatewayMinor,
				GatewayStatus: res.GatewayStatus,
			}
		}
		response.Fail(w, r, status, msg, data)
		return
	}

	msg := "Payment verified successfully"
	if res.Status == model.VerifyStatusAlreadyPaid {
		msg = "Order already paid"
	}

	response.OK(w, r, msg, verifyResponse{
		OrderID:     res.OrderID.String(),
		Reference:   res.Reference,
		Status:      string(res.Status),
		AmountMinor: res.ExpectedMinor,
		PaidAt:      res.PaidAt,
	})
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, model.ErrAmountMismatch):
		return http.StatusBadRequest, "Payment amount does not match order total"
	case errors.Is(err, model.ErrVerificationFailed):
		return http.StatusBadRequest, "Payment verification failed"
	case errors.Is(err, model.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, model.ErrOrderAlreadyPaid):
		return http.StatusConflict, "Order already paid"
	case errors.Is(err, model.ErrReferenceConflict):
		return http.StatusConflict, "Transaction reference conflict"
	case errors.Is(err, model.ErrInconsistency):
		return http.StatusInternalServerError, "Payment initialized but could not be recorded, it has been logged for follow-up"
	case errors.Is(err, model.ErrGateway):
		return http.StatusInternalServerError, "Payment gateway error"
	case errors.Is(err, model.ErrLockTimeout):
		return http.StatusInternalServerError, "Payment is being processed, please retry"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
