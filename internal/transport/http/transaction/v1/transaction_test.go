package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/internal/transport/http/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, svc *mocks.MockTransactionService, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := chi.NewRouter()
	NewTransactionHandler(svc).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHandlerInitialize(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	email := gofakeit.Email()
	body := fmt.Sprintf(`{"email":%q,"amount":5000.50,"orderId":%q}`, email, orderID)

	type testCase struct {
		name       string
		body       string
		setup      func(svc *mocks.MockTransactionService)
		wantStatus int
		assert     func(t *testing.T, env envelope)
	}

	tests := []testCase{
		{
			name: "success",
			body: body,
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Initialize", mock.Anything, mock.MatchedBy(func(p model.InitializeParams) bool {
					return p.OrderID == orderID &&
						p.Email == email &&
						p.Amount.Equal(decimal.RequireFromString("5000.50"))
				})).
					Return(&model.InitializeResult{
						AuthorizationURL: "https://checkout.paystack.com/abc",
						AccessCode:       "abc",
						Reference:        "ref-1",
					}, nil).
					Once()
			},
			wantStatus: http.StatusOK,
			assert: func(t *testing.T, env envelope) {
				assert.True(t, env.Success)
				var data initializeResponse
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.Equal(t, "https://checkout.paystack.com/abc", data.AuthorizationURL)
				assert.Equal(t, "ref-1", data.Reference)
			},
		},
		{
			name:       "malformed body",
			body:       `{"email":`,
			setup:      func(svc *mocks.MockTransactionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid order id",
			body:       fmt.Sprintf(`{"email":%q,"amount":10,"orderId":"42"}`, email),
			setup:      func(svc *mocks.MockTransactionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "validation error",
			body: body,
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Initialize", mock.Anything, mock.Anything).Return(nil, model.ErrValidation).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "orphaned: order not found",
			body: body,
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Initialize", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("op: %w: %w", model.ErrInconsistency, model.ErrOrderNotFound)).
					Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "orphaned: order already paid",
			body: body,
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Initialize", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("op: %w: %w", model.ErrInconsistency, model.ErrOrderAlreadyPaid)).
					Once()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "orphaned: store failure has its own message",
			body: body,
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Initialize", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("op: %w: connection reset", model.ErrInconsistency)).
					Once()
			},
			wantStatus: http.StatusInternalServerError,
			assert: func(t *testing.T, env envelope) {
				assert.Contains(t, env.Message, "could not be recorded")
			},
		},
		{
			name: "gateway error does not leak provider details",
			body: body,
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Initialize", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: Invalid key sk_live_123", model.ErrGateway)).
					Once()
			},
			wantStatus: http.StatusInternalServerError,
			assert: func(t *testing.T, env envelope) {
				assert.Equal(t, "Payment gateway error", env.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewMockTransactionService(t)
			tt.setup(svc)

			req := httptest.NewRequest(http.MethodPost, "/transaction/initialize", strings.NewReader(tt.body))
			rec, env := serve(t, svc, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
			assert.NotEmpty(t, env.Message)
			if tt.assert != nil {
				tt.assert(t, env)
			}
		})
	}
}

func TestHandlerVerify(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	paidAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	type testCase struct {
		name       string
		path       string
		setup      func(svc *mocks.MockTransactionService)
		wantStatus int
		assert     func(t *testing.T, env envelope)
	}

	tests := []testCase{
		{
			name: "paid",
			path: "/transaction/verify/ref-1",
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Verify", mock.Anything, "ref-1").
					Return(&model.VerifyResult{
						Status:        model.VerifyStatusPaid,
						OrderID:       orderID,
						Reference:     "ref-1",
						ExpectedMinor: 500000,
						PaidAt:        &paidAt,
					}, nil).
					Once()
			},
			wantStatus: http.StatusOK,
			assert: func(t *testing.T, env envelope) {
				assert.Equal(t, "Payment verified successfully", env.Message)
				var data verifyResponse
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.Equal(t, orderID.String(), data.OrderID)
				assert.Equal(t, "paid", data.Status)
				assert.Equal(t, int64(500000), data.AmountMinor)
				require.NotNil(t, data.PaidAt)
				assert.True(t, data.PaidAt.Equal(paidAt))
			},
		},
		{
			name: "already paid",
			path: "/transaction/verify/ref-1",
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Verify", mock.Anything, "ref-1").
					Return(&model.VerifyResult{Status: model.VerifyStatusAlreadyPaid, OrderID: orderID, Reference: "ref-1", PaidAt: &paidAt}, nil).
					Once()
			},
			wantStatus: http.StatusOK,
			assert: func(t *testing.T, env envelope) {
				assert.Equal(t, "Order already paid", env.Message)
			},
		},
		{
			name: "amount mismatch carries structured status",
			path: "/transaction/verify/ref-1",
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Verify", mock.Anything, "ref-1").
					Return(&model.VerifyResult{
						Status:        model.VerifyStatusAmountMismatch,
						ExpectedMinor: 500000,
						GatewayMinor:  400000,
					}, model.ErrAmountMismatch).
					Once()
			},
			wantStatus: http.StatusBadRequest,
			assert: func(t *testing.T, env envelope) {
				var data verifyFailure
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.Equal(t, "amount_mismatch", data.Status)
				assert.Equal(t, int64(400000), data.GatewayMinor)
			},
		},
		{
			name: "verification failed",
			path: "/transaction/verify/ref-1",
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Verify", mock.Anything, "ref-1").
					Return(&model.VerifyResult{Status: model.VerifyStatusVerificationFailed, GatewayStatus: "abandoned"}, model.ErrVerificationFailed).
					Once()
			},
			wantStatus: http.StatusBadRequest,
			assert: func(t *testing.T, env envelope) {
				var data verifyFailure
				require.NoError(t, json.Unmarshal(env.Data, &data))
				assert.Equal(t, "verification_failed", data.Status)
			},
		},
		{
			name: "unknown reference",
			path: "/transaction/verify/nope",
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Verify", mock.Anything, "nope").Return(nil, model.ErrOrderNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "unexpected error",
			path: "/transaction/verify/ref-1",
			setup: func(svc *mocks.MockTransactionService) {
				svc.On("Verify", mock.Anything, "ref-1").Return(nil, errors.New("boom")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			assert: func(t *testing.T, env envelope) {
				assert.Equal(t, "Internal server error", env.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewMockTransactionService(t)
			tt.setup(svc)

			rec, env := serve(t, svc, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
			if tt.assert != nil {
				tt.assert(t, env)
			}
		})
	}
}
