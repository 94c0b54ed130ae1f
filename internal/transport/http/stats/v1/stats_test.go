package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/internal/transport/http/middleware"
	"github.com/you-humble/paystack-checkout/internal/transport/http/mocks"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

func TestHandlerStats(t *testing.T) {
	logger.SetNopLogger()

	const token = "admin-token"

	type testCase struct {
		name       string
		auth       string
		setup      func(svc *mocks.MockStatsService)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "success",
			auth: "Bearer " + token,
			setup: func(svc *mocks.MockStatsService) {
				svc.On("Stats", mock.Anything).
					Return(model.OrderStats{TotalOrders: 3, PaidOrders: 1, PendingOrders: 1}, nil).
					Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			setup:      func(svc *mocks.MockStatsService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong token",
			auth:       "Bearer nope",
			setup:      func(svc *mocks.MockStatsService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "repository failure",
			auth: "Bearer " + token,
			setup: func(svc *mocks.MockStatsService) {
				svc.On("Stats", mock.Anything).Return(model.OrderStats{}, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockStatsService(t)
			tt.setup(svc)

			r := chi.NewRouter()
			NewStatsHandler(svc).Register(r, middleware.AdminToken(token))

			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var env struct {
				Success bool          `json:"success"`
				Data    statsResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, int64(3), env.Data.TotalOrders)
				assert.Equal(t, int64(1), env.Data.PendingOrders)
			}
		})
	}
}
