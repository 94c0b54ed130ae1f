package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/internal/transport/http/response"
)

type StatsService interface {
	Stats(ctx context.Context) (model.OrderStats, error)
}

type statsResponse struct {
	TotalOrders     int64 `json:"total_orders"`
	PaidOrders      int64 `json:"paid_orders"`
	DeliveredOrders int64 `json:"delivered_orders"`
	PendingOrders   int64 `json:"pending_orders"`
}

type handler struct {
	svc StatsService
}

func NewStatsHandler(service StatsService) *handler {
	return &handler{svc: service}
}

func (h *handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middlewares...)
		r.Get("/stats", h.Stats)
	})
}

func (h *handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		response.Fail(w, r, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	response.OK(w, r, "Order statistics", statsResponse{
		TotalOrders:     st.TotalOrders,
		PaidOrders:      st.PaidOrders,
		DeliveredOrders: st.DeliveredOrders,
		PendingOrders:   st.PendingOrders,
	})
}
