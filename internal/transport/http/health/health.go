package health

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/you-humble/paystack-checkout/platform/logger"
)

type Check func(ctx context.Context) error

// Handler answers SERVING when every named dependency check passes.
func Handler(timeout time.Duration, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		names := lo.Keys(checks)
		slices.Sort(names)

		status, body := http.StatusOK, "SERVING"
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Error(ctx, "health check", logger.String("dependency", name), logger.ErrorF(err))
				status, body = http.StatusServiceUnavailable, "NOT_SERVING"
				break
			}
		}

		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			logger.Error(r.Context(), "health check write", logger.ErrorF(err))
		}
	}
}
