package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/you-humble/paystack-checkout/internal/transport/http/response"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

// RateLimit allows limit requests per client IP within window. A nil counter
// keeps the counts in process. Counter errors let the request through.
func RateLimit(limit int, window time.Duration, counter httprate.LimitCounter) func(http.Handler) http.Handler {
	opts := []httprate.Option{
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn(r.Context(), "rate limited", logger.String("path", r.URL.Path))
			response.Fail(w, r, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
		}),
	}
	if counter != nil {
		opts = append(opts, httprate.WithLimitCounter(failOpen{counter}))
	}

	return httprate.Limit(limit, window, opts...)
}

type failOpen struct {
	httprate.LimitCounter
}

func (c failOpen) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c failOpen) IncrementBy(key string, currentWindow time.Time, amount int) error {
	if err := c.LimitCounter.IncrementBy(key, currentWindow, amount); err != nil {
		logger.Error(context.Background(), "rate limit counter increment", logger.String("key", key), logger.ErrorF(err))
	}
	return nil
}

func (c failOpen) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	curr, prev, err := c.LimitCounter.Get(key, currentWindow, previousWindow)
	if err != nil {
		logger.Error(context.Background(), "rate limit counter get", logger.String("key", key), logger.ErrorF(err))
		return 0, 0, nil
	}
	return curr, prev, nil
}
