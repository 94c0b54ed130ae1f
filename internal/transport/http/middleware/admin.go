package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/you-humble/paystack-checkout/internal/transport/http/response"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

// AdminToken accepts requests carrying "Authorization: Bearer <token>".
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.Warn(r.Context(), "admin request rejected", logger.String("remote_addr", r.RemoteAddr))
				response.Fail(w, r, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
