package middleware

import (
	"net/http"
	"strings"

	"github.com/launchpadhq/intake-platform/internal/tenancy"
)

// Tenant resolves the business scope for dashboard requests and stores
// it in the request context. The X-Business-Id header wins; a
// ?business= query parameter is accepted as a fallback for tooling.
func Tenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			businessID := strings.TrimSpace(r.Header.Get("X-Business-Id"))
			if businessID == "" {
				businessID = strings.TrimSpace(r.URL.Query().Get("business"))
			}
			if businessID == "" {
				http.Error(w, "business scope required", http.StatusBadRequest)
				return
			}
			ctx := tenancy.WithBusinessID(r.Context(), businessID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
