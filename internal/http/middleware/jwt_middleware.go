package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/http/response"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/platform/auth"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

type claimsKey struct{}

// RequireJWT guards a route subtree. With a non-empty role only that role (or
// admin) passes.
func RequireJWT(secret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := auth.Parse(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			if role != "" && claims.Role != role && claims.Role != "admin" {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = context.WithValue(ctx, logger.StaffIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims, or nil outside RequireJWT.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}
