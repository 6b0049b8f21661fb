package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type tenantKey struct{}

// TenantResolver resolves a tenant ID from a bearer token.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}

// TenantFromContext returns the tenant ID from context, if present.
func TenantFromContext(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantKey{}).(string)
	return tenantID, ok
}

// AuthMiddleware resolves the tenant from the API key in a bearer
// Authorization header and rejects the request with 401 otherwise.
func AuthMiddleware(resolver TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				unauthorized(w, "missing api key")
				return
			}

			tenantID, err := resolver.ResolveTenant(r.Context(), key)
			if err != nil || tenantID == "" {
				unauthorized(w, "unknown api key")
				return
			}
			next.ServeHTTP(w, withTenant(r, tenantID))
		})
	}
}

// StaticTenant runs every request as tenantID. Used when auth is disabled.
func StaticTenant(tenantID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withTenant(r, tenantID))
		})
	}
}

func withTenant(r *http.Request, tenantID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), tenantKey{}, tenantID))
}

func unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="sitetrack"`)
	http.Error(w, reason, http.StatusUnauthorized)
}
