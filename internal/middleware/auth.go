// internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/service"
)

type principalContextKey string

var PrincipalKey principalContextKey = "bike_principal"

// AccessTokenCookie and RefreshTokenCookie name the session cookies.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Session creates a middleware that resolves the access-token cookie into a
// Principal. An expired token gets a machine-readable marker so the client
// can attempt a silent refresh before re-authenticating.
func Session(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
				token = cookie.Value
			}

			principal, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenExpired):
					respondWithJSON(w, http.StatusUnauthorized, map[string]string{
						"error": "Token expired",
						"code":  "TOKEN_EXPIRED",
					})
				case errors.Is(err, domain.ErrNoToken):
					respondWithError(w, http.StatusUnauthorized, "Authentication required")
				default:
					respondWithError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the site-wide admin role. It must run after
// Session. The role comes from the freshly hydrated Principal, never from
// token claims.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if principal.Role != model.RoleAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext returns the Principal stored by Session.
func PrincipalFromContext(ctx context.Context) (*service.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*service.Principal)
	return principal, ok
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
