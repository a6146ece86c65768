package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// Middleware creates a middleware for protecting routes. It resolves the
// acting principal from the Authorization header only; there is no cookie
// fallback, clients re-send the bearer token on every request.
func (s *TokenService) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeEnvelope(w, http.StatusUnauthorized, "Missing auth token.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeEnvelope(w, http.StatusUnauthorized, "Invalid Authorization header format.")
				return
			}

			claims, err := s.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Msg("Rejected auth token")
				writeEnvelope(w, http.StatusUnauthorized, "Invalid or expired auth token.")
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on a role claim. It assumes Middleware has
// already run on the route.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r)
			if !ok {
				writeEnvelope(w, http.StatusUnauthorized, "Missing auth token.")
				return
			}
			for _, have := range claims.Roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeEnvelope(w, http.StatusForbidden, "You do not have access to this resource.")
		})
	}
}

// ClaimsFrom returns the authenticated claims stored in the request
// context by Middleware.
func ClaimsFrom(r *http.Request) (*Claims, bool) {
	claims, ok := r.Context().Value(UserClaimsKey).(*Claims)
	return claims, ok
}

// writeEnvelope emits a failure response in the API's uniform
// {success, message, data} shape so auth rejections look like every
// other error to the client.
func writeEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
		"data":    nil,
	})
}
