package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
)

// DevJWT accepts HMAC-signed tokens carrying the same claims as Firebase ID
// tokens. It is meant for local development and tests.
func DevJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respond.Error(w, "dev auth disabled", http.StatusUnauthorized)
				return
			}
			tokenString, ok := bearerToken(r)
			if !ok {
				respond.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims := &TokenClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				respond.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := identity.WithUser(r.Context(), claims.user(tokenString))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose verified token lacks the isAdmin claim.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := identity.UserFromContext(r.Context())
		if !ok {
			respond.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin {
			respond.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
