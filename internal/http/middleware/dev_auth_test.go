package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/microtix/lead-platform/internal/identity"
)

func signedDevToken(t *testing.T, secret, sub string, admin bool) string {
	t.Helper()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:   sub + "@dev.local",
		IsAdmin: admin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestDevJWT(t *testing.T) {
	var user identity.User
	h := DevJWT("secret")(captureUser(t, &user))

	rec := serveWithToken(h, signedDevToken(t, "secret", "dev-1", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if user.UID != "dev-1" || !user.IsAdmin {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestDevJWTRejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be reached")
	})

	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"missing token", "secret", ""},
		{"wrong secret", "secret", signedDevToken(t, "other", "dev-1", false)},
		{"no subject", "secret", signedDevToken(t, "secret", "", false)},
		{"disabled", "", signedDevToken(t, "secret", "dev-1", false)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveWithToken(DevJWT(tc.secret)(next), tc.token)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(ctxUser *identity.User) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		if ctxUser != nil {
			req = req.WithContext(identity.WithUser(req.Context(), *ctxUser))
		}
		rec := httptest.NewRecorder()
		RequireAdmin(ok).ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
	if code := serve(&identity.User{UID: "u1"}); code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", code)
	}
	if code := serve(&identity.User{UID: "u1", IsAdmin: true}); code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", code)
	}
}
