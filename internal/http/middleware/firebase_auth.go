package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
)

// DefaultFirebaseJWKSURL serves the public keys for Firebase ID tokens.
const DefaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

const jwksTTL = time.Hour

// FirebaseConfig holds the Firebase project used for ID token validation.
type FirebaseConfig struct {
	ProjectID string
	JWKSURL   string // defaults to DefaultFirebaseJWKSURL
}

// TokenClaims are the ID token claims the API relies on. isAdmin is a custom
// claim set on the user by the identity provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"isAdmin"`
}

func (c *TokenClaims) user(token string) identity.User {
	return identity.User{
		UID:           c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		IsAdmin:       c.IsAdmin,
		Token:         token,
	}
}

// keySet caches the JWKS keys for one URL.
type keySet struct {
	url    string
	client *http.Client

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func newKeySet(url string) *keySet {
	return &keySet{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

// key returns the public key for kid, refetching the set when it has expired
// or does not contain kid.
func (ks *keySet) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.RLock()
	if time.Now().Before(ks.expires) {
		if key, ok := ks.keys[kid]; ok {
			ks.mu.RUnlock()
			return key, nil
		}
	}
	ks.mu.RUnlock()

	keys, err := fetchJWKS(ctx, ks.client, ks.url)
	if err != nil {
		return nil, err
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.expires = time.Now().Add(jwksTTL)
	ks.mu.Unlock()

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("key %s not found in JWKS", kid)
	}
	return key, nil
}

type firebaseVerifier struct {
	projectID string
	issuer    string
	keys      *keySet
}

func newFirebaseVerifier(cfg FirebaseConfig) *firebaseVerifier {
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = DefaultFirebaseJWKSURL
	}
	return &firebaseVerifier{
		projectID: cfg.ProjectID,
		issuer:    "https://securetoken.google.com/" + cfg.ProjectID,
		keys:      newKeySet(jwksURL),
	}
}

func (v *firebaseVerifier) verify(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return nil, fmt.Errorf("invalid token format")
	}
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("missing key id in token")
	}
	pubKey, err := v.keys.key(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	claims := &TokenClaims{}
	validated, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return pubKey, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil || !validated.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject")
	}
	return claims, nil
}

// FirebaseJWT validates Firebase ID tokens and stores the caller in the
// request context.
func FirebaseJWT(cfg FirebaseConfig) func(http.Handler) http.Handler {
	if cfg.ProjectID == "" {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respond.Error(w, "firebase auth not configured", http.StatusUnauthorized)
			})
		}
	}
	verifier := newFirebaseVerifier(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				respond.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := verifier.verify(r.Context(), tokenString)
			if err != nil {
				respond.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := identity.WithUser(r.Context(), claims.user(tokenString))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FirebaseOrDevJWT accepts Firebase ID tokens (RS256 with a key id) and falls
// back to HMAC dev tokens for everything else.
func FirebaseOrDevJWT(cfg FirebaseConfig, devSecret string) func(http.Handler) http.Handler {
	firebaseMW := FirebaseJWT(cfg)
	devMW := DevJWT(devSecret)

	return func(next http.Handler) http.Handler {
		firebase := firebaseMW(next)
		dev := devMW(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				respond.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			if looksLikeFirebaseToken(tokenString) {
				firebase.ServeHTTP(w, r)
				return
			}
			dev.ServeHTTP(w, r)
		})
	}
}

func looksLikeFirebaseToken(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	var header map[string]any
	if json.Unmarshal(headerBytes, &header) != nil {
		return false
	}
	alg, _ := header["alg"].(string)
	_, hasKid := header["kid"]
	return alg == "RS256" && hasKid
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return token, token != ""
}

type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func fetchJWKS(ctx context.Context, client *http.Client, url string) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS request failed with status %d", resp.StatusCode)
	}

	var jwks jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pubKey, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = pubKey
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no valid RSA keys found in JWKS")
	}
	return keys, nil
}

// parseRSAPublicKey parses RSA public key components from base64url-encoded strings.
func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}
