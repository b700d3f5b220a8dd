package identity

import "context"

type ctxKey string

const userKey ctxKey = "microtix.user"

// User is the verified caller. Token is the raw ID token, forwarded as the
// bearer on backend calls.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	IsAdmin       bool   `json:"isAdmin"`
	Token         string `json:"-"`
}

// WithUser stores the verified user in context.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the verified user if present.
func UserFromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	user, ok := val.(User)
	return user, ok && user.UID != ""
}
