package board

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DefaultContextKey is the fiber Locals key the guard stores claims under.
const DefaultContextKey = "user"

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// ClaimsFromFiber extracts the AuthClaims stored by the guard, looking at
// Locals first and then at the user context.
func ClaimsFromFiber(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	if claims, ok := c.Locals(key).(AuthClaims); ok && claims != nil {
		return claims, true
	}
	return GetClaims(c.UserContext())
}

// UserIDFromClaims parses the user id carried by the claims
func UserIDFromClaims(claims AuthClaims) (uuid.UUID, error) {
	if claims == nil {
		return uuid.Nil, unauthenticated(nil, "missing claims")
	}

	id, err := uuid.Parse(strings.TrimSpace(claims.UserID()))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, unauthenticated(err, "invalid subject")
	}
	return id, nil
}

// RequesterID returns the authenticated user id for the request
func RequesterID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	claims, ok := ClaimsFromFiber(c, key)
	if !ok {
		return uuid.Nil, unauthenticated(nil, "missing claims")
	}
	return UserIDFromClaims(claims)
}
