package board

import (
	"strings"
)

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrInvalidToken
	}
	return f(tokenString)
}

// ResolveIdentity turns a raw bearer token into claims. A missing token or
// any validation failure yields ErrUnauthenticated. Presence is not consulted.
func ResolveIdentity(validator TokenValidator, raw string) (AuthClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, unauthenticated(nil, "missing token")
	}

	if validator == nil {
		return nil, unauthenticated(nil, "no validator")
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		return nil, unauthenticated(err, "invalid token")
	}

	if claims == nil || claims.UserID() == "" {
		return nil, unauthenticated(nil, "empty identity")
	}

	return claims, nil
}

func unauthenticated(source error, reason string) error {
	clone := ErrUnauthenticated.Clone()
	if clone == nil {
		return ErrUnauthenticated
	}
	if source != nil {
		clone.Source = source
	}
	return clone.WithMetadata(map[string]any{"reason": reason})
}
