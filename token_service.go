package board

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultTokenExpiration is used when the config does not set one.
const DefaultTokenExpiration = 24 * time.Hour

// TokenServiceImpl implements the TokenService interface with HS256.
type TokenServiceImpl struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption customizes the token service
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.logger = normalizeLogger(logger)
	}
}

// WithTokenClock overrides the clock used for issue and validation.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg TokenConfig, opts ...TokenServiceOption) (*TokenServiceImpl, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, errors.New("token signing key must not be empty", errors.CategoryBadInput).
			WithTextCode(TextCodeValidation)
	}

	expiration := cfg.GetTokenExpiration()
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}

	ts := &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		expiration: expiration,
		issuer:     cfg.GetIssuer(),
		audience:   jwt.ClaimStrings(cfg.GetAudience()),
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

// Issue signs a token identifying userID
func (ts *TokenServiceImpl) Issue(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("user id must not be empty", errors.CategoryBadInput)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   userID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		UID: userID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Validate parses and validates a token string, returning structured claims.
// Every failure is reported as ErrInvalidToken.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Warn("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		reason := "malformed"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "expired"
		} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			reason = "signature"
		}
		ts.logger.Debug("token rejected", "reason", reason)
		return nil, invalidToken(err, reason)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID() == "" {
		return nil, invalidToken(nil, "claims")
	}

	if !ts.acceptsAudience(claims.RegisteredClaims.Audience) {
		ts.logger.Debug("token rejected", "reason", "audience")
		return nil, invalidToken(nil, "audience")
	}

	return claims, nil
}

// acceptsAudience reports whether aud names at least one configured audience.
// Without a configured audience every token is accepted.
func (ts *TokenServiceImpl) acceptsAudience(aud jwt.ClaimStrings) bool {
	if len(ts.audience) == 0 {
		return true
	}
	for _, want := range ts.audience {
		for _, got := range aud {
			if got == want {
				return true
			}
		}
	}
	return false
}

func invalidToken(source error, reason string) error {
	clone := ErrInvalidToken.Clone()
	if clone == nil {
		return ErrInvalidToken
	}
	if source != nil {
		clone.Source = source
	}
	return clone.WithMetadata(map[string]any{"reason": reason})
}
