package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	board "github.com/goliatone/go-board"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// ValidationListener is invoked after a token has been validated and before
// the protected handler runs.
type ValidationListener func(c *fiber.Ctx, claims board.AuthClaims) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	ContextKey     string
	TokenLookup    string
	AuthScheme     string
	// TokenValidator is required for token validation
	TokenValidator board.TokenValidator

	// ContextEnricher propagates claims to the request's user context.
	// Defaults to board.WithClaimsContext.
	ContextEnricher func(c context.Context, claims board.AuthClaims) context.Context

	// ValidationListeners are invoked after token validation succeeds.
	ValidationListeners []ValidationListener
}

// New returns a guard that resolves the request identity from a bearer token
// and short circuits with 401 when there is none.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, _ := ExtractRawToken(c, extractors)

		claims, err := board.ResolveIdentity(cfg.TokenValidator, raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := cfg.runValidationListeners(c, claims); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

// ExtractRawToken returns the first token found by extractors
func ExtractRawToken(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(board.ErrorResponse(err))
		}
	}

	if cfg.TokenValidator == nil {
		panic("BOARD: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = board.DefaultContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = board.WithClaimsContext
	}

	return cfg
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, claims board.AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, claims); err != nil {
			return err
		}
	}
	return nil
}

// GetExtractors parses a lookup definition such as
// "header:Authorization,cookie:jwt,query:token".
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
