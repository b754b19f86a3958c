package jwtware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	board "github.com/goliatone/go-board"
	"github.com/goliatone/go-board/middleware/jwtware"
)

func newTokens(t *testing.T) *board.TokenServiceImpl {
	t.Helper()
	ts, err := board.NewTokenService(board.TokenSettings{SigningKey: "jwtware-test", Expiration: time.Hour})
	require.NoError(t, err)
	return ts
}

func whoami(c *fiber.Ctx) error {
	local, ok := c.Locals(board.DefaultContextKey).(board.AuthClaims)
	if !ok {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	fromCtx, ok := board.GetClaims(c.UserContext())
	if !ok {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"local": local.UserID(), "ctx": fromCtx.UserID()})
}

func TestGuardAcceptsBearerHeader(t *testing.T) {
	tokens := newTokens(t)
	app := fiber.New()
	app.Get("/me", jwtware.New(jwtware.Config{TokenValidator: tokens}), whoami)

	userID := uuid.New()
	token, err := tokens.Issue(userID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, userID.String(), body["local"])
	assert.Equal(t, userID.String(), body["ctx"])
}

func TestGuardRejectsMissingAndInvalidTokens(t *testing.T) {
	tokens := newTokens(t)
	app := fiber.New()

	reached := false
	app.Get("/me", jwtware.New(jwtware.Config{TokenValidator: tokens}), func(c *fiber.Ctx) error {
		reached = true
		return c.SendStatus(200)
	})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, 401, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, board.TextCodeUnauthenticated, body["code"])
		})
	}
	assert.False(t, reached)
}

func TestGuardTokenLookupSources(t *testing.T) {
	tokens := newTokens(t)
	app := fiber.New()
	app.Get("/me/:token?", jwtware.New(jwtware.Config{
		TokenValidator: tokens,
		TokenLookup:    "header:Authorization,query:token,cookie:jwt,param:token",
	}), whoami)

	token, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	query := httptest.NewRequest("GET", "/me?token="+token, nil)
	cookie := httptest.NewRequest("GET", "/me", nil)
	cookie.Header.Set("Cookie", "jwt="+token)
	param := httptest.NewRequest("GET", "/me/"+token, nil)

	for name, req := range map[string]*http.Request{
		"query":  query,
		"cookie": cookie,
		"param":  param,
	} {
		resp, err := app.Test(req)
		require.NoError(t, err, name)
		assert.Equal(t, 200, resp.StatusCode, name)
	}
}

func TestGuardFilterSkips(t *testing.T) {
	app := fiber.New()
	app.Get("/open", jwtware.New(jwtware.Config{
		TokenValidator: newTokens(t),
		Filter:         func(c *fiber.Ctx) bool { return true },
	}), func(c *fiber.Ctx) error { return c.SendStatus(204) })

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestGuardValidationListenerCanReject(t *testing.T) {
	tokens := newTokens(t)
	banned := uuid.New()

	app := fiber.New()
	app.Get("/me", jwtware.New(jwtware.Config{
		TokenValidator: tokens,
		ValidationListeners: []jwtware.ValidationListener{
			func(c *fiber.Ctx, claims board.AuthClaims) error {
				if claims.UserID() == banned.String() {
					return board.ErrForbidden
				}
				return nil
			},
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(board.HTTPStatus(err)).JSON(board.ErrorResponse(err))
		},
	}), whoami)

	token, err := tokens.Issue(banned)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestGetDefaultConfigRequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.GetDefaultConfig()
	})

	cfg := jwtware.GetDefaultConfig(jwtware.Config{TokenValidator: board.TokenValidatorFunc(func(string) (board.AuthClaims, error) {
		return nil, errors.New("nope")
	})})
	assert.Equal(t, board.DefaultContextKey, cfg.ContextKey)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.Equal(t, "header:Authorization", cfg.TokenLookup)
	assert.NotNil(t, cfg.ContextEnricher)
}

func TestGetExtractors(t *testing.T) {
	assert.Len(t, jwtware.GetExtractors("header:Authorization, query:token ,bogus,cookie:jwt"), 3)
	assert.Empty(t, jwtware.GetExtractors(""))
}
