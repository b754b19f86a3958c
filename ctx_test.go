package board_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	board "github.com/goliatone/go-board"
)

func TestClaimsContextRoundTrip(t *testing.T) {
	_, ok := board.GetClaims(context.Background())
	assert.False(t, ok)

	claims := &board.JWTClaims{UID: uuid.NewString()}
	ctx := board.WithClaimsContext(context.Background(), claims)

	got, ok := board.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, claims.UID, got.UserID())
}

func TestUserIDFromClaims(t *testing.T) {
	id := uuid.New()

	got, err := board.UserIDFromClaims(&board.JWTClaims{UID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = board.UserIDFromClaims(nil)
	assert.True(t, board.IsUnauthenticated(err))

	_, err = board.UserIDFromClaims(&board.JWTClaims{UID: "not-a-uuid"})
	assert.True(t, board.IsUnauthenticated(err))

	_, err = board.UserIDFromClaims(&board.JWTClaims{UID: uuid.Nil.String()})
	assert.True(t, board.IsUnauthenticated(err))
}

func TestRequesterID(t *testing.T) {
	id := uuid.New()
	claims := &board.JWTClaims{UID: id.String()}

	app := fiber.New(fiber.Config{ErrorHandler: board.NewErrorHandler(nopLogger{})})
	app.Get("/locals", func(c *fiber.Ctx) error {
		c.Locals(board.DefaultContextKey, claims)
		return c.Next()
	}, echoRequester(""))
	app.Get("/context", func(c *fiber.Ctx) error {
		c.SetUserContext(board.WithClaimsContext(c.UserContext(), claims))
		return c.Next()
	}, echoRequester("custom"))
	app.Get("/anonymous", echoRequester(""))

	for _, path := range []string{"/locals", "/context"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode, path)
		assert.Equal(t, id.String(), resp.Header.Get("X-Requester"), path)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/anonymous", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func echoRequester(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := board.RequesterID(c, key)
		if err != nil {
			return err
		}
		c.Set("X-Requester", id.String())
		return c.SendStatus(fiber.StatusOK)
	}
}
