package board_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	board "github.com/goliatone/go-board"
	"github.com/goliatone/go-board/middleware/jwtware"
)

type authApp struct {
	app   *fiber.App
	users *memUsers
}

func newAuthApp(t *testing.T) *authApp {
	t.Helper()

	users := newMemUsers()
	tokens := newTestTokenService(t)
	service := board.NewAuthService(users, board.NewBcryptHasher(bcrypt.MinCost), tokens,
		board.WithServiceLogger(nopLogger{}))

	app := fiber.New(fiber.Config{ErrorHandler: board.NewErrorHandler(nopLogger{})})
	guard := jwtware.New(jwtware.Config{
		TokenValidator: tokens,
		ErrorHandler:   func(c *fiber.Ctx, err error) error { return err },
	})

	board.RegisterAuthRoutes(app.Group("/api/auth"), board.NewAuthController(service,
		board.WithControllerLogger(nopLogger{})), guard)

	return &authApp{app: app, users: users}
}

func (a *authApp) do(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := a.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestAuthControllerFlow(t *testing.T) {
	a := newAuthApp(t)

	status, body := a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "alice1",
		"password": "secret1",
		"name":     "Alice",
	})
	require.Equal(t, http.StatusCreated, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice1", user["username"])
	assert.Equal(t, false, user["signInStatus"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	status, body = a.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": "alice1",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, true, body["user"].(map[string]any)["signInStatus"])

	status, body = a.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice1", body["username"])
	assert.Equal(t, true, body["signInStatus"])

	status, body = a.do(t, http.MethodPost, "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Successfully signed out", body["message"])

	// tokens outlive sign out; only presence changes
	status, body = a.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["signInStatus"])
}

func TestAuthControllerErrors(t *testing.T) {
	a := newAuthApp(t)

	status, body := a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "abc",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "username")

	status, _ = a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "alice1",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "alice1",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username already exists", body["message"])

	status, unknown := a.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": "nobody1",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, wrong := a.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"username": "alice1",
		"password": "wrong12",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, unknown, wrong)
}

func TestAuthControllerGuard(t *testing.T) {
	a := newAuthApp(t)

	status, body := a.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, board.TextCodeUnauthenticated, body["code"])

	status, _ = a.do(t, http.MethodPost, "/api/auth/signout", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthControllerProfileForDeletedUser(t *testing.T) {
	a := newAuthApp(t)

	a.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{"username": "alice1", "password": "secret1"})
	_, body := a.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{"username": "alice1", "password": "secret1"})
	token := body["token"].(string)

	a.users.mu.Lock()
	for id := range a.users.byID {
		delete(a.users.byID, id)
	}
	a.users.mu.Unlock()

	status, body := a.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])
}

func TestNewAuthControllerPanicsWithoutService(t *testing.T) {
	assert.Panics(t, func() {
		board.NewAuthController(nil)
	})
}
