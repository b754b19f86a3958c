package board_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	board "github.com/goliatone/go-board"
)

func TestNotFoundMessage(t *testing.T) {
	err := board.NotFound("Post", "123")
	assert.True(t, board.IsNotFound(err))
	assert.Equal(t, 404, board.HTTPStatus(err))
	assert.Equal(t, "Post with ID 123 not found", board.ErrorResponse(err)["message"])

	// the sentinel is not mutated
	assert.Equal(t, "Resource not found", board.ErrNotFound.Message)
}

func TestForbiddenMessage(t *testing.T) {
	err := board.Forbidden("Post", "abc")
	assert.True(t, board.IsForbidden(err))
	assert.Equal(t, 403, board.HTTPStatus(err))
	assert.Equal(t, "You do not own post abc", board.ErrorResponse(err)["message"])
}

func TestValidationErrorCarriesFields(t *testing.T) {
	assert.Nil(t, board.ValidationError(nil, "x"))

	err := board.ValidationError(validation.Errors{
		"title": errors.New("cannot be blank"),
	}, "invalid post")
	require.Error(t, err)
	assert.True(t, board.IsValidation(err))

	body := board.ErrorResponse(err)
	assert.Equal(t, 400, body["statusCode"])
	assert.Equal(t, "invalid post", body["message"])
	assert.Equal(t, board.TextCodeValidation, body["code"])
	assert.Equal(t, map[string]any{"title": "cannot be blank"}, body["fields"])
}

func TestStoreError(t *testing.T) {
	assert.Nil(t, board.StoreError(nil, "op"))

	err := board.StoreError(errors.New("dial tcp: refused"), "users.find")
	assert.True(t, board.IsStoreUnavailable(err))
	assert.Equal(t, 503, board.HTTPStatus(err))

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, "users.find", rich.Metadata["operation"])

	timeout := board.StoreError(fmt.Errorf("query: %w", context.DeadlineExceeded), "users.find")
	require.True(t, goerrors.As(timeout, &rich))
	assert.Equal(t, true, rich.Metadata["timeout"])

	notFound := board.NotFound("User", "1")
	assert.Same(t, notFound, board.StoreError(notFound, "users.find"))
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil},
		{name: "postgres", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres other", err: &pgconn.PgError{Code: "23503"}},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: users.username"), want: true},
		{name: "wrapped message", err: fmt.Errorf("insert: %w", errors.New("duplicate key value violates unique constraint")), want: true},
		{name: "unrelated", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, board.IsUniqueViolation(tt.err))
		})
	}
}

func TestPredicatesRejectForeignErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, board.IsConflict(plain))
	assert.False(t, board.IsNotFound(plain))
	assert.False(t, board.IsUnauthorized(nil))
	assert.False(t, board.IsForbidden(board.ErrNotFound))
}
