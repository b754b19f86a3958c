package board

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	TextCodeConflict         = "CONFLICT"
	TextCodeUnauthorized     = "INVALID_CREDENTIALS"
	TextCodeInvalidToken     = "INVALID_TOKEN"
	TextCodeUnauthenticated  = "UNAUTHENTICATED"
	TextCodeNotFound         = "NOT_FOUND"
	TextCodeForbidden        = "FORBIDDEN"
	TextCodeStoreUnavailable = "STORE_UNAVAILABLE"
	TextCodeValidation       = "VALIDATION_FAILED"
	TextCodeHashing          = "HASHING_FAILED"
)

var (
	// ErrConflict is returned when a username is already registered.
	ErrConflict = errors.New("Username already exists", errors.CategoryConflict).
			WithCode(errors.CodeConflict).
			WithTextCode(TextCodeConflict)

	// ErrUnauthorized is returned by SignIn for an unknown username and for
	// a wrong password alike.
	ErrUnauthorized = errors.New("Invalid credentials", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeUnauthorized)

	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("Invalid or expired token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeInvalidToken)

	// ErrUnauthenticated is returned by the guard when a request carries no
	// usable identity.
	ErrUnauthenticated = errors.New("Authentication required", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeUnauthenticated)

	ErrNotFound = errors.New("Resource not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode(TextCodeNotFound)

	ErrForbidden = errors.New("Forbidden", errors.CategoryAuthz).
			WithCode(errors.CodeForbidden).
			WithTextCode(TextCodeForbidden)

	ErrStoreUnavailable = errors.New("Store unavailable", errors.CategoryOperation).
				WithCode(http.StatusServiceUnavailable).
				WithTextCode(TextCodeStoreUnavailable)

	ErrHashing = errors.New("Failed to hash password", errors.CategoryInternal).
			WithCode(errors.CodeInternal).
			WithTextCode(TextCodeHashing)
)

// NotFound returns ErrNotFound with a message naming the missing resource.
func NotFound(kind, id string) error {
	return derive(ErrNotFound, fmt.Sprintf("%s with ID %s not found", kind, id), map[string]any{
		"kind": kind,
		"id":   id,
	})
}

// Forbidden returns ErrForbidden naming the resource the requester does not own.
func Forbidden(kind, id string) error {
	return derive(ErrForbidden, fmt.Sprintf("You do not own %s %s", strings.ToLower(kind), id), map[string]any{
		"kind": kind,
		"id":   id,
	})
}

// ValidationError wraps an ozzo validation failure into a 400 error. Field
// errors are copied into the metadata.
func ValidationError(err error, message string) error {
	if err == nil {
		return nil
	}

	rich := errors.Wrap(err, errors.CategoryValidation, message).
		WithCode(errors.CodeBadRequest).
		WithTextCode(TextCodeValidation)

	if fields, ok := err.(validation.Errors); ok {
		meta := make(map[string]any, len(fields))
		for name, fieldErr := range fields {
			if fieldErr != nil {
				meta[name] = fieldErr.Error()
			}
		}
		rich = rich.WithMetadata(map[string]any{"fields": meta})
	}
	return rich
}

// StoreError wraps a failure coming out of a persistence call. Errors that
// already belong to the taxonomy pass through untouched.
func StoreError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode != "" {
		return err
	}

	meta := map[string]any{"operation": operation}
	if errors.Is(err, context.DeadlineExceeded) {
		meta["timeout"] = true
	}

	return errors.Wrap(err, errors.CategoryOperation, "Store unavailable").
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(TextCodeStoreUnavailable).
		WithMetadata(meta)
}

// IsUniqueViolation reports whether err is a unique constraint rejection
// from postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func IsConflict(err error) bool         { return hasTextCode(err, TextCodeConflict) }
func IsUnauthorized(err error) bool     { return hasTextCode(err, TextCodeUnauthorized) }
func IsInvalidToken(err error) bool     { return hasTextCode(err, TextCodeInvalidToken) }
func IsUnauthenticated(err error) bool  { return hasTextCode(err, TextCodeUnauthenticated) }
func IsNotFound(err error) bool         { return hasTextCode(err, TextCodeNotFound) }
func IsForbidden(err error) bool        { return hasTextCode(err, TextCodeForbidden) }
func IsStoreUnavailable(err error) bool { return hasTextCode(err, TextCodeStoreUnavailable) }
func IsValidation(err error) bool       { return hasTextCode(err, TextCodeValidation) }

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

func derive(base *errors.Error, message string, meta map[string]any) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Message = message
	clone.Source = base
	return clone.WithMetadata(meta)
}
