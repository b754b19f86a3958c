package board

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MinUsernameLength = 4
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// NormalizeUsername trims surrounding whitespace. Usernames are stored and
// looked up in this form.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

var errPasswordTooLong = errors.New("the length must be no more than 72 bytes")

func passwordBytes(value any) error {
	p, _ := value.(string)
	if len(p) > MaxPasswordBytes {
		return errPasswordTooLong
	}
	return nil
}

// SignUpInput is the registration payload
type SignUpInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name,omitempty" form:"name"`
	ImageURL string `json:"imageUrl,omitempty" form:"imageUrl"`
}

// Validate checks the registration rules
func (r SignUpInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(MinUsernameLength, 0)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(MinPasswordLength, 0), validation.By(passwordBytes)),
		validation.Field(&r.Name, validation.RuneLength(0, 255)),
		validation.Field(&r.ImageURL, is.URL),
	)
}

// SignInInput is the credentials payload
type SignInInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// SignUpResult wraps the created user view
type SignUpResult struct {
	User UserView `json:"user"`
}

// SignInResult carries the session token and the signed in user
type SignInResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// SignOutResult acknowledges a sign out
type SignOutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const signOutMessage = "Successfully signed out"
