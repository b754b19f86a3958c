package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger is the logging contract used across the package. Arguments after the
// message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Users is the credential store.
// Lookups return (nil, nil) when the record does not exist.
type Users interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	UpdateSignInStatus(ctx context.Context, id uuid.UUID, status bool) error
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer mints session tokens
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// TokenValidator turns a raw token into claims
type TokenValidator interface {
	Validate(token string) (AuthClaims, error)
}

// TokenService issues and validates session tokens
type TokenService interface {
	TokenIssuer
	TokenValidator
}

// TokenConfig holds the token signing options
type TokenConfig interface {
	GetSigningKey() string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetAudience() []string
}

// PresenceTracker records whether a user currently has a live session.
type PresenceTracker interface {
	SetSignedIn(ctx context.Context, userID uuid.UUID, status bool) error
	IsSignedIn(ctx context.Context, userID uuid.UUID) (bool, error)
}

// TokenSettings is a static TokenConfig.
type TokenSettings struct {
	SigningKey string
	Expiration time.Duration
	Issuer     string
	Audience   []string
}

func (s TokenSettings) GetSigningKey() string             { return s.SigningKey }
func (s TokenSettings) GetTokenExpiration() time.Duration { return s.Expiration }
func (s TokenSettings) GetIssuer() string                 { return s.Issuer }
func (s TokenSettings) GetAudience() []string             { return s.Audience }

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args) }

func (defLogger) print(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level)
	b.WriteString("] BOARD ")
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	fmt.Println(b.String())
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
