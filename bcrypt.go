package board

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-errors"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// ErrEmptyPassword is returned when hashing an empty string.
var ErrEmptyPassword = errors.New("Password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeValidation)

// BcryptHasher is a PasswordHasher backed by bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher for the given cost. Out of range costs
// fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor
func (b *BcryptHasher) Cost() int {
	return b.cost
}

// Hash generates a salted digest for plaintext
func (b *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", errors.Wrap(err, ErrHashing.Category, ErrHashing.Message).
			WithCode(ErrHashing.Code).
			WithTextCode(ErrHashing.TextCode)
	}
	return string(h), nil
}

// Verify reports whether plaintext matches digest. Malformed digests
// never match.
func (b *BcryptHasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
