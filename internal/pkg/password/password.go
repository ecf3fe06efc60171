package password

import (
	"errors"
	"unicode/utf8"

	"storefront-core/internal/pkg/errs"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errs.New("password hashing failed")
	ErrMismatch      = errs.New("password does not match")
	ErrEmptySecret   = errs.New("secret must not be empty")
	ErrTooLong       = errs.Define("secret must not exceed 72 bytes", errs.ErrInvalidInput)
)

const (
	DefaultCost = bcrypt.DefaultCost
	// MinLength applies to new passwords chosen during rotation.
	MinLength = 8
	// MaxBytes is the bcrypt input limit.
	MaxBytes = 72
)

// Hash digests a password or a one-time code. Both share the bcrypt format so a
// rotation code is never stored in plaintext.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > MaxBytes {
		return "", ErrTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), DefaultCost)
	if err != nil {
		return "", errs.Wrap(ErrHashingFailed, err.Error())
	}
	return string(hashed), nil
}

// Compare runs in constant time with respect to the candidate. It returns
// ErrMismatch when the candidate is wrong and any other error when the digest is unusable.
func Compare(digest, candidate string) error {
	if digest == "" || candidate == "" {
		return ErrMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return errs.Wrap(err, "compare digest")
	}
	return nil
}

// IsStrongEnough counts characters, not bytes.
func IsStrongEnough(candidate string) bool {
	return utf8.RuneCountInString(candidate) >= MinLength
}

func FitsLimit(candidate string) bool {
	return len(candidate) <= MaxBytes
}
