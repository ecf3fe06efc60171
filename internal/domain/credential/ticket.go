// Package credential models the one-time code that gates a password change.
package credential

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"storefront-core/internal/pkg/errs"
)

const (
	CodeLength  = 6
	MaxAttempts = 5
	CodeTTL     = 10 * time.Minute
)

var (
	ErrNoTicket          = errs.Define("no password change was requested", errs.ErrInvalidOrExpired)
	ErrTicketExpired     = errs.Define("password change code expired", errs.ErrInvalidOrExpired)
	ErrAttemptsExhausted = errs.Define("password change code attempts exhausted", errs.ErrTooManyAttempts)
)

var codeSpace = big.NewInt(1_000_000)

// Ticket is the pending rotation stored next to the user's credentials.
// Only the digest of the code is kept.
type Ticket struct {
	CodeDigest   string
	ExpiresAt    time.Time
	AttemptsUsed int
	AttemptsMax  int
}

func NewTicket(codeDigest string, now time.Time, ttl time.Duration, attemptsMax int) Ticket {
	if ttl <= 0 {
		ttl = CodeTTL
	}
	if attemptsMax <= 0 {
		attemptsMax = MaxAttempts
	}
	return Ticket{
		CodeDigest:  codeDigest,
		ExpiresAt:   now.Add(ttl),
		AttemptsMax: attemptsMax,
	}
}

func (t Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t Ticket) Exhausted() bool {
	return t.AttemptsUsed >= t.AttemptsMax
}

func (t Ticket) Live(now time.Time) bool {
	return t.CodeDigest != "" && !t.Expired(now) && !t.Exhausted()
}

func (t Ticket) AttemptsLeft() int {
	if left := t.AttemptsMax - t.AttemptsUsed; left > 0 {
		return left
	}
	return 0
}

// Check reports why a ticket cannot be used for a verification attempt, in the
// order callers must observe: missing or expired first, then exhausted.
func Check(t *Ticket, now time.Time) error {
	if t == nil || t.CodeDigest == "" {
		return ErrNoTicket
	}
	if t.Expired(now) {
		return ErrTicketExpired
	}
	if t.Exhausted() {
		return ErrAttemptsExhausted
	}
	return nil
}

// GenerateCode draws a uniformly distributed zero-padded decimal code.
func GenerateCode() (string, error) {
	return generateCode(rand.Reader)
}

func generateCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, codeSpace)
	if err != nil {
		return "", errs.Wrap(err, "generate rotation code")
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
