//go:build e2e

package e2e

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"storefront-core/internal/usecase/shared"

	"github.com/stretchr/testify/require"
)

var rotationCodePattern = regexp.MustCompile(`(?m)^\s+(\d{6})\s*$`)

// Mailbox replaces the outbound mailer so suites can read what was sent.
type Mailbox struct {
	mu   sync.Mutex
	sent []shared.Email
}

func (m *Mailbox) Send(_ context.Context, email shared.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *Mailbox) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

func (m *Mailbox) To(address string) []shared.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shared.Email
	for _, e := range m.sent {
		if e.To == address {
			out = append(out, e)
		}
	}
	return out
}

// WaitForRotationCode blocks until a code email for address arrives and
// returns the code from the newest one.
func (m *Mailbox) WaitForRotationCode(t *testing.T, address string) string {
	t.Helper()
	var code string
	require.Eventually(t, func() bool {
		mails := m.To(address)
		for i := len(mails) - 1; i >= 0; i-- {
			if match := rotationCodePattern.FindStringSubmatch(mails[i].Body); match != nil {
				code = match[1]
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond, "no rotation code sent to %s", address)
	return code
}
