package password_test

import (
	"strings"
	"testing"

	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	digest, err := password.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", digest)

	t.Run("matching secret", func(t *testing.T) {
		assert.NoError(t, password.Compare(digest, "correct horse"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := password.Compare(digest, "battery staple")
		assert.True(t, errs.Is(err, password.ErrMismatch))
	})

	t.Run("empty candidate", func(t *testing.T) {
		err := password.Compare(digest, "")
		assert.True(t, errs.Is(err, password.ErrMismatch))
	})

	t.Run("corrupt digest", func(t *testing.T) {
		err := password.Compare("not-a-bcrypt-digest", "correct horse")
		require.Error(t, err)
		assert.False(t, errs.Is(err, password.ErrMismatch))
	})
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := password.Hash("")
	assert.True(t, errs.Is(err, password.ErrEmptySecret))
}

func TestIsStrongEnough(t *testing.T) {
	assert.False(t, password.IsStrongEnough("1234567"))
	assert.True(t, password.IsStrongEnough("12345678"))
	assert.False(t, password.IsStrongEnough("éééé"), "four characters in eight bytes")
	assert.True(t, password.IsStrongEnough("éééééééé"))
}

func TestByteLimit(t *testing.T) {
	assert.True(t, password.FitsLimit(strings.Repeat("a", password.MaxBytes)))
	assert.False(t, password.FitsLimit(strings.Repeat("é", 40)))

	_, err := password.Hash(strings.Repeat("é", 40))
	assert.True(t, errs.Is(err, password.ErrTooLong))
	assert.True(t, errs.Is(err, errs.ErrInvalidInput))
}
