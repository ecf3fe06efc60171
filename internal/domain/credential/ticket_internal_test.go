package credential

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestGenerateCodeFromReader(t *testing.T) {
	t.Run("zero padded", func(t *testing.T) {
		code, err := generateCode(bytes.NewReader(make([]byte, 64)))
		require.NoError(t, err)
		assert.Equal(t, "000000", code)
	})

	t.Run("reader failure", func(t *testing.T) {
		_, err := generateCode(failingReader{})
		assert.Error(t, err)
	})
}
