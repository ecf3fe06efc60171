package objectstore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront-core/internal/infra/objectstore"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := objectstore.NewLocalStorage(dir, "/media/")
	require.NoError(t, err)

	img, err := store.Upload(ctx, shared.Upload{Filename: "cup.png", ContentType: "image/png", Data: []byte("png-bytes")})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(img.ExternalID, ".png"))
	assert.Equal(t, "/media/"+img.ExternalID, img.URL)
	data, err := os.ReadFile(filepath.Join(dir, img.ExternalID))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, img.ExternalID))
	_, err = os.Stat(filepath.Join(dir, img.ExternalID))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, img.ExternalID), "deleting twice is fine")
}

func TestLocalStorage_Rejects(t *testing.T) {
	ctx := context.Background()
	store, err := objectstore.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = store.Upload(ctx, shared.Upload{Filename: "a.png", ContentType: "image/png"})
	assert.True(t, errs.Is(err, objectstore.ErrEmptyUpload))

	_, err = store.Upload(ctx, shared.Upload{Filename: "a.exe", ContentType: "application/octet-stream", Data: []byte("x")})
	assert.True(t, errs.Is(err, objectstore.ErrUnsupportedImage))
	assert.True(t, errs.Is(err, errs.ErrInvalidInput))

	assert.True(t, errs.Is(store.Delete(ctx, "../etc/passwd"), objectstore.ErrInvalidObjectID))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Upload(canceled, shared.Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("x")})
	assert.ErrorIs(t, err, context.Canceled)
}
