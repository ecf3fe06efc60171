// Package objectstore keeps review images on the local filesystem and serves
// them under a public base URL.
package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"storefront-core/internal/domain/review"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEmptyUpload      = errs.Define("upload is empty", errs.ErrInvalidInput)
	ErrUnsupportedImage = errs.Define("unsupported image type", errs.ErrInvalidInput)
	ErrInvalidObjectID  = errs.Define("invalid object id", errs.ErrInvalidInput)
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create storage dir")
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

var _ shared.ObjectStorage = (*LocalStorage)(nil)

func (s *LocalStorage) Upload(ctx context.Context, u shared.Upload) (review.Image, error) {
	if len(u.Data) == 0 {
		return review.Image{}, ErrEmptyUpload
	}
	ext, ok := allowedTypes[strings.ToLower(u.ContentType)]
	if !ok {
		return review.Image{}, errs.Wrap(ErrUnsupportedImage, u.ContentType)
	}
	if err := ctx.Err(); err != nil {
		return review.Image{}, err
	}

	id := uuid.NewString() + ext
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return review.Image{}, errs.Wrap(err, "create temp object")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(u.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return review.Image{}, errs.Wrap(err, "write object")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return review.Image{}, errs.Wrap(err, "close object")
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpName)
		return review.Image{}, err
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, id)); err != nil {
		_ = os.Remove(tmpName)
		return review.Image{}, errs.Wrap(err, "publish object")
	}

	return review.Image{ExternalID: id, URL: s.baseURL + "/" + id}, nil
}

// Delete is idempotent: a missing object is not an error.
func (s *LocalStorage) Delete(ctx context.Context, externalID string) error {
	if externalID == "" || externalID != filepath.Base(externalID) || strings.HasPrefix(externalID, ".") {
		return ErrInvalidObjectID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, externalID)); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(err, "delete object "+externalID)
	}
	return nil
}

// Dir is the directory the HTTP layer serves under the base URL.
func (s *LocalStorage) Dir() string { return s.dir }
