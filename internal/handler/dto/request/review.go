package request

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	MaxReviewImages = 5
	MaxImageBytes   = 5 << 20

	imagesField = "images"
	retainField = "retain_image_ids"
)

var (
	ErrTooManyImages = errs.Define("a review can carry at most 5 images per submission", errs.ErrInvalidInput)
	ErrImageTooLarge = errs.Define("image exceeds the 5 MiB limit", errs.ErrInvalidInput)
	ErrUnreadable    = errs.Define("image could not be read", errs.ErrInvalidInput)
)

// SubmitReviewForm is the multipart body of PUT /api/products/:id/review.
// Files arrive under "images"; "retain_image_ids" may repeat and an empty
// value means "retain nothing".
type SubmitReviewForm struct {
	Rating  string `form:"rating" binding:"required"`
	Comment string `form:"comment"`
}

func (f *SubmitReviewForm) ToCommand(productID uuid.UUID, form *multipart.Form) (commands.SubmitReviewRequest, error) {
	req := commands.SubmitReviewRequest{
		ProductID: productID,
		Rating:    f.Rating,
		Comment:   f.Comment,
	}
	if form == nil {
		return req, nil
	}

	uploads, err := readUploads(form.File[imagesField])
	if err != nil {
		return commands.SubmitReviewRequest{}, err
	}
	req.Uploads = uploads
	req.RetainImageIDs = retainedIDs(form)
	return req, nil
}

// retainedIDs distinguishes an absent field (nil) from an empty selection.
func retainedIDs(form *multipart.Form) *[]string {
	values, present := form.Value[retainField]
	if !present {
		return nil
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return &ids
}

func readUploads(files []*multipart.FileHeader) ([]shared.Upload, error) {
	if len(files) > MaxReviewImages {
		return nil, ErrTooManyImages
	}

	uploads := make([]shared.Upload, 0, len(files))
	for _, fh := range files {
		if fh.Size > MaxImageBytes {
			return nil, ErrImageTooLarge
		}
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		uploads = append(uploads, shared.Upload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return uploads, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errs.Wrap(ErrUnreadable, fh.Filename+": "+err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, errs.Wrap(ErrUnreadable, fh.Filename+": "+err.Error())
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

type ReviewListQuery struct {
	Limit  *int `form:"limit" binding:"omitempty,min=1"`
	Offset *int `form:"offset" binding:"omitempty,min=0"`
}
