package commands

import (
	"context"
	"log/slog"
	"time"

	domreview "storefront-core/internal/domain/review"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReviewNotEligible = errs.Define("a completed order containing this product is required", errs.ErrNotEligible)
	ErrReviewExists      = errs.Define("review already submitted for this product", errs.ErrDuplicateReview)
	ErrImageUpload       = errs.Define("review image upload failed", errs.ErrDependencyFailure)
)

// cleanupTimeout bounds best-effort storage deletes that run after the
// request context may already be gone.
const cleanupTimeout = 10 * time.Second

type SubmitReviewRequest struct {
	ProductID uuid.UUID
	// Rating is the raw form value.
	Rating  string
	Comment string
	Uploads []shared.Upload
	// RetainImageIDs nil means the client did not send the field.
	RetainImageIDs *[]string
}

type SubmitReviewResult struct {
	Review  *domreview.Review
	Created bool
}

type ReviewCommands interface {
	SubmitReview(ctx context.Context, actor *user.Actor, req SubmitReviewRequest) (*SubmitReviewResult, error)
}

type reviewCommandsImpl struct {
	uow            shared.UnitOfWork
	storage        shared.ObjectStorage
	filter         shared.CommentFilter
	clock          clock.Clock
	storageTimeout time.Duration
}

func NewReviewCommands(
	uow shared.UnitOfWork,
	storage shared.ObjectStorage,
	filter shared.CommentFilter,
	clk clock.Clock,
	storageTimeout time.Duration,
) ReviewCommands {
	return &reviewCommandsImpl{
		uow:            uow,
		storage:        storage,
		filter:         filter,
		clock:          clk,
		storageTimeout: storageTimeout,
	}
}

func (c *reviewCommandsImpl) SubmitReview(ctx context.Context, actor *user.Actor, req SubmitReviewRequest) (*SubmitReviewResult, error) {
	a, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	rating, err := domreview.ParseRating(req.Rating)
	if err != nil {
		return nil, err
	}
	if _, err = domreview.NewComment(req.Comment); err != nil {
		return nil, err
	}

	if err = c.checkEligibility(ctx, a.ID, req.ProductID); err != nil {
		return nil, err
	}

	// The masked text is validated again: normalising invalid UTF-8 can lengthen it.
	comment, err := domreview.NewComment(c.filter.Clean(req.Comment))
	if err != nil {
		return nil, err
	}

	uploaded, err := c.uploadAll(ctx, req.Uploads)
	if err != nil {
		return nil, err
	}

	var (
		result   SubmitReviewResult
		toDelete []domreview.Image
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		toDelete = nil
		now := c.clock.Now()

		existing, ferr := tx.Reviews().FindByProductAndUser(ctx, req.ProductID, a.ID)
		switch {
		case infra.IsKind(ferr, infra.KindNotFound):
			rv := domreview.NewReview(req.ProductID, a.ID, rating, comment, uploaded, now)
			if cerr := tx.Reviews().Create(ctx, rv); cerr != nil {
				if infra.IsKind(cerr, infra.KindDuplicateKey) {
					return ErrReviewExists
				}
				return cerr
			}
			result = SubmitReviewResult{Review: rv, Created: true}
			return nil
		case ferr != nil:
			return ferr
		}

		toDelete = existing.Edit(rating, comment, req.RetainImageIDs, uploaded, now)
		if uerr := tx.Reviews().Update(ctx, existing); uerr != nil {
			return uerr
		}
		result = SubmitReviewResult{Review: existing, Created: false}
		return nil
	})
	if err != nil {
		c.deleteImages(ctx, uploaded, "discard uploads of failed review write")
		return nil, err
	}

	c.deleteImages(ctx, toDelete, "remove images dropped from review")
	return &result, nil
}

// checkEligibility is evaluated on every submission, including edits.
func (c *reviewCommandsImpl) checkEligibility(ctx context.Context, userID, productID uuid.UUID) error {
	var eligible bool
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		eligible, ferr = tx.Orders().HasCompletedWithProduct(ctx, userID, productID)
		return ferr
	})
	if err != nil {
		return err
	}
	if !eligible {
		return ErrReviewNotEligible
	}
	return nil
}

func (c *reviewCommandsImpl) uploadAll(ctx context.Context, uploads []shared.Upload) ([]domreview.Image, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	uctx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	defer cancel()

	images := make([]domreview.Image, 0, len(uploads))
	for _, u := range uploads {
		img, err := c.storage.Upload(uctx, u)
		if err != nil {
			c.deleteImages(ctx, images, "roll back partial upload")
			if errs.Is(err, errs.ErrInvalidInput) {
				return nil, err
			}
			return nil, errs.Wrap(ErrImageUpload, "upload "+u.Filename+": "+err.Error())
		}
		images = append(images, img)
	}
	return images, nil
}

// deleteImages is best-effort: each failure is logged and skipped.
func (c *reviewCommandsImpl) deleteImages(ctx context.Context, images []domreview.Image, reason string) {
	if len(images) == 0 {
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, img := range images {
		if err := c.storage.Delete(dctx, img.ExternalID); err != nil {
			slog.Warn("failed to delete review image",
				"reason", reason,
				"external_id", img.ExternalID,
				"error", err.Error())
		}
	}
}
