package queries

import (
	"context"
	"time"

	domreview "storefront-core/internal/domain/review"
	"storefront-core/internal/pkg/patch"
	"storefront-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReviewImageView struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ReviewView struct {
	ID        uuid.UUID         `json:"id"`
	ProductID uuid.UUID         `json:"product_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Rating    int               `json:"rating"`
	Comment   string            `json:"comment"`
	Images    []ReviewImageView `json:"images"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ReviewQueries interface {
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset *int) ([]*ReviewView, error)
}

type reviewQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewReviewQueries(uow shared.UnitOfWork) ReviewQueries {
	return &reviewQueriesImpl{uow: uow}
}

func (q *reviewQueriesImpl) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset *int) ([]*ReviewView, error) {
	l := patch.Clamp(patch.Coalesce(limit, DefaultListLimit), 1, MaxListLimit)
	o := max(patch.Coalesce(offset, 0), 0)

	var reviews []*domreview.Review
	err := q.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		reviews, ferr = tx.Reviews().ListByProduct(ctx, productID, l, o)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	views := make([]*ReviewView, 0, len(reviews))
	for _, rv := range reviews {
		views = append(views, ToReviewView(rv))
	}
	return views, nil
}

func ToReviewView(rv *domreview.Review) *ReviewView {
	images := make([]ReviewImageView, 0, len(rv.Images()))
	for _, img := range rv.Images() {
		images = append(images, ReviewImageView{ID: img.ExternalID, URL: img.URL})
	}
	return &ReviewView{
		ID:        rv.ID(),
		ProductID: rv.ProductID(),
		UserID:    rv.UserID(),
		Rating:    rv.Rating().Value(),
		Comment:   rv.Comment().String(),
		Images:    images,
		CreatedAt: rv.CreatedAt(),
		UpdatedAt: rv.UpdatedAt(),
	}
}
