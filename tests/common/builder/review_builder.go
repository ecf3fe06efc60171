package builder

import (
	"time"

	domreview "storefront-core/internal/domain/review"

	"github.com/google/uuid"
)

type ReviewBuilder struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
	Images    []domreview.Image
	CreatedAt time.Time
}

func NewReviewBuilder() *ReviewBuilder {
	return &ReviewBuilder{
		ProductID: uuid.New(),
		UserID:    uuid.New(),
		Rating:    5,
		Comment:   "Excellent coffee!",
		CreatedAt: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
	}
}

func (r *ReviewBuilder) With(mutate func(*ReviewBuilder)) *ReviewBuilder {
	mutate(r)
	return r
}

// Build methods
func (r *ReviewBuilder) BuildDomain() (*domreview.Review, error) {
	rating, err := domreview.NewRating(r.Rating)
	if err != nil {
		return nil, err
	}
	comment, err := domreview.NewComment(r.Comment)
	if err != nil {
		return nil, err
	}
	return domreview.NewReview(r.ProductID, r.UserID, rating, comment, r.Images, r.CreatedAt), nil
}

func (r *ReviewBuilder) MustBuild() *domreview.Review {
	rv, err := r.BuildDomain()
	if err != nil {
		panic(err)
	}
	return rv
}

// Fluent builder methods
func (r *ReviewBuilder) WithProductID(id uuid.UUID) *ReviewBuilder {
	r.ProductID = id
	return r
}

func (r *ReviewBuilder) WithUserID(id uuid.UUID) *ReviewBuilder {
	r.UserID = id
	return r
}

func (r *ReviewBuilder) WithRating(rating int) *ReviewBuilder {
	r.Rating = rating
	return r
}

func (r *ReviewBuilder) WithComment(comment string) *ReviewBuilder {
	r.Comment = comment
	return r
}

func (r *ReviewBuilder) WithImages(ids ...string) *ReviewBuilder {
	r.Images = Images(ids...)
	return r
}

// Images builds storage references whose URL is derived from the ID.
func Images(ids ...string) []domreview.Image {
	out := make([]domreview.Image, 0, len(ids))
	for _, id := range ids {
		out = append(out, domreview.Image{ExternalID: id, URL: "/media/" + id})
	}
	return out
}
