package review

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	id        uuid.UUID
	productID uuid.UUID
	userID    uuid.UUID
	rating    Rating
	comment   Comment
	images    []Image
	createdAt time.Time
	updatedAt time.Time
}

func NewReview(productID, userID uuid.UUID, rating Rating, comment Comment, images []Image, now time.Time) *Review {
	final, _ := Reconcile(nil, nil, images)
	return &Review{
		id:        uuid.New(),
		productID: productID,
		userID:    userID,
		rating:    rating,
		comment:   comment,
		images:    final,
		createdAt: now,
		updatedAt: now,
	}
}

func Reconstruct(
	id, productID, userID uuid.UUID,
	rating Rating,
	comment Comment,
	images []Image,
	createdAt, updatedAt time.Time,
) *Review {
	return &Review{
		id:        id,
		productID: productID,
		userID:    userID,
		rating:    rating,
		comment:   comment,
		images:    images,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Edit overwrites rating and comment (an empty comment clears the old one) and
// applies the reconciled image set. It returns the images that are no longer referenced.
func (r *Review) Edit(rating Rating, comment Comment, retain *[]string, uploaded []Image, now time.Time) []Image {
	final, toDelete := Reconcile(r.images, retain, uploaded)
	r.rating = rating
	r.comment = comment
	r.images = final
	r.updatedAt = now
	return toDelete
}

func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) ProductID() uuid.UUID { return r.productID }
func (r *Review) UserID() uuid.UUID    { return r.userID }
func (r *Review) Rating() Rating       { return r.rating }
func (r *Review) Comment() Comment     { return r.comment }
func (r *Review) Images() []Image      { return append([]Image(nil), r.images...) }
func (r *Review) CreatedAt() time.Time { return r.createdAt }
func (r *Review) UpdatedAt() time.Time { return r.updatedAt }
