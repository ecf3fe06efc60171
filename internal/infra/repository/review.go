package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"storefront-core/internal/domain/review"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"

	"github.com/google/uuid"
)

const reviewColumns = `id, product_id, user_id, rating, comment, images, created_at, updated_at`

type ReviewRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewReviewRepository(dbtx db.DBTX, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{db: dbtx, logger: logger}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	images, err := encodeImages(rv.Images())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode review images", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rv.ID(), rv.ProductID(), rv.UserID(), int16(rv.Rating().Value()), rv.Comment().String(), images, // #nosec G115 -- rating is 1..5
		rv.CreatedAt(), rv.UpdatedAt(),
	)
	if err != nil {
		return classify(r.logger, "failed to create review", err)
	}
	return nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *review.Review) error {
	images, err := encodeImages(rv.Images())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode review images", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE reviews
		SET rating = $2, comment = $3, images = $4, updated_at = $5
		WHERE id = $1`,
		rv.ID(), int16(rv.Rating().Value()), rv.Comment().String(), images, rv.UpdatedAt(), // #nosec G115
	)
	if err != nil {
		return classify(r.logger, "failed to update review", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("review not found")
	}
	return nil
}

func (r *ReviewRepository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*review.Review, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE product_id = $1 AND user_id = $2`,
		productID, userID,
	)
	rv, err := r.scanReview(row)
	if err != nil {
		return nil, classify(r.logger, "review not found", err)
	}
	return rv, nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*review.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		productID, limit, offset,
	)
	if err != nil {
		return nil, classify(r.logger, "failed to list reviews", err)
	}
	defer rows.Close()

	var out []*review.Review
	for rows.Next() {
		rv, err := r.scanReview(rows)
		if err != nil {
			return nil, classify(r.logger, "failed to scan review", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(r.logger, "failed to list reviews", err)
	}
	return out, nil
}

func (r *ReviewRepository) scanReview(row scanner) (*review.Review, error) {
	var (
		id, productID, userID uuid.UUID
		rating                int16
		comment               string
		rawImages             []byte
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &productID, &userID, &rating, &comment, &rawImages, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rt, err := review.NewRating(int(rating))
	if err != nil {
		return nil, err
	}
	c, err := review.NewComment(comment)
	if err != nil {
		return nil, err
	}
	var images []review.Image
	if len(rawImages) > 0 {
		if err := json.Unmarshal(rawImages, &images); err != nil {
			return nil, err
		}
	}
	return review.Reconstruct(id, productID, userID, rt, c, images, createdAt, updatedAt), nil
}

func encodeImages(images []review.Image) ([]byte, error) {
	if images == nil {
		images = []review.Image{}
	}
	return json.Marshal(images)
}
