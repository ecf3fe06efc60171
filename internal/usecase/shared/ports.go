package shared

import (
	"context"
	"time"

	"storefront-core/internal/domain/review"

	"github.com/google/uuid"
)

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ObjectStorage interface {
	Upload(ctx context.Context, u Upload) (review.Image, error)
	Delete(ctx context.Context, externalID string) error
}

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NotificationDispatcher sends in the background. Dispatch never blocks on
// delivery; onFailure, when set, runs after the send has failed.
type NotificationDispatcher interface {
	Dispatch(email Email, onFailure func(error))
}

type OrderStatusChanged struct {
	OrderID    uuid.UUID `json:"order_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Total      int64     `json:"total_amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error
}

type CommentFilter interface {
	Clean(text string) string
}
