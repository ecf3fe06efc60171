package repository

import (
	"context"
	"log/slog"
	"time"

	"storefront-core/internal/domain/credential"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewUserRepository(dbtx db.DBTX, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: dbtx, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID(), u.Email().Value(), u.PasswordHash(), u.Role().String(), u.IsActive(), u.CreatedAt(), u.UpdatedAt(),
	)
	if err != nil {
		return classify(r.logger, "failed to create user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var (
		uid                  uuid.UUID
		email, hash, role    string
		isActive             bool
		digest               pgtype.Text
		expiresAt            pgtype.Timestamptz
		attempts, maxTries   int32
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, is_active,
			rotation_code_digest, rotation_expires_at, rotation_attempts, rotation_attempts_max,
			created_at, updated_at
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&uid, &email, &hash, &role, &isActive, &digest, &expiresAt, &attempts, &maxTries, &createdAt, &updatedAt)
	if err != nil {
		return nil, classify(r.logger, "user not found", err)
	}

	var ticket *credential.Ticket
	if digest.Valid && expiresAt.Valid {
		ticket = &credential.Ticket{
			CodeDigest:   digest.String,
			ExpiresAt:    expiresAt.Time,
			AttemptsUsed: int(attempts),
			AttemptsMax:  int(maxTries),
		}
	}

	addr, err := user.NewEmail(email)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "stored email is invalid", err)
	}
	return user.Reconstruct(uid, addr, hash, user.Role(role), isActive, ticket, createdAt, updatedAt), nil
}

// SaveRotationTicket replaces any pending ticket and resets the attempt counter.
func (r *UserRepository) SaveRotationTicket(ctx context.Context, userID uuid.UUID, t credential.Ticket) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET rotation_code_digest = $2, rotation_expires_at = $3,
			rotation_attempts = 0, rotation_attempts_max = $4
		WHERE id = $1`,
		userID, t.CodeDigest, t.ExpiresAt, int32(t.AttemptsMax), // #nosec G115 -- configured small value
	)
	if err != nil {
		return classify(r.logger, "failed to save rotation ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) ClearRotationTicketIfDigest(ctx context.Context, userID uuid.UUID, digest string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET rotation_code_digest = NULL, rotation_expires_at = NULL, rotation_attempts = 0
		WHERE id = $1 AND rotation_code_digest = $2`,
		userID, digest,
	)
	if err != nil {
		return false, classify(r.logger, "failed to clear rotation ticket", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) IncrementRotationAttemptsIfDigest(ctx context.Context, userID uuid.UUID, digest string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET rotation_attempts = rotation_attempts + 1
		WHERE id = $1 AND rotation_code_digest = $2 AND rotation_attempts < rotation_attempts_max`,
		userID, digest,
	)
	if err != nil {
		return false, classify(r.logger, "failed to record rotation attempt", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RotatePasswordIfDigest swaps the password and consumes the ticket in one
// statement. It reports false when the ticket was replaced, used up or expired.
func (r *UserRepository) RotatePasswordIfDigest(ctx context.Context, userID uuid.UUID, digest, newHash string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $3,
			rotation_code_digest = NULL, rotation_expires_at = NULL, rotation_attempts = 0,
			updated_at = $4
		WHERE id = $1
			AND rotation_code_digest = $2
			AND rotation_attempts < rotation_attempts_max
			AND rotation_expires_at > $4`,
		userID, digest, newHash, now,
	)
	if err != nil {
		return false, classify(r.logger, "failed to rotate password", err)
	}
	return tag.RowsAffected() == 1, nil
}
