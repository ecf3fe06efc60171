package pgconv_test

import (
	"fmt"
	"testing"
	"time"

	"storefront-core/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNullableRoundTrip(t *testing.T) {
	reason := "Cancelled by customer"
	assert.Equal(t, &reason, pgconv.StringPtrFromPgtype(pgconv.StringPtrToPgtype(&reason)))
	assert.Nil(t, pgconv.StringPtrFromPgtype(pgconv.StringPtrToPgtype(nil)))

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, &at, pgconv.TimePtrFromPgtype(pgconv.TimePtrToPgtype(&at)))
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgconv.TimePtrToPgtype(nil)))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(fmt.Errorf("find: %w", pgx.ErrNoRows)))
	assert.True(t, pgconv.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, pgconv.IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, pgconv.IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, pgconv.IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pgconv.IsUniqueViolation(nil))
}
