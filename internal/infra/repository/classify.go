package repository

import (
	"log/slog"

	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/pgconv"
)

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func classify(logger *slog.Logger, msg string, err error) error {
	switch {
	case pgconv.IsNoRows(err):
		return infra.WrapRepoErr(logger, infra.KindNotFound, msg, err)
	case pgconv.IsUniqueViolation(err):
		return infra.WrapRepoErr(logger, infra.KindDuplicateKey, msg, err)
	default:
		return infra.WrapRepoErr(logger, infra.KindDBFailure, msg, err)
	}
}
