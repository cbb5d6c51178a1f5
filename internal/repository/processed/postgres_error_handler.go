package processed

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/yt-scribe/internal/errors"
)

// handlePostgreSQLError converts PostgreSQL-specific errors to AppError codes.
// Everything is reported under CodeStorage so callers treat any failure as "not recorded".
func handlePostgreSQLError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeStorage, operation)
	}

	switch pgErr.Code {
	case "42P01": // UNDEFINED_TABLE
		return apperrors.Wrap(err, apperrors.CodeStorage, operation+": table processed_videos not found, run 'ytscribe processed migrate'")
	case "42703": // UNDEFINED_COLUMN
		return apperrors.Wrap(err, apperrors.CodeStorage, operation+": database schema error: column not found")
	case "08000", "08003", "08006": // CONNECTION_EXCEPTION variants
		return apperrors.Wrap(err, apperrors.CodeStorage, operation+": database connection error")
	case "53300": // TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeStorage, operation+": database connection limit reached")
	case "25006": // READ_ONLY_SQL_TRANSACTION
		return apperrors.Wrap(err, apperrors.CodeStorage, operation+": database is read-only")
	default:
		return apperrors.Wrap(err, apperrors.CodeStorage, operation+" (PostgreSQL code: "+pgErr.Code+")")
	}
}
