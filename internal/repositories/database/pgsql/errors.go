package pgsql

import (
	"errors"
	"net/http"

	"github.com/SscSPs/easysplit_backend/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNotNullViolation     = "23502"
	pgStringTooLong        = "22001"
	pgInvalidTextRepresent = "22P02"
	pgNumericOutOfRange    = "22003"
)

// mapWriteError translates constraint violations into apperrors sentinels and
// wraps anything else as an internal error.
func mapWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewAppError(http.StatusConflict, msg+": "+pgErr.ConstraintName, apperrors.ErrDuplicate)
		case pgForeignKeyViolation:
			return apperrors.NewAppError(http.StatusBadRequest, msg+": "+pgErr.ConstraintName, apperrors.ErrIntegrity)
		case pgCheckViolation, pgNotNullViolation, pgStringTooLong, pgInvalidTextRepresent, pgNumericOutOfRange:
			return apperrors.NewAppError(http.StatusBadRequest, msg+": "+pgErr.Message, apperrors.ErrValidation)
		}
	}
	return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
}

// mapReadError treats missing rows and malformed ids as not found.
func mapReadError(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(msg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresent {
		return apperrors.NewNotFoundError(msg)
	}
	return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
}
