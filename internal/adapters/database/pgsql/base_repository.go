package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes the repositories react to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOverflow     = "22003"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, translateError(err, "failed to begin transaction")
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return translateError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction. It is safe to defer after a successful commit.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return translateError(err, "failed to rollback transaction")
	}
	return nil
}

// translateError maps driver errors onto the apperrors sentinels.
func translateError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// The operation and constraint stay ahead of the sentinel for logs; only
		// the fixed text after it is shown to clients.
		case pgUniqueViolation:
			return fmt.Errorf("%s (%s): %w: record already exists", msg, pgErr.ConstraintName, apperrors.ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s (%s): %w: referenced record is missing or still in use", msg, pgErr.ConstraintName, apperrors.ErrValidation)
		case pgCheckViolation:
			return fmt.Errorf("%s (%s): %w: value violates a data rule", msg, pgErr.ConstraintName, apperrors.ErrValidation)
		case pgNumericOverflow:
			return fmt.Errorf("%s: %w: numeric value out of range", msg, apperrors.ErrValidation)
		}
		// class 08 is connection exceptions, 57P0x is operator intervention
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P") {
			return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreUnavailable, msg, err)
		}
		return fmt.Errorf("%s: %w", msg, err)
	}

	var netErr net.Error
	var connectErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &connectErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err):
		return fmt.Errorf("%w: %s: %v", apperrors.ErrStoreUnavailable, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
