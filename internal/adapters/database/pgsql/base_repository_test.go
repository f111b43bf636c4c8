package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: apperrors.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "principals_email_key"}, want: apperrors.ErrDuplicate},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: apperrors.ErrValidation},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, want: apperrors.ErrValidation},
		{name: "numeric overflow", err: &pgconn.PgError{Code: "22003"}, want: apperrors.ErrValidation},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: apperrors.ErrStoreUnavailable},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: apperrors.ErrStoreUnavailable},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: apperrors.ErrStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "op")
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestTranslateError_ClientReasonHidesInternals(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		reason string
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "ledger_entries_pkey"}, http.StatusConflict, "record already exists"},
		{"foreign key violation", &pgconn.PgError{Code: "23503", ConstraintName: "principals_group_fk"}, http.StatusBadRequest, "referenced record is missing or still in use"},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "ledger_entries_sale_price_check"}, http.StatusBadRequest, "value violates a data rule"},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, http.StatusBadRequest, "numeric value out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "failed to insert ledger entry 7f3c9a10")
			assert.Contains(t, got.Error(), "7f3c9a10")

			appErr := apperrors.FromError(got)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.reason, appErr.Message)
		})
	}
}

func TestTranslateError_PassesThroughUnknown(t *testing.T) {
	cause := errors.New("boom")
	got := translateError(cause, "op")
	assert.ErrorIs(t, got, cause)
	assert.False(t, errors.Is(got, apperrors.ErrStoreUnavailable))
	assert.Nil(t, translateError(nil, "op"))
}

func TestFilterClauses(t *testing.T) {
	conds, args := filterClauses(domain.LedgerFilter{Kind: domain.KindSale, PNR: " abc123 "})
	assert.Equal(t, []string{`status = 'PERSISTED'`, `kind = $1`, `pnr = $2`}, conds)
	assert.Equal(t, []any{"sale", "ABC123"}, args)

	conds, args = filterClauses(domain.LedgerFilter{IncludeRemoved: true})
	assert.Empty(t, conds)
	assert.Empty(t, args)
	assert.Equal(t, "", where(conds))
}
