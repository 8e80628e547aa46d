package pgsql

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "uq_transactions_recurrence_due"}, apperrors.ErrDuplicate},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, apperrors.ErrConcurrentModification},
		{"connection exception", &pgconn.PgError{Code: "08006"}, apperrors.ErrStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapError_PassesThroughUnknownErrors(t *testing.T) {
	cause := errors.New("syntax error")
	got := mapError("op", &pgconn.PgError{Code: "42601", Message: cause.Error()})
	assert.False(t, apperrors.IsRetryable(got))
	assert.NotErrorIs(t, got, apperrors.ErrNotFound)

	assert.ErrorIs(t, mapError("op", context.Canceled), context.Canceled)
	assert.Nil(t, mapError("op", nil))
}
