package repositories

import (
	"context"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// TransactionReader defines read operations for materialized transactions
type TransactionReader interface {
	// ListTransactionsByRecurrence retrieves the transactions spawned by a recurrence, by due date.
	ListTransactionsByRecurrence(ctx context.Context, recurrenceID string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for materialized transactions
type TransactionWriter interface {
	// CreateTransaction persists a transaction. Returns apperrors.ErrDuplicate
	// when one already exists for the same (recurrence, due date) pair.
	CreateTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
