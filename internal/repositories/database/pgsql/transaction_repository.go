package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// CreateTransaction inserts one materialized transaction. The unique index on
// (recurrence_id, due_date) turns a second insert for the same occurrence into
// apperrors.ErrDuplicate.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, owner_id, recurrence_id, due_date, occurred_date,
			amount, direction, category_id, description,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		txn.TransactionID,
		txn.OwnerID,
		txn.RecurrenceID,
		txn.DueDate.Time,
		txn.OccurredDate.Time,
		txn.Amount,
		string(txn.Direction),
		txn.CategoryID,
		txn.Description,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return mapError(fmt.Sprintf("create transaction %s", txn.TransactionID), err)
	}
	return nil
}

func (r *PgxTransactionRepository) ListTransactionsByRecurrence(ctx context.Context, recurrenceID string) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, owner_id, recurrence_id, due_date, occurred_date,
			amount, direction, category_id, description,
			created_at, created_by, last_updated_at, last_updated_by
		FROM transactions
		WHERE recurrence_id = $1
		ORDER BY due_date;
	`
	op := fmt.Sprintf("list transactions of recurrence %s", recurrenceID)
	rows, err := r.Pool.Query(ctx, query, recurrenceID)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var (
			t             domain.Transaction
			due, occurred time.Time
			direction     string
		)
		if err := rows.Scan(
			&t.TransactionID, &t.OwnerID, &t.RecurrenceID, &due, &occurred,
			&t.Amount, &direction, &t.CategoryID, &t.Description,
			&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
		); err != nil {
			return nil, mapError(op, err)
		}
		t.DueDate = domain.DateOf(due)
		t.OccurredDate = domain.DateOf(occurred)
		t.Direction = domain.Direction(direction)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return txns, nil
}
