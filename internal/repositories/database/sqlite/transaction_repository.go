package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
)

type SQLiteTransactionRepository struct {
	BaseRepository
}

func newSQLiteTransactionRepository(db *sql.DB) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.TransactionRepositoryFacade = (*SQLiteTransactionRepository)(nil)

func (r *SQLiteTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, owner_id, recurrence_id, due_date, occurred_date,
			amount, direction, category_id, description,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.DB.ExecContext(ctx, query,
		txn.TransactionID,
		txn.OwnerID,
		txn.RecurrenceID,
		txn.DueDate.String(),
		txn.OccurredDate.String(),
		txn.Amount.StringFixed(2),
		string(txn.Direction),
		txn.CategoryID,
		txn.Description,
		formatTime(txn.CreatedAt),
		txn.CreatedBy,
		formatTime(txn.LastUpdatedAt),
		txn.LastUpdatedBy,
	)
	if err != nil {
		return mapError(fmt.Sprintf("create transaction %s", txn.TransactionID), err)
	}
	return nil
}

func (r *SQLiteTransactionRepository) ListTransactionsByRecurrence(ctx context.Context, recurrenceID string) ([]domain.Transaction, error) {
	op := fmt.Sprintf("list transactions of recurrence %s", recurrenceID)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT transaction_id, owner_id, recurrence_id, due_date, occurred_date,
			amount, direction, category_id, description,
			created_at, created_by, last_updated_at, last_updated_by
		FROM transactions
		WHERE recurrence_id = ?
		ORDER BY due_date;`, recurrenceID)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var (
			t                  domain.Transaction
			direction          string
			createdAt, updated string
		)
		if err := rows.Scan(
			&t.TransactionID, &t.OwnerID, &t.RecurrenceID, &t.DueDate, &t.OccurredDate,
			&t.Amount, &direction, &t.CategoryID, &t.Description,
			&createdAt, &t.CreatedBy, &updated, &t.LastUpdatedBy,
		); err != nil {
			return nil, mapError(op, err)
		}
		t.Direction = domain.Direction(direction)
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if t.LastUpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return txns, nil
}
