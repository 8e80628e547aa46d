package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
)

type SQLiteDebtRepository struct {
	BaseRepository
}

func newSQLiteDebtRepository(db *sql.DB) *SQLiteDebtRepository {
	return &SQLiteDebtRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.DebtInstallmentReader = (*SQLiteDebtRepository)(nil)

func (r *SQLiteDebtRepository) ListPendingDebtInstallments(ctx context.Context, ownerID string, from, to domain.Date) ([]domain.DebtInstallment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT d.installment_id, d.debt_id, d.owner_id, d.due_date, d.amount, d.direction,
			COALESCE(c.name, ''), d.is_paid, d.converted_recurrence_id
		FROM debt_installments d
		LEFT JOIN categories c ON c.category_id = d.category_id
		WHERE d.owner_id = ? AND d.is_paid = 0 AND d.due_date BETWEEN ? AND ?
		ORDER BY d.due_date, d.installment_id;`,
		ownerID, from.String(), to.String())
	if err != nil {
		return nil, mapError("list debt installments", err)
	}
	defer rows.Close()

	installments := []domain.DebtInstallment{}
	for rows.Next() {
		var (
			inst      domain.DebtInstallment
			direction string
		)
		if err := rows.Scan(
			&inst.InstallmentID, &inst.DebtID, &inst.OwnerID, &inst.DueDate, &inst.Amount, &direction,
			&inst.CategoryName, &inst.IsPaid, &inst.ConvertedRecurrenceID,
		); err != nil {
			return nil, mapError("list debt installments", err)
		}
		inst.Direction = domain.Direction(direction)
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list debt installments", err)
	}
	return installments, nil
}

// SaveCategory upserts a category used by read-side joins.
func (r *SQLiteDebtRepository) SaveCategory(ctx context.Context, categoryID, ownerID, name string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO categories (category_id, owner_id, name) VALUES (?, ?, ?)
		ON CONFLICT (category_id) DO UPDATE SET name = excluded.name;`,
		categoryID, ownerID, name)
	if err != nil {
		return mapError(fmt.Sprintf("save category %s", categoryID), err)
	}
	return nil
}

// SaveDebtInstallment inserts one installment. Debts are owned by another
// part of the application; this exists for seeding and tests.
func (r *SQLiteDebtRepository) SaveDebtInstallment(ctx context.Context, inst domain.DebtInstallment, categoryID *string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO debt_installments (installment_id, debt_id, owner_id, due_date, amount, direction,
			category_id, is_paid, converted_recurrence_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		inst.InstallmentID, inst.DebtID, inst.OwnerID, inst.DueDate.String(),
		inst.Amount.Round(2).StringFixed(2), string(inst.Direction),
		categoryID, inst.IsPaid, inst.ConvertedRecurrenceID)
	if err != nil {
		return mapError(fmt.Sprintf("save debt installment %s", inst.InstallmentID), err)
	}
	return nil
}

