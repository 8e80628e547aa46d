package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDebtRepository struct {
	BaseRepository
}

func newPgxDebtRepository(pool *pgxpool.Pool) *PgxDebtRepository {
	return &PgxDebtRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DebtInstallmentReader = (*PgxDebtRepository)(nil)

// ListPendingDebtInstallments returns unpaid installments due within [from, to].
func (r *PgxDebtRepository) ListPendingDebtInstallments(ctx context.Context, ownerID string, from, to domain.Date) ([]domain.DebtInstallment, error) {
	query := `
		SELECT d.installment_id, d.debt_id, d.owner_id, d.due_date, d.amount, d.direction,
			COALESCE(c.name, ''), d.is_paid, d.converted_recurrence_id
		FROM debt_installments d
		LEFT JOIN categories c ON c.category_id = d.category_id
		WHERE d.owner_id = $1
		  AND NOT d.is_paid
		  AND d.due_date BETWEEN $2 AND $3
		ORDER BY d.due_date, d.installment_id;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID, from.Time, to.Time)
	if err != nil {
		return nil, mapError("list debt installments", err)
	}
	defer rows.Close()

	installments := []domain.DebtInstallment{}
	for rows.Next() {
		var (
			inst      domain.DebtInstallment
			due       time.Time
			direction string
		)
		if err := rows.Scan(
			&inst.InstallmentID, &inst.DebtID, &inst.OwnerID, &due, &inst.Amount, &direction,
			&inst.CategoryName, &inst.IsPaid, &inst.ConvertedRecurrenceID,
		); err != nil {
			return nil, mapError("list debt installments", err)
		}
		inst.DueDate = domain.DateOf(due)
		inst.Direction = domain.Direction(direction)
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list debt installments", err)
	}
	return installments, nil
}
