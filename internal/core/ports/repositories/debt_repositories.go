package repositories

import (
	"context"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// DebtInstallmentReader reads pending debt installments for projections.
type DebtInstallmentReader interface {
	// ListPendingDebtInstallments retrieves unpaid installments of an owner due in [from, to].
	ListPendingDebtInstallments(ctx context.Context, ownerID string, from, to domain.Date) ([]domain.DebtInstallment, error)
}
