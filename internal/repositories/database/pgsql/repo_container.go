package pgsql

import (
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	recurrenceRepo := newPgxRecurrenceRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	debtRepo := newPgxDebtRepository(dbPool)

	return portsrepo.RepositoryProvider{
		RecurrenceRepo:  recurrenceRepo,
		TransactionRepo: transactionRepo,
		DebtRepo:        debtRepo,
		Health:          &BaseRepository{Pool: dbPool},
	}
}
