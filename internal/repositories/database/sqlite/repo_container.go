package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RecurrenceRepo:  newSQLiteRecurrenceRepository(db),
		TransactionRepo: newSQLiteTransactionRepository(db),
		DebtRepo:        newSQLiteDebtRepository(db),
		Health:          &BaseRepository{DB: db},
	}
}

// NewDebtRepository exposes the installment writer used for seeding.
func NewDebtRepository(db *sql.DB) *SQLiteDebtRepository {
	return newSQLiteDebtRepository(db)
}
