package repositories

import "context"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	RecurrenceRepo  RecurrenceRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	DebtRepo        DebtInstallmentReader
	Health          Pinger
}
