package services

import (
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Recurrence = NewRecurrenceService(repos.RecurrenceRepo, repos.TransactionRepo)

	container.Materialization = NewMaterializationService(
		repos.RecurrenceRepo,
		repos.TransactionRepo,
		WithEventPublisher(publisher),
		WithMaxAttempts(cfg.MaterializeMaxAttempts),
		WithConcurrency(cfg.MaterializeConcurrency),
	)

	container.Projection = NewProjectionService(repos.RecurrenceRepo, repos.DebtRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.RecurrenceSvcFacade = (*RecurrenceService)(nil)
	_ portssvc.MaterializationSvc  = (*MaterializationService)(nil)
	_ portssvc.ProjectionSvc       = (*ProjectionService)(nil)
)
