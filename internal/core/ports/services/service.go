package services

import (
	"context"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Recurrence      RecurrenceSvcFacade
	Materialization MaterializationSvc
	Projection      ProjectionSvc
}

// EventPublisher notifies downstream consumers about materialized transactions.
type EventPublisher interface {
	PublishMaterialized(ctx context.Context, ownerID string, result domain.MaterializationResult) error
	Close() error
}
