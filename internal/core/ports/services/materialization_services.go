package services

import (
	"context"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// MaterializationSvc turns due occurrences into persisted transactions.
type MaterializationSvc interface {
	// MaterializeDue creates one transaction per due date of the recurrence in
	// (last materialized, asOf], advancing the marker after each one.
	// On failure the partial result is returned together with the error.
	MaterializeDue(ctx context.Context, recurrence domain.Recurrence, asOf domain.Date) (*domain.MaterializationResult, error)

	// MaterializeRecurrence loads the recurrence and materializes it, retrying
	// transient and concurrent-modification failures. A nil asOf means today.
	MaterializeRecurrence(ctx context.Context, ownerID, recurrenceID string, asOf *domain.Date) (*domain.MaterializationResult, error)

	// MaterializeAll materializes every active recurrence of the owner.
	// Per-recurrence failures are reported in the result rather than returned.
	MaterializeAll(ctx context.Context, ownerID string, asOf *domain.Date) (*domain.BatchMaterializationResult, error)
}

// ProjectionSvc forecasts occurrences without writing anything.
type ProjectionSvc interface {
	// ProjectPeriod lists the occurrences expected in [periodStart, periodEnd].
	ProjectPeriod(ctx context.Context, ownerID string, periodStart, periodEnd domain.Date) (*domain.Projection, error)
}
