package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// RecurrenceReader defines read operations for recurrence definitions
type RecurrenceReader interface {
	// FindRecurrenceByID retrieves a recurrence by its ID. Returns apperrors.ErrNotFound if absent.
	FindRecurrenceByID(ctx context.Context, recurrenceID string) (*domain.Recurrence, error)

	// ListActiveRecurrences retrieves the active recurrences of an owner, oldest first.
	ListActiveRecurrences(ctx context.Context, ownerID string) ([]domain.Recurrence, error)

	// ListRecurrencesByOwner retrieves every recurrence of an owner regardless of state.
	ListRecurrencesByOwner(ctx context.Context, ownerID string) ([]domain.Recurrence, error)

	// ListActiveOwnerIDs retrieves the distinct owners having at least one active recurrence.
	ListActiveOwnerIDs(ctx context.Context) ([]string, error)
}

// RecurrenceWriter defines write operations for recurrence definitions
type RecurrenceWriter interface {
	// SaveRecurrence persists a new recurrence.
	SaveRecurrence(ctx context.Context, recurrence domain.Recurrence) error

	// UpdateRecurrenceActive toggles the active flag.
	UpdateRecurrenceActive(ctx context.Context, recurrenceID string, active bool, userID string, now time.Time) error

	// UpdateRecurrenceLastMaterialized advances the materialization marker to next,
	// but only if the stored marker still equals expected (nil meaning unset).
	// Returns apperrors.ErrConcurrentModification when it does not.
	UpdateRecurrenceLastMaterialized(ctx context.Context, recurrenceID string, expected *domain.Date, next domain.Date) error
}

// RecurrenceRepositoryFacade combines all recurrence-related repository interfaces
type RecurrenceRepositoryFacade interface {
	RecurrenceReader
	RecurrenceWriter
}
