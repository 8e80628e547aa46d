package services

import (
	"context"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/SscSPs/money_recurrence/internal/dto"
)

// RecurrenceReaderSvc defines read operations for recurrence definitions
type RecurrenceReaderSvc interface {
	// GetRecurrence retrieves a recurrence owned by ownerID. Another owner's recurrence is reported as not found.
	GetRecurrence(ctx context.Context, ownerID, recurrenceID string) (*domain.Recurrence, error)

	// ListRecurrences retrieves every recurrence of an owner.
	ListRecurrences(ctx context.Context, ownerID string) ([]domain.Recurrence, error)

	// ListRecurrenceTransactions retrieves the transactions a recurrence has spawned.
	ListRecurrenceTransactions(ctx context.Context, ownerID, recurrenceID string) ([]domain.Transaction, error)
}

// RecurrenceWriterSvc defines write operations for recurrence definitions
type RecurrenceWriterSvc interface {
	// CreateRecurrence validates and persists a new recurrence.
	CreateRecurrence(ctx context.Context, ownerID string, req dto.CreateRecurrenceRequest, userID string) (*domain.Recurrence, error)

	// SetRecurrenceActive enables or disables a recurrence. Re-enabling resumes from the last materialized date.
	SetRecurrenceActive(ctx context.Context, ownerID, recurrenceID string, active bool, userID string) (*domain.Recurrence, error)
}

// RecurrenceSvcFacade combines all recurrence-related service interfaces
type RecurrenceSvcFacade interface {
	RecurrenceReaderSvc
	RecurrenceWriterSvc
}
