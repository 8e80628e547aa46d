package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/dto"
	"github.com/google/uuid"
)

// RecurrenceService manages recurrence definitions and their lifecycle.
type RecurrenceService struct {
	BaseService
	recurrenceRepo  portsrepo.RecurrenceRepositoryFacade
	transactionRepo portsrepo.TransactionReader
}

// RecurrenceOption is a functional option for configuring the recurrence service
type RecurrenceOption func(*RecurrenceService)

// WithRecurrenceClock injects the clock used for audit timestamps.
func WithRecurrenceClock(clock Clock) RecurrenceOption {
	return func(s *RecurrenceService) {
		s.Clock = clock
	}
}

// NewRecurrenceService creates a new recurrence service with the provided options
func NewRecurrenceService(recurrenceRepo portsrepo.RecurrenceRepositoryFacade, transactionRepo portsrepo.TransactionReader, options ...RecurrenceOption) *RecurrenceService {
	svc := &RecurrenceService{
		recurrenceRepo:  recurrenceRepo,
		transactionRepo: transactionRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RecurrenceSvcFacade = (*RecurrenceService)(nil)

// GetRecurrence retrieves a recurrence, hiding other owners' records as not found.
func (s *RecurrenceService) GetRecurrence(ctx context.Context, ownerID, recurrenceID string) (*domain.Recurrence, error) {
	recurrence, err := s.recurrenceRepo.FindRecurrenceByID(ctx, recurrenceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find recurrence",
			slog.String("recurrence_id", recurrenceID))
		return nil, err
	}
	if recurrence.OwnerID != ownerID {
		return nil, fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
	}
	return recurrence, nil
}

// ListRecurrences retrieves every recurrence of the owner.
func (s *RecurrenceService) ListRecurrences(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	recurrences, err := s.recurrenceRepo.ListRecurrencesByOwner(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recurrences",
			slog.String("owner_id", ownerID))
		return nil, err
	}
	return recurrences, nil
}

// ListRecurrenceTransactions retrieves what a recurrence has materialized so far.
func (s *RecurrenceService) ListRecurrenceTransactions(ctx context.Context, ownerID, recurrenceID string) ([]domain.Transaction, error) {
	if _, err := s.GetRecurrence(ctx, ownerID, recurrenceID); err != nil {
		return nil, err
	}
	txns, err := s.transactionRepo.ListTransactionsByRecurrence(ctx, recurrenceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recurrence transactions",
			slog.String("recurrence_id", recurrenceID))
		return nil, err
	}
	return txns, nil
}

// CreateRecurrence validates and persists a new recurrence.
func (s *RecurrenceService) CreateRecurrence(ctx context.Context, ownerID string, req dto.CreateRecurrenceRequest, userID string) (*domain.Recurrence, error) {
	frequency, err := domain.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}
	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = ownerID
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	recurrence := domain.Recurrence{
		RecurrenceID: uuid.NewString(),
		OwnerID:      ownerID,
		Description:  req.Description,
		Amount:       req.Amount,
		Direction:    direction,
		Frequency:    frequency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     isActive,
		CategoryID:   req.CategoryID,
		SourceDebtID: req.SourceDebtID,
		AuditFields:  domain.NewAuditFields(userID, s.Now()),
	}

	if err := recurrence.Validate(); err != nil {
		s.LogDebug(ctx, "Rejected recurrence",
			slog.String("owner_id", ownerID),
			slog.String("reason", err.Error()))
		return nil, err
	}

	if err := s.recurrenceRepo.SaveRecurrence(ctx, recurrence); err != nil {
		s.LogError(ctx, err, "Failed to save recurrence",
			slog.String("owner_id", ownerID))
		return nil, fmt.Errorf("failed to save recurrence: %w", err)
	}

	s.LogInfo(ctx, "Recurrence created",
		slog.String("recurrence_id", recurrence.RecurrenceID),
		slog.String("owner_id", ownerID),
		slog.String("frequency", string(frequency)))

	// Re-read so read-side fields such as the category name are populated.
	return s.GetRecurrence(ctx, ownerID, recurrence.RecurrenceID)
}

// SetRecurrenceActive enables or disables a recurrence. The materialization
// marker is untouched, so re-enabling never re-creates past dates.
func (s *RecurrenceService) SetRecurrenceActive(ctx context.Context, ownerID, recurrenceID string, active bool, userID string) (*domain.Recurrence, error) {
	recurrence, err := s.GetRecurrence(ctx, ownerID, recurrenceID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = ownerID
	}
	if recurrence.IsActive == active {
		return recurrence, nil
	}

	if err := s.recurrenceRepo.UpdateRecurrenceActive(ctx, recurrenceID, active, userID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to update recurrence active flag",
			slog.String("recurrence_id", recurrenceID),
			slog.Bool("active", active))
		return nil, err
	}

	s.LogInfo(ctx, "Recurrence active flag changed",
		slog.String("recurrence_id", recurrenceID),
		slog.Bool("active", active))
	return s.GetRecurrence(ctx, ownerID, recurrenceID)
}
