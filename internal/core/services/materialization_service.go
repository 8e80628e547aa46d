package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/core/schedule"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxAttempts = 5
	defaultConcurrency = 4
	maxBackoff         = 5 * time.Second
)

// MaterializationService turns due recurrence occurrences into transactions.
type MaterializationService struct {
	BaseService
	recurrenceRepo  portsrepo.RecurrenceRepositoryFacade
	transactionRepo portsrepo.TransactionWriter
	publisher       portssvc.EventPublisher
	locks           *keyedMutex
	maxAttempts     int
	concurrency     int
	backoff         func(attempt int) time.Duration
	newID           func() string
}

// MaterializationOption is a functional option for configuring the materialization service
type MaterializationOption func(*MaterializationService)

// WithMaterializationClock injects the clock used to bound as-of dates.
func WithMaterializationClock(clock Clock) MaterializationOption {
	return func(s *MaterializationService) {
		s.Clock = clock
	}
}

// WithEventPublisher adds the publisher notified after each successful materialization.
func WithEventPublisher(p portssvc.EventPublisher) MaterializationOption {
	return func(s *MaterializationService) {
		s.publisher = p
	}
}

// WithMaxAttempts bounds retries of transient and concurrent-modification failures.
func WithMaxAttempts(n int) MaterializationOption {
	return func(s *MaterializationService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithConcurrency bounds how many recurrences MaterializeAll processes in parallel.
func WithConcurrency(n int) MaterializationOption {
	return func(s *MaterializationService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBackoff overrides the wait between attempts after a storage failure.
func WithBackoff(fn func(attempt int) time.Duration) MaterializationOption {
	return func(s *MaterializationService) {
		s.backoff = fn
	}
}

// WithIDGenerator overrides how transaction IDs are generated.
func WithIDGenerator(fn func() string) MaterializationOption {
	return func(s *MaterializationService) {
		s.newID = fn
	}
}

// NewMaterializationService creates a new materialization service with the provided options
func NewMaterializationService(recurrenceRepo portsrepo.RecurrenceRepositoryFacade, transactionRepo portsrepo.TransactionWriter, options ...MaterializationOption) *MaterializationService {
	svc := &MaterializationService{
		recurrenceRepo:  recurrenceRepo,
		transactionRepo: transactionRepo,
		locks:           newKeyedMutex(),
		maxAttempts:     defaultMaxAttempts,
		concurrency:     defaultConcurrency,
		backoff:         exponentialBackoff,
		newID:           uuid.NewString,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ portssvc.MaterializationSvc = (*MaterializationService)(nil)

// exponentialBackoff doubles from 100ms and caps at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 8 {
		return maxBackoff
	}
	d := 100 * time.Millisecond << (attempt - 1)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// MaterializeDue creates the transactions of every due date in
// (MaterializedThrough, min(asOf, EndDate)] in ascending order. The marker is
// advanced after each date so a failure leaves the recurrence consistently
// advanced up to the last written date.
func (s *MaterializationService) MaterializeDue(ctx context.Context, recurrence domain.Recurrence, asOf domain.Date) (*domain.MaterializationResult, error) {
	if !recurrence.IsActive {
		return nil, fmt.Errorf("recurrence %s: %w", recurrence.RecurrenceID, apperrors.ErrRecurrenceInactive)
	}

	result := &domain.MaterializationResult{
		RecurrenceID:         recurrence.RecurrenceID,
		Created:              []domain.Transaction{},
		LastMaterializedDate: recurrence.LastMaterializedDate,
	}

	from := recurrence.MaterializedThrough()
	to := recurrence.ClampToEnd(asOf)
	if !to.After(from) {
		return result, nil
	}

	dueDates, err := schedule.DueDatesBetween(recurrence.StartDate, recurrence.Frequency, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute due dates",
			slog.String("recurrence_id", recurrence.RecurrenceID),
			slog.String("frequency", string(recurrence.Frequency)))
		return nil, err
	}

	expected := recurrence.LastMaterializedDate
	now := s.Now()
	for _, due := range dueDates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		txn := domain.NewRecurringTransaction(recurrence, due)
		txn.TransactionID = s.newID()
		txn.AuditFields = domain.NewAuditFields(domain.SystemActor, now)

		err := s.transactionRepo.CreateTransaction(ctx, txn)
		switch {
		case err == nil:
			result.Created = append(result.Created, txn)
		case errors.Is(err, apperrors.ErrDuplicate):
			// Written by an earlier run that did not get to advance the marker, or by a racer.
			s.LogInfo(ctx, "Transaction already materialized, advancing past it",
				slog.String("recurrence_id", recurrence.RecurrenceID),
				slog.String("due_date", due.String()))
		default:
			s.LogError(ctx, err, "Failed to create recurring transaction",
				slog.String("recurrence_id", recurrence.RecurrenceID),
				slog.String("due_date", due.String()))
			return result, fmt.Errorf("failed to create transaction due %s: %w", due, err)
		}

		if err := s.recurrenceRepo.UpdateRecurrenceLastMaterialized(ctx, recurrence.RecurrenceID, expected, due); err != nil {
			s.LogError(ctx, err, "Failed to advance last materialized date",
				slog.String("recurrence_id", recurrence.RecurrenceID),
				slog.String("due_date", due.String()))
			return result, fmt.Errorf("failed to advance recurrence to %s: %w", due, err)
		}

		advanced := due
		expected = &advanced
		result.LastMaterializedDate = &advanced
	}

	s.LogDebug(ctx, "Materialized recurrence",
		slog.String("recurrence_id", recurrence.RecurrenceID),
		slog.Int("created", len(result.Created)),
		slog.String("last_materialized_date", optionalDate(result.LastMaterializedDate)))
	return result, nil
}

// MaterializeRecurrence loads, checks and materializes one recurrence of the owner.
// Calls for the same recurrence are serialized within the process.
func (s *MaterializationService) MaterializeRecurrence(ctx context.Context, ownerID, recurrenceID string, asOf *domain.Date) (*domain.MaterializationResult, error) {
	target := s.resolveAsOf(asOf)

	unlock := s.locks.Lock(recurrenceID)
	defer unlock()

	result, err := s.materializeWithRetry(ctx, ownerID, recurrenceID, target)
	if result != nil && len(result.Created) > 0 {
		s.publish(ctx, ownerID, *result)
	}
	return result, err
}

func (s *MaterializationService) materializeWithRetry(ctx context.Context, ownerID, recurrenceID string, asOf domain.Date) (*domain.MaterializationResult, error) {
	total := &domain.MaterializationResult{RecurrenceID: recurrenceID, Created: []domain.Transaction{}}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 && errors.Is(lastErr, apperrors.ErrStorageUnavailable) {
			if err := sleepCtx(ctx, s.backoff(attempt-1)); err != nil {
				return total, err
			}
		}

		recurrence, err := s.recurrenceRepo.FindRecurrenceByID(ctx, recurrenceID)
		if err != nil {
			if errors.Is(err, apperrors.ErrStorageUnavailable) {
				lastErr = err
				continue
			}
			s.LogError(ctx, err, "Failed to load recurrence for materialization",
				slog.String("recurrence_id", recurrenceID))
			return nil, err
		}
		if recurrence.OwnerID != ownerID {
			return nil, fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
		}
		if attempt == 1 {
			total.LastMaterializedDate = recurrence.LastMaterializedDate
		}

		result, err := s.MaterializeDue(ctx, *recurrence, asOf)
		if result != nil {
			total.Created = append(total.Created, result.Created...)
			if result.LastMaterializedDate != nil {
				total.LastMaterializedDate = result.LastMaterializedDate
			}
		}
		if err == nil {
			return total, nil
		}
		if !apperrors.IsRetryable(err) {
			return total, err
		}

		lastErr = err
		s.LogInfo(ctx, "Retrying materialization",
			slog.String("recurrence_id", recurrenceID),
			slog.Int("attempt", attempt),
			slog.String("reason", err.Error()))
	}

	return total, fmt.Errorf("materialization of %s gave up after %d attempts: %w", recurrenceID, s.maxAttempts, lastErr)
}

// MaterializeAll materializes every active recurrence of the owner in parallel.
func (s *MaterializationService) MaterializeAll(ctx context.Context, ownerID string, asOf *domain.Date) (*domain.BatchMaterializationResult, error) {
	target := s.resolveAsOf(asOf)

	recurrences, err := s.recurrenceRepo.ListActiveRecurrences(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active recurrences",
			slog.String("owner_id", ownerID))
		return nil, err
	}

	results := make([]*domain.MaterializationResult, len(recurrences))
	errs := make([]error, len(recurrences))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range recurrences {
		i := i
		recurrenceID := recurrences[i].RecurrenceID
		g.Go(func() error {
			results[i], errs[i] = s.MaterializeRecurrence(ctx, ownerID, recurrenceID, &target)
			return nil
		})
	}
	_ = g.Wait()

	batch := &domain.BatchMaterializationResult{
		Results:  []domain.MaterializationResult{},
		Failures: []domain.MaterializationFailure{},
	}
	for i, res := range results {
		err := errs[i]
		// Deactivated between listing and locking.
		if errors.Is(err, apperrors.ErrRecurrenceInactive) {
			continue
		}
		if res != nil {
			batch.Results = append(batch.Results, *res)
		}
		if err != nil {
			batch.Failures = append(batch.Failures, domain.MaterializationFailure{
				RecurrenceID: recurrences[i].RecurrenceID,
				Err:          err,
			})
		}
	}

	s.LogInfo(ctx, "Materialized owner recurrences",
		slog.String("owner_id", ownerID),
		slog.String("as_of", target.String()),
		slog.Int("recurrences", len(recurrences)),
		slog.Int("created", batch.CreatedCount()),
		slog.Int("failures", len(batch.Failures)))
	return batch, nil
}

// resolveAsOf defaults to today and never goes past it.
func (s *MaterializationService) resolveAsOf(asOf *domain.Date) domain.Date {
	today := s.Today()
	if asOf == nil || asOf.After(today) {
		return today
	}
	return *asOf
}

func (s *MaterializationService) publish(ctx context.Context, ownerID string, result domain.MaterializationResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMaterialized(ctx, ownerID, result); err != nil {
		s.LogError(ctx, err, "Failed to publish materialization event",
			slog.String("recurrence_id", result.RecurrenceID),
			slog.Int("created", len(result.Created)))
	}
}

func optionalDate(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
