package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/core/schedule"
)

// ProjectionService forecasts an owner's occurrences over a period. It only reads.
type ProjectionService struct {
	BaseService
	recurrenceRepo portsrepo.RecurrenceReader
	debtRepo       portsrepo.DebtInstallmentReader
}

// NewProjectionService creates a new projection service. debtRepo may be nil,
// in which case only recurrences are projected.
func NewProjectionService(recurrenceRepo portsrepo.RecurrenceReader, debtRepo portsrepo.DebtInstallmentReader) *ProjectionService {
	return &ProjectionService{
		recurrenceRepo: recurrenceRepo,
		debtRepo:       debtRepo,
	}
}

var _ portssvc.ProjectionSvc = (*ProjectionService)(nil)

// ProjectPeriod lists the occurrences expected in [periodStart, periodEnd]:
// the not yet materialized due dates of every active recurrence, plus the
// pending debt installments that were not converted into a recurrence.
func (s *ProjectionService) ProjectPeriod(ctx context.Context, ownerID string, periodStart, periodEnd domain.Date) (*domain.Projection, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner ID is required", apperrors.ErrValidation)
	}
	if periodEnd.Before(periodStart) {
		return nil, fmt.Errorf("%w: period end %s is before period start %s", apperrors.ErrInvalidRange, periodEnd, periodStart)
	}

	recurrences, err := s.recurrenceRepo.ListActiveRecurrences(ctx, ownerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recurrences for projection",
			slog.String("owner_id", ownerID))
		return nil, err
	}

	projection := &domain.Projection{
		OwnerID:     ownerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Occurrences: []domain.ProjectedOccurrence{},
	}
	seen := make(map[domain.OccurrenceKey]struct{})
	add := func(o domain.ProjectedOccurrence) {
		key := o.Key()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		projection.Occurrences = append(projection.Occurrences, o)
	}

	convertedDebts := make(map[string]struct{})
	for _, r := range recurrences {
		if !r.IsActive {
			continue
		}
		if r.SourceDebtID != nil {
			convertedDebts[*r.SourceDebtID] = struct{}{}
		}

		from := domain.MaxDate(periodStart.AddDays(-1), r.MaterializedThrough())
		to := r.ClampToEnd(periodEnd)
		if !to.After(from) {
			continue
		}

		dueDates, err := schedule.DueDatesBetween(r.StartDate, r.Frequency, from, to)
		if err != nil {
			s.LogWarn(ctx, err, "Skipping recurrence with unusable schedule",
				slog.String("recurrence_id", r.RecurrenceID))
			projection.Degraded = true
			continue
		}
		for _, due := range dueDates {
			add(domain.ProjectedOccurrence{
				SourceType:   domain.SourceRecurrence,
				SourceID:     r.RecurrenceID,
				DueDate:      due,
				Amount:       r.Amount,
				Direction:    r.Direction,
				CategoryName: r.CategoryName,
			})
		}
	}

	if s.debtRepo != nil {
		installments, err := s.debtRepo.ListPendingDebtInstallments(ctx, ownerID, periodStart, periodEnd)
		if err != nil {
			// Projection is advisory, fall back to recurrences only.
			s.LogWarn(ctx, err, "Failed to read debt installments, projecting recurrences only",
				slog.String("owner_id", ownerID))
			projection.Degraded = true
		} else {
			for _, inst := range installments {
				if inst.IsPaid || inst.ConvertedRecurrenceID != nil {
					continue
				}
				if _, converted := convertedDebts[inst.DebtID]; converted {
					continue
				}
				if inst.DueDate.Before(periodStart) || inst.DueDate.After(periodEnd) {
					continue
				}
				add(domain.ProjectedOccurrence{
					SourceType:   domain.SourceDebtInstallment,
					SourceID:     inst.InstallmentID,
					DueDate:      inst.DueDate,
					Amount:       inst.Amount,
					Direction:    inst.Direction,
					CategoryName: inst.CategoryName,
				})
			}
		}
	}

	domain.SortOccurrences(projection.Occurrences)

	s.LogDebug(ctx, "Projected period",
		slog.String("owner_id", ownerID),
		slog.String("period_start", periodStart.String()),
		slog.String("period_end", periodEnd.String()),
		slog.Int("occurrences", len(projection.Occurrences)),
		slog.Bool("degraded", projection.Degraded))
	return projection, nil
}
