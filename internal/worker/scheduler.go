// Package worker runs materialization on a timer for every owner that has
// active recurrences.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
)

// OwnerLister is the one storage call the scheduler needs.
type OwnerLister interface {
	ListActiveOwnerIDs(ctx context.Context) ([]string, error)
}

var _ OwnerLister = (portsrepo.RecurrenceReader)(nil)

// TickSummary reports what one pass over all owners did.
type TickSummary struct {
	Owners   int
	Created  int
	Failures int
}

type Scheduler struct {
	owners   OwnerLister
	svc      portssvc.MaterializationSvc
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(owners OwnerLister, svc portssvc.MaterializationSvc, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{owners: owners, svc: svc, interval: interval, logger: logger}
}

// Run processes once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Running initial recurrence materialization...", slog.Duration("interval", s.interval))
	s.logSummary(s.Tick(ctx))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping recurrence scheduler", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			s.logSummary(s.Tick(ctx))
		}
	}
}

// Tick materializes everything due for every active owner. One owner's
// failure does not stop the others.
func (s *Scheduler) Tick(ctx context.Context) TickSummary {
	var summary TickSummary

	owners, err := s.owners.ListActiveOwnerIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list owners with active recurrences", slog.String("error", err.Error()))
		summary.Failures++
		return summary
	}
	summary.Owners = len(owners)

	for _, ownerID := range owners {
		if ctx.Err() != nil {
			break
		}
		batch, err := s.svc.MaterializeAll(ctx, ownerID, nil)
		if err != nil {
			s.logger.Error("Scheduled materialization failed",
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()))
			summary.Failures++
			continue
		}
		summary.Created += batch.CreatedCount()
		summary.Failures += len(batch.Failures)
		s.logFailures(ownerID, batch.Failures)
	}
	return summary
}

func (s *Scheduler) logFailures(ownerID string, failures []domain.MaterializationFailure) {
	for _, f := range failures {
		s.logger.Warn("Recurrence not materialized",
			slog.String("owner_id", ownerID),
			slog.String("recurrence_id", f.RecurrenceID),
			slog.String("error", f.Err.Error()))
	}
}

func (s *Scheduler) logSummary(summary TickSummary) {
	s.logger.Info("Recurrence materialization pass complete",
		slog.Int("owners", summary.Owners),
		slog.Int("created", summary.Created),
		slog.Int("failures", summary.Failures),
		slog.String("next_run", time.Now().Add(s.interval).Format("15:04:05")))
}
