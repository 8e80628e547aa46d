package events

import (
	"context"
	"log/slog"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
)

// LogPublisher stands in when no broker is configured. It only logs.
type LogPublisher struct {
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishMaterialized(ctx context.Context, ownerID string, result domain.MaterializationResult) error {
	p.logger.DebugContext(ctx, "Materialization event (no broker configured)",
		slog.String("owner_id", ownerID),
		slog.String("recurrence_id", result.RecurrenceID),
		slog.Int("transactions", len(result.Created)))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
