package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/SscSPs/money_recurrence/internal/middleware"
)

// Clock returns the current instant. Injected so due-date decisions are deterministic in tests.
type Clock func() time.Time

// BaseService provides common functionality for all services
type BaseService struct {
	Clock Clock
}

// GetLogger returns the request-scoped logger carried by ctx, or slog.Default.
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	if logger := middleware.GetLoggerFromCtx(ctx); logger != nil {
		return logger
	}
	return slog.Default()
}

// LogError logs msg at error level with err attached as "error".
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	s.logWithError(ctx, slog.LevelError, err, msg, keyvals)
}

// LogWarn is LogError at warning level.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	s.logWithError(ctx, slog.LevelWarn, err, msg, keyvals)
}

func (s *BaseService) logWithError(ctx context.Context, level slog.Level, err error, msg string, keyvals []any) {
	args := append([]any{slog.String("error", err.Error())}, keyvals...)
	s.GetLogger(ctx).Log(ctx, level, msg, args...)
}

func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the current time from the injected clock, falling back to time.Now.
func (s *BaseService) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// Today returns the current calendar date in UTC.
func (s *BaseService) Today() domain.Date {
	return domain.DateOf(s.Now())
}
