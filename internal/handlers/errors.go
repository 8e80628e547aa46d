package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": ...} with the status apperrors maps it to.
// Server-side failures get fallback instead of the internal message.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		msg := fallback
		if status == http.StatusServiceUnavailable {
			msg = "Storage temporarily unavailable, please retry"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

// publicError is the message a client may see for err.
func publicError(err error) string {
	switch apperrors.HTTPStatus(err) {
	case http.StatusInternalServerError:
		return "internal error"
	case http.StatusServiceUnavailable:
		return "storage temporarily unavailable"
	}
	return err.Error()
}
