package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/dto"
	"github.com/SscSPs/money_recurrence/internal/middleware"
	"github.com/gin-gonic/gin"
)

type projectionHandler struct {
	projectionService portssvc.ProjectionSvc
}

func newProjectionHandler(ps portssvc.ProjectionSvc) *projectionHandler {
	return &projectionHandler{projectionService: ps}
}

// registerProjectionRoutes registers the read-only forecast. It is called on
// every dashboard render, hence the rate limit.
func registerProjectionRoutes(rg *gin.RouterGroup, ps portssvc.ProjectionSvc, limit gin.HandlerFunc) {
	h := newProjectionHandler(ps)
	rg.GET("/projection", limit, h.getProjection)
}

// getProjection godoc
// @Summary Project upcoming occurrences
// @Description Lists the recurring entries and pending debt installments expected in [periodStart, periodEnd] without writing anything. Dates that are already materialized are left out. degraded is true when debt installments could not be read.
// @Tags projection
// @Produce  json
// @Param   ownerId query string true "Owner ID"
// @Param   periodStart query string true "First day, YYYY-MM-DD"
// @Param   periodEnd query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} dto.ProjectionResponse
// @Failure 400 {object} map[string]string "Invalid input or range"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /projection [get]
func (h *projectionHandler) getProjection(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var q dto.ProjectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Invalid projection query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	start, err := domain.ParseDate(q.PeriodStart)
	if err != nil {
		respondError(c, logger, fmt.Errorf("%w: periodStart: %v", apperrors.ErrValidation, err), "Invalid period start")
		return
	}
	end, err := domain.ParseDate(q.PeriodEnd)
	if err != nil {
		respondError(c, logger, fmt.Errorf("%w: periodEnd: %v", apperrors.ErrValidation, err), "Invalid period end")
		return
	}

	logger = logger.With(slog.String("owner_id", q.OwnerID))
	ctx := middleware.WithLogger(c.Request.Context(), logger)
	projection, err := h.projectionService.ProjectPeriod(ctx, q.OwnerID, start, end)
	if err != nil {
		respondError(c, logger, err, "Failed to project period")
		return
	}

	logger.Debug("Projected period",
		slog.String("period_start", start.String()),
		slog.String("period_end", end.String()),
		slog.Int("occurrences", len(projection.Occurrences)),
		slog.Bool("degraded", projection.Degraded))
	c.JSON(http.StatusOK, dto.ToProjectionResponse(projection))
}
