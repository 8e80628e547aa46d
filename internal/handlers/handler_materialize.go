package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/dto"
	"github.com/SscSPs/money_recurrence/internal/middleware"
	"github.com/gin-gonic/gin"
)

// materializeHandler handles HTTP requests that create due transactions.
type materializeHandler struct {
	materializationService portssvc.MaterializationSvc
}

func newMaterializeHandler(ms portssvc.MaterializationSvc) *materializeHandler {
	return &materializeHandler{materializationService: ms}
}

func registerMaterializeRoutes(rg *gin.RouterGroup, ms portssvc.MaterializationSvc) {
	h := newMaterializeHandler(ms)
	rg.POST("/materialize", h.materialize)
}

// materialize godoc
// @Summary Materialize due recurring transactions
// @Description Creates exactly one transaction per due date that has not been materialized yet, up to asOfDate (default today, never later). Without recurrenceId every active recurrence of the owner is processed and per-recurrence failures are listed instead of failing the call.
// @Tags materialization
// @Accept  json
// @Produce  json
// @Param   request body dto.MaterializeRequest true "Owner, optional recurrence and as-of date"
// @Success 200 {object} dto.MaterializeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Recurrence not found"
// @Failure 409 {object} dto.MaterializeResponse "Recurrence inactive or concurrently modified"
// @Failure 503 {object} dto.MaterializeResponse "Storage unavailable, partial progress is kept"
// @Router /materialize [post]
func (h *materializeHandler) materialize(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Materialize", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	middleware.SetOwnerID(c, req.OwnerID)
	logger = logger.With(slog.String("owner_id", req.OwnerID))
	ctx := middleware.WithLogger(c.Request.Context(), logger)

	if req.RecurrenceID == nil {
		batch, err := h.materializationService.MaterializeAll(ctx, req.OwnerID, req.AsOfDate)
		if err != nil {
			respondError(c, logger, err, "Failed to materialize recurrences")
			return
		}
		c.JSON(http.StatusOK, dto.ToBatchMaterializeResponse(batch))
		return
	}

	recurrenceID := *req.RecurrenceID
	logger = logger.With(slog.String("recurrence_id", recurrenceID))
	result, err := h.materializationService.MaterializeRecurrence(ctx, req.OwnerID, recurrenceID, req.AsOfDate)
	if err != nil {
		if result == nil {
			respondError(c, logger, err, "Failed to materialize recurrence")
			return
		}
		// Report what was written before the failure; it stays written.
		logger.Warn("Materialization stopped early", slog.String("error", err.Error()), slog.Int("created", len(result.Created)))
		resp := dto.ToMaterializeResponse(result)
		resp.Failures = append(resp.Failures, dto.MaterializeFailureResponse{RecurrenceID: recurrenceID, Error: publicError(err)})
		c.JSON(apperrors.HTTPStatus(err), resp)
		return
	}

	logger.Info("Materialized recurrence", slog.Int("created", len(result.Created)))
	c.JSON(http.StatusOK, dto.ToMaterializeResponse(result))
}
