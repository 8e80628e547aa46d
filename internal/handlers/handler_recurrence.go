package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portssvc "github.com/SscSPs/money_recurrence/internal/core/ports/services"
	"github.com/SscSPs/money_recurrence/internal/core/schedule"
	"github.com/SscSPs/money_recurrence/internal/dto"
	"github.com/SscSPs/money_recurrence/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recurrenceHandler handles HTTP requests related to recurrence definitions.
type recurrenceHandler struct {
	recurrenceService portssvc.RecurrenceSvcFacade
	now               func() time.Time
}

func newRecurrenceHandler(rs portssvc.RecurrenceSvcFacade, now func() time.Time) *recurrenceHandler {
	return &recurrenceHandler{recurrenceService: rs, now: now}
}

// registerRecurrenceRoutes registers routes related to recurrences.
func registerRecurrenceRoutes(rg *gin.RouterGroup, rs portssvc.RecurrenceSvcFacade, now func() time.Time) {
	h := newRecurrenceHandler(rs, now)

	recurrences := rg.Group("/owners/:ownerId/recurrences")
	{
		recurrences.GET("", h.listRecurrences)
		recurrences.POST("", h.createRecurrence)
		recurrences.GET("/:recurrenceId", h.getRecurrence)
		recurrences.POST("/:recurrenceId/activate", h.activateRecurrence)
		recurrences.POST("/:recurrenceId/deactivate", h.deactivateRecurrence)
		recurrences.GET("/:recurrenceId/transactions", h.listRecurrenceTransactions)
	}
}

func (h *recurrenceHandler) today() domain.Date {
	return domain.DateOf(h.now().UTC())
}

// nextDueDate is the first date the next materialization would create, nil
// when the recurrence has run past its end date.
func nextDueDate(r *domain.Recurrence) *domain.Date {
	next, err := schedule.NextDueDate(r.StartDate, r.Frequency, r.MaterializedThrough())
	if err != nil {
		return nil
	}
	if r.EndDate != nil && next.After(*r.EndDate) {
		return nil
	}
	return &next
}

func (h *recurrenceHandler) toResponse(r *domain.Recurrence) dto.RecurrenceResponse {
	return dto.ToRecurrenceResponse(r, h.today(), nextDueDate(r))
}

// listRecurrences godoc
// @Summary List recurrences
// @Description Lists every recurrence of the owner, active or not, with its derived status and next due date
// @Tags recurrences
// @Produce  json
// @Param   ownerId path string true "Owner ID"
// @Success 200 {object} dto.ListRecurrencesResponse
// @Failure 500 {object} map[string]string "Failed to list recurrences"
// @Router /owners/{ownerId}/recurrences [get]
func (h *recurrenceHandler) listRecurrences(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	ownerID := c.Param("ownerId")

	recurrences, err := h.recurrenceService.ListRecurrences(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, logger, err, "Failed to list recurrences")
		return
	}

	resp := dto.ListRecurrencesResponse{Recurrences: make([]dto.RecurrenceResponse, len(recurrences))}
	for i := range recurrences {
		resp.Recurrences[i] = h.toResponse(&recurrences[i])
	}
	c.JSON(http.StatusOK, resp)
}

// createRecurrence godoc
// @Summary Create a recurrence
// @Description Defines a new recurring income or expense for the owner
// @Tags recurrences
// @Accept  json
// @Produce  json
// @Param   ownerId path string true "Owner ID"
// @Param   recurrence body dto.CreateRecurrenceRequest true "Recurrence details"
// @Success 201 {object} dto.RecurrenceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Recurrence already exists"
// @Failure 500 {object} map[string]string "Failed to create recurrence"
// @Router /owners/{ownerId}/recurrences [post]
func (h *recurrenceHandler) createRecurrence(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	ownerID := c.Param("ownerId")

	var req dto.CreateRecurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRecurrence", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("owner_id", ownerID))
	logger.Info("Received request to create recurrence", slog.String("frequency", req.Frequency))

	ctx := middleware.WithLogger(c.Request.Context(), logger)
	created, err := h.recurrenceService.CreateRecurrence(ctx, ownerID, req, ownerID)
	if err != nil {
		respondError(c, logger, err, "Failed to create recurrence")
		return
	}

	logger.Info("Recurrence created successfully", slog.String("recurrence_id", created.RecurrenceID))
	c.JSON(http.StatusCreated, h.toResponse(created))
}

// getRecurrence godoc
// @Summary Get a recurrence
// @Tags recurrences
// @Produce  json
// @Param   ownerId path string true "Owner ID"
// @Param   recurrenceId path string true "Recurrence ID"
// @Success 200 {object} dto.RecurrenceResponse
// @Failure 404 {object} map[string]string "Recurrence not found"
// @Failure 500 {object} map[string]string "Failed to retrieve recurrence"
// @Router /owners/{ownerId}/recurrences/{recurrenceId} [get]
func (h *recurrenceHandler) getRecurrence(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	recurrence, err := h.recurrenceService.GetRecurrence(c.Request.Context(), c.Param("ownerId"), c.Param("recurrenceId"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve recurrence")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(recurrence))
}

// activateRecurrence godoc
// @Summary Re-enable a recurrence
// @Description Materialization resumes after the last materialized date; past dates are not re-created
// @Tags recurrences
// @Produce  json
// @Param   ownerId path string true "Owner ID"
// @Param   recurrenceId path string true "Recurrence ID"
// @Success 200 {object} dto.RecurrenceResponse
// @Failure 404 {object} map[string]string "Recurrence not found"
// @Router /owners/{ownerId}/recurrences/{recurrenceId}/activate [post]
func (h *recurrenceHandler) activateRecurrence(c *gin.Context) {
	h.setActive(c, true)
}

// deactivateRecurrence godoc
// @Summary Disable a recurrence
// @Description Stops materialization and projection; existing transactions remain
// @Tags recurrences
// @Produce  json
// @Param   ownerId path string true "Owner ID"
// @Param   recurrenceId path string true "Recurrence ID"
// @Success 200 {object} dto.RecurrenceResponse
// @Failure 404 {object} map[string]string "Recurrence not found"
// @Router /owners/{ownerId}/recurrences/{recurrenceId}/deactivate [post]
func (h *recurrenceHandler) deactivateRecurrence(c *gin.Context) {
	h.setActive(c, false)
}

func (h *recurrenceHandler) setActive(c *gin.Context, active bool) {
	ownerID := c.Param("ownerId")
	recurrenceID := c.Param("recurrenceId")
	logger := middleware.GetLoggerFromContext(c).With(
		slog.String("owner_id", ownerID),
		slog.String("recurrence_id", recurrenceID))

	ctx := middleware.WithLogger(c.Request.Context(), logger)
	recurrence, err := h.recurrenceService.SetRecurrenceActive(ctx, ownerID, recurrenceID, active, ownerID)
	if err != nil {
		respondError(c, logger, err, "Failed to update recurrence")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(recurrence))
}

// listRecurrenceTransactions godoc
// @Summary List materialized transactions of a recurrence
// @Tags recurrences
// @Produce  json
// @Param   ownerId path string true "Owner ID"
// @Param   recurrenceId path string true "Recurrence ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 404 {object} map[string]string "Recurrence not found"
// @Router /owners/{ownerId}/recurrences/{recurrenceId}/transactions [get]
func (h *recurrenceHandler) listRecurrenceTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	txns, err := h.recurrenceService.ListRecurrenceTransactions(c.Request.Context(), c.Param("ownerId"), c.Param("recurrenceId"))
	if err != nil {
		respondError(c, logger, err, "Failed to list recurrence transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}
