package dto

import (
	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// MaterializeRequest triggers materialization of one or all due recurrences of an owner.
type MaterializeRequest struct {
	OwnerID      string       `json:"ownerId" binding:"required"`
	RecurrenceID *string      `json:"recurrenceId"` // Omit to materialize every active recurrence
	AsOfDate     *domain.Date `json:"asOfDate"`     // Omit for today
}

// MaterializeFailureResponse describes one recurrence that did not fully materialize.
type MaterializeFailureResponse struct {
	RecurrenceID string `json:"recurrenceId"`
	Error        string `json:"error"`
}

// MaterializeResponse reports the transactions created by a materialization call.
type MaterializeResponse struct {
	CreatedCount int                          `json:"createdCount"`
	CreatedIDs   []string                     `json:"createdIds"`
	Failures     []MaterializeFailureResponse `json:"failures"`
}

// ToMaterializeResponse converts a single recurrence result.
func ToMaterializeResponse(r *domain.MaterializationResult) MaterializeResponse {
	return MaterializeResponse{
		CreatedCount: len(r.Created),
		CreatedIDs:   r.CreatedIDs(),
		Failures:     []MaterializeFailureResponse{},
	}
}

// ToBatchMaterializeResponse converts a batch result.
func ToBatchMaterializeResponse(b *domain.BatchMaterializationResult) MaterializeResponse {
	failures := make([]MaterializeFailureResponse, 0, len(b.Failures))
	for _, f := range b.Failures {
		failures = append(failures, MaterializeFailureResponse{RecurrenceID: f.RecurrenceID, Error: f.Err.Error()})
	}
	return MaterializeResponse{
		CreatedCount: b.CreatedCount(),
		CreatedIDs:   b.CreatedIDs(),
		Failures:     failures,
	}
}
