package dto

import (
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ProjectionQuery are the query parameters of a projection request.
type ProjectionQuery struct {
	OwnerID     string `form:"ownerId" binding:"required"`
	PeriodStart string `form:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `form:"periodEnd" binding:"required,datetime=2006-01-02"`
}

// ProjectedOccurrenceResponse is one forecast entry.
type ProjectedOccurrenceResponse struct {
	SourceType   domain.SourceType `json:"sourceType"`
	SourceID     string            `json:"sourceId"`
	DueDate      domain.Date       `json:"dueDate"`
	Amount       decimal.Decimal   `json:"amount"`
	Direction    domain.Direction  `json:"direction"`
	CategoryName string            `json:"categoryName"`
}

// ProjectionResponse is the forecast of a period.
type ProjectionResponse struct {
	Occurrences []ProjectedOccurrenceResponse `json:"occurrences"`
	Degraded    bool                          `json:"degraded"` // Debt installments could not be read
}

// ToProjectionResponse converts a domain.Projection.
func ToProjectionResponse(p *domain.Projection) ProjectionResponse {
	occ := make([]ProjectedOccurrenceResponse, len(p.Occurrences))
	for i, o := range p.Occurrences {
		occ[i] = ProjectedOccurrenceResponse{
			SourceType:   o.SourceType,
			SourceID:     o.SourceID,
			DueDate:      o.DueDate,
			Amount:       o.Amount,
			Direction:    o.Direction,
			CategoryName: o.CategoryName,
		}
	}
	return ProjectionResponse{Occurrences: occ, Degraded: p.Degraded}
}
