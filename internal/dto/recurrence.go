package dto

import (
	"time"

	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRecurrenceRequest defines the data needed to create a new recurrence.
type CreateRecurrenceRequest struct {
	Description  string          `json:"description" binding:"max=255"`
	Amount       decimal.Decimal `json:"amount"` // Signed, at most two decimal places
	Direction    string          `json:"direction" binding:"required,direction"`
	Frequency    string          `json:"frequency" binding:"required,frequency"`
	StartDate    domain.Date     `json:"startDate"`
	EndDate      *domain.Date    `json:"endDate"`      // Optional, open-ended when absent
	CategoryID   *string         `json:"categoryID"`   // Optional
	SourceDebtID *string         `json:"sourceDebtID"` // Optional, set when converting a debt
	IsActive     *bool           `json:"isActive"`     // Optional, defaults to true
}

// RecurrenceResponse defines the data returned for a recurrence.
type RecurrenceResponse struct {
	RecurrenceID         string                  `json:"recurrenceID"`
	OwnerID              string                  `json:"ownerID"`
	Description          string                  `json:"description"`
	Amount               decimal.Decimal         `json:"amount"`
	Direction            domain.Direction        `json:"direction"`
	Frequency            domain.Frequency        `json:"frequency"`
	StartDate            domain.Date             `json:"startDate"`
	EndDate              *domain.Date            `json:"endDate,omitempty"`
	IsActive             bool                    `json:"isActive"`
	Status               domain.RecurrenceStatus `json:"status"`
	CategoryID           *string                 `json:"categoryID,omitempty"`
	CategoryName         string                  `json:"categoryName"`
	SourceDebtID         *string                 `json:"sourceDebtID,omitempty"`
	LastMaterializedDate *domain.Date            `json:"lastMaterializedDate,omitempty"`
	NextDueDate          *domain.Date            `json:"nextDueDate,omitempty"` // Absent once expired
	CreatedAt            time.Time               `json:"createdAt"`
	CreatedBy            string                  `json:"createdBy"`
	LastUpdatedAt        time.Time               `json:"lastUpdatedAt"`
	LastUpdatedBy        string                  `json:"lastUpdatedBy"`
}

// ListRecurrencesResponse wraps a list of recurrences.
type ListRecurrencesResponse struct {
	Recurrences []RecurrenceResponse `json:"recurrences"`
}

// ToRecurrenceResponse converts a domain.Recurrence to a RecurrenceResponse.
// nextDue is the next unmaterialized due date, nil when there is none.
func ToRecurrenceResponse(r *domain.Recurrence, asOf domain.Date, nextDue *domain.Date) RecurrenceResponse {
	return RecurrenceResponse{
		RecurrenceID:         r.RecurrenceID,
		OwnerID:              r.OwnerID,
		Description:          r.Description,
		Amount:               r.Amount,
		Direction:            r.Direction,
		Frequency:            r.Frequency,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		IsActive:             r.IsActive,
		Status:               r.Status(asOf),
		CategoryID:           r.CategoryID,
		CategoryName:         r.CategoryName,
		SourceDebtID:         r.SourceDebtID,
		LastMaterializedDate: r.LastMaterializedDate,
		NextDueDate:          nextDue,
		CreatedAt:            r.CreatedAt,
		CreatedBy:            r.CreatedBy,
		LastUpdatedAt:        r.LastUpdatedAt,
		LastUpdatedBy:        r.LastUpdatedBy,
	}
}

// TransactionResponse defines the data returned for a materialized transaction.
type TransactionResponse struct {
	TransactionID string           `json:"transactionID"`
	RecurrenceID  *string          `json:"recurrenceID,omitempty"`
	DueDate       domain.Date      `json:"dueDate"`
	OccurredDate  domain.Date      `json:"occurredDate"`
	Amount        decimal.Decimal  `json:"amount"`
	Direction     domain.Direction `json:"direction"`
	CategoryID    *string          `json:"categoryID,omitempty"`
	Description   string           `json:"description"`
	CreatedAt     time.Time        `json:"createdAt"`
	CreatedBy     string           `json:"createdBy"`
}

// ListTransactionsResponse wraps a list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionResponse converts a domain.Transaction to a TransactionResponse.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		RecurrenceID:  t.RecurrenceID,
		DueDate:       t.DueDate,
		OccurredDate:  t.OccurredDate,
		Amount:        t.Amount,
		Direction:     t.Direction,
		CategoryID:    t.CategoryID,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
}

// ToListTransactionsResponse converts a slice of transactions.
func ToListTransactionsResponse(txns []domain.Transaction) ListTransactionsResponse {
	list := make([]TransactionResponse, len(txns))
	for i := range txns {
		list[i] = ToTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{Transactions: list}
}
