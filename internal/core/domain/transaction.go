package domain

import "github.com/shopspring/decimal"

// Transaction is a concrete, persisted financial entry. Entries spawned by a
// recurrence carry its ID; manual entries leave RecurrenceID nil.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	OwnerID       string          `json:"ownerID"`
	RecurrenceID  *string         `json:"recurrenceID,omitempty"` // Unique together with DueDate
	DueDate       Date            `json:"dueDate"`
	OccurredDate  Date            `json:"occurredDate"`
	Amount        decimal.Decimal `json:"amount"` // Copied from the recurrence at creation time
	Direction     Direction       `json:"direction"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	Description   string          `json:"description"`
	AuditFields
}

// NewRecurringTransaction copies the recurrence values onto a transaction for
// the given due date. IDs and audit fields are left to the caller.
func NewRecurringTransaction(r Recurrence, dueDate Date) Transaction {
	recurrenceID := r.RecurrenceID
	var categoryID *string
	if r.CategoryID != nil {
		c := *r.CategoryID
		categoryID = &c
	}
	return Transaction{
		OwnerID:      r.OwnerID,
		RecurrenceID: &recurrenceID,
		DueDate:      dueDate,
		OccurredDate: dueDate,
		Amount:       r.Amount.Round(2),
		Direction:    r.Direction,
		CategoryID:   categoryID,
		Description:  r.Description,
	}
}

// MaterializationResult reports what one materialization call created.
type MaterializationResult struct {
	RecurrenceID         string        `json:"recurrenceID"`
	Created              []Transaction `json:"created"`
	LastMaterializedDate *Date         `json:"lastMaterializedDate,omitempty"`
}

// CreatedIDs lists the IDs of the created transactions in due date order.
func (r *MaterializationResult) CreatedIDs() []string {
	ids := make([]string, 0, len(r.Created))
	for _, t := range r.Created {
		ids = append(ids, t.TransactionID)
	}
	return ids
}

// MaterializationFailure records a recurrence that could not be fully
// materialized during a batch run.
type MaterializationFailure struct {
	RecurrenceID string `json:"recurrenceID"`
	Err          error  `json:"-"`
}

// BatchMaterializationResult aggregates a run across many recurrences.
type BatchMaterializationResult struct {
	Results  []MaterializationResult  `json:"results"`
	Failures []MaterializationFailure `json:"failures"`
}

// CreatedCount is the total number of transactions created in the batch.
func (b *BatchMaterializationResult) CreatedCount() int {
	n := 0
	for _, r := range b.Results {
		n += len(r.Created)
	}
	return n
}

// CreatedIDs lists every created transaction ID, grouped by recurrence.
func (b *BatchMaterializationResult) CreatedIDs() []string {
	ids := make([]string, 0, b.CreatedCount())
	for i := range b.Results {
		ids = append(ids, b.Results[i].CreatedIDs()...)
	}
	return ids
}
