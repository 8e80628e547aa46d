package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DebtInstallment is a scheduled repayment of a debt, read for projections.
type DebtInstallment struct {
	InstallmentID         string          `json:"installmentID"`
	DebtID                string          `json:"debtID"`
	OwnerID               string          `json:"ownerID"`
	DueDate               Date            `json:"dueDate"`
	Amount                decimal.Decimal `json:"amount"`
	Direction             Direction       `json:"direction"`
	CategoryName          string          `json:"categoryName"`
	IsPaid                bool            `json:"isPaid"`
	ConvertedRecurrenceID *string         `json:"convertedRecurrenceID,omitempty"` // Set once the installment became a recurrence
}

// SourceType identifies where a projected occurrence comes from.
type SourceType string

const (
	SourceRecurrence      SourceType = "RECURRENCE"
	SourceDebtInstallment SourceType = "DEBT_INSTALLMENT"
)

// ProjectedOccurrence is a forecast entry. It is never persisted.
type ProjectedOccurrence struct {
	SourceType   SourceType      `json:"sourceType"`
	SourceID     string          `json:"sourceID"`
	DueDate      Date            `json:"dueDate"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    Direction       `json:"direction"`
	CategoryName string          `json:"categoryName"`
}

// OccurrenceKey is the stable identity of a projected occurrence, derived
// from the source record ID and never from amount or date coincidence.
type OccurrenceKey struct {
	SourceType SourceType
	SourceID   string
	DueDate    string
}

// Key returns the identity of the occurrence.
func (o ProjectedOccurrence) Key() OccurrenceKey {
	return OccurrenceKey{SourceType: o.SourceType, SourceID: o.SourceID, DueDate: o.DueDate.String()}
}

// SortOccurrences orders by due date, then Income before Expense, keeping
// the input order for ties.
func SortOccurrences(occ []ProjectedOccurrence) {
	sort.SliceStable(occ, func(i, j int) bool {
		if !occ[i].DueDate.Equal(occ[j].DueDate) {
			return occ[i].DueDate.Before(occ[j].DueDate)
		}
		return occ[i].Direction.rank() < occ[j].Direction.rank()
	})
}

// Projection is the result of projecting an owner's period.
// Degraded is set when debt installments could not be read.
type Projection struct {
	OwnerID     string                `json:"ownerID"`
	PeriodStart Date                  `json:"periodStart"`
	PeriodEnd   Date                  `json:"periodEnd"`
	Occurrences []ProjectedOccurrence `json:"occurrences"`
	Degraded    bool                  `json:"degraded"`
}
