package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Frequency is the repetition unit of a recurrence.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// Frequencies lists every supported frequency in ascending unit size.
var Frequencies = []Frequency{Daily, Weekly, Monthly, Yearly}

// ParseFrequency maps a case-insensitive string onto the closed set of
// frequencies. Unknown values fail with apperrors.ErrInvalidFrequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidFrequency, s)
	}
	return f, nil
}

// IsValid reports whether f is one of the supported frequencies.
func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Direction tells whether money comes in or goes out.
type Direction string

const (
	Income  Direction = "INCOME"
	Expense Direction = "EXPENSE"
)

// ParseDirection maps a case-insensitive string onto a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: invalid direction %q", apperrors.ErrValidation, s)
	}
	return d, nil
}

// IsValid reports whether d is Income or Expense.
func (d Direction) IsValid() bool {
	return d == Income || d == Expense
}

// rank orders Income before Expense.
func (d Direction) rank() int {
	if d == Income {
		return 0
	}
	return 1
}

// RecurrenceStatus is the derived lifecycle state of a recurrence.
type RecurrenceStatus string

const (
	StatusActive   RecurrenceStatus = "ACTIVE"
	StatusInactive RecurrenceStatus = "INACTIVE"
	StatusExpired  RecurrenceStatus = "EXPIRED"
)

// Recurrence is a template describing a repeating financial entry.
type Recurrence struct {
	RecurrenceID         string          `json:"recurrenceID"`
	OwnerID              string          `json:"ownerID"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Direction            Direction       `json:"direction"`
	Frequency            Frequency       `json:"frequency"`
	StartDate            Date            `json:"startDate"`
	EndDate              *Date           `json:"endDate,omitempty"`
	IsActive             bool            `json:"isActive"`
	CategoryID           *string         `json:"categoryID,omitempty"`
	CategoryName         string          `json:"categoryName"`           // Read side only, joined from categories
	SourceDebtID         *string         `json:"sourceDebtID,omitempty"` // Debt this recurrence was converted from
	LastMaterializedDate *Date           `json:"lastMaterializedDate,omitempty"`
	AuditFields
}

// Status derives the lifecycle state as of the given date.
// Expired is terminal and wins over the active flag.
func (r Recurrence) Status(asOf Date) RecurrenceStatus {
	if r.EndDate != nil && asOf.After(*r.EndDate) {
		return StatusExpired
	}
	if !r.IsActive {
		return StatusInactive
	}
	return StatusActive
}

// MaterializedThrough returns the exclusive lower bound for the next batch of
// due dates: the last materialized date, or the day before the start date.
func (r Recurrence) MaterializedThrough() Date {
	if r.LastMaterializedDate != nil {
		return *r.LastMaterializedDate
	}
	return r.StartDate.AddDays(-1)
}

// ClampToEnd bounds d by the recurrence end date, if any.
func (r Recurrence) ClampToEnd(d Date) Date {
	if r.EndDate != nil {
		return MinDate(d, *r.EndDate)
	}
	return d
}

// Validate checks the invariants a recurrence must hold before it is stored.
func (r Recurrence) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: owner ID is required", apperrors.ErrValidation)
	}
	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidFrequency, r.Frequency)
	}
	if !r.Direction.IsValid() {
		return fmt.Errorf("%w: invalid direction %q", apperrors.ErrValidation, r.Direction)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", apperrors.ErrValidation)
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", apperrors.ErrValidation, r.EndDate, r.StartDate)
	}
	if r.Amount.IsZero() {
		return fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
	}
	if !r.Amount.Equal(r.Amount.Round(2)) {
		return fmt.Errorf("%w: amount %s has more than two decimal places", apperrors.ErrValidation, r.Amount)
	}
	if r.LastMaterializedDate != nil && r.LastMaterializedDate.Before(r.StartDate) {
		return fmt.Errorf("%w: last materialized date precedes start date", apperrors.ErrValidation)
	}
	return nil
}
