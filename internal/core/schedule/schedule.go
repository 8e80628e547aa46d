// Package schedule computes due dates of recurrences.
//
// Every frequency is expressed as a Stepper: a function from an anchor date
// and an occurrence index k to the k-th due date. Indices are always
// computed from the anchor so that month-end clamping never drifts: a
// recurrence anchored on Jan 31 lands on Feb 29 and then back on Mar 31.
package schedule

import (
	"fmt"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
)

// Stepper is the strategy interface for one frequency.
type Stepper interface {
	// Nth returns the k-th occurrence (k >= 0) of a recurrence anchored at start.
	Nth(start domain.Date, k int) domain.Date
	// FirstIndexAfter returns the smallest k >= 0 with Nth(start, k) > d.
	FirstIndexAfter(start, d domain.Date) int
}

// fixedStepper steps by a fixed number of days.
type fixedStepper struct {
	days int
}

func (s fixedStepper) Nth(start domain.Date, k int) domain.Date {
	return start.AddDays(k * s.days)
}

func (s fixedStepper) FirstIndexAfter(start, d domain.Date) int {
	if d.Before(start) {
		return 0
	}
	return start.DaysUntil(d)/s.days + 1
}

// monthStepper steps by a whole number of months, clamping to month end.
type monthStepper struct {
	months int
}

func (s monthStepper) Nth(start domain.Date, k int) domain.Date {
	return AddMonthsClamped(start, k*s.months)
}

func (s monthStepper) FirstIndexAfter(start, d domain.Date) int {
	if d.Before(start) {
		return 0
	}
	elapsed := (d.Year()-start.Year())*12 + int(d.Month()) - int(start.Month())
	k := elapsed / s.months
	if k < 0 {
		k = 0
	}
	// The estimate is off by at most one in either direction because of clamping.
	for k > 0 && s.Nth(start, k-1).After(d) {
		k--
	}
	for !s.Nth(start, k).After(d) {
		k++
	}
	return k
}

var steppers = map[domain.Frequency]Stepper{
	domain.Daily:   fixedStepper{days: 1},
	domain.Weekly:  fixedStepper{days: 7},
	domain.Monthly: monthStepper{months: 1},
	domain.Yearly:  monthStepper{months: 12},
}

// StepperFor returns the strategy for a frequency.
func StepperFor(f domain.Frequency) (Stepper, error) {
	s, ok := steppers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidFrequency, f)
	}
	return s, nil
}

// AddMonthsClamped adds n months to d keeping its day of month, or the last
// day of the target month when that day does not exist there.
func AddMonthsClamped(d domain.Date, n int) domain.Date {
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return domain.NewDate(first.Year(), first.Month(), day)
}

// DueDatesBetween lists the occurrences of a recurrence anchored at start
// that fall in (fromExclusive, toInclusive], in ascending order.
// Nothing before start is ever returned.
func DueDatesBetween(start domain.Date, f domain.Frequency, fromExclusive, toInclusive domain.Date) ([]domain.Date, error) {
	stepper, err := StepperFor(f)
	if err != nil {
		return nil, err
	}
	if fromExclusive.After(toInclusive) {
		return nil, fmt.Errorf("%w: from %s is after to %s", apperrors.ErrInvalidRange, fromExclusive, toInclusive)
	}

	var dates []domain.Date
	for k := stepper.FirstIndexAfter(start, fromExclusive); ; k++ {
		d := stepper.Nth(start, k)
		if d.After(toInclusive) {
			break
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// NextDueDate returns the first occurrence strictly after the given date.
func NextDueDate(start domain.Date, f domain.Frequency, after domain.Date) (domain.Date, error) {
	stepper, err := StepperFor(f)
	if err != nil {
		return domain.Date{}, err
	}
	return stepper.Nth(start, stepper.FirstIndexAfter(start, after)), nil
}
