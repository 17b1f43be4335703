// Package datetime provides date utilities for schedule generation.
package datetime

import (
	"time"

	"github.com/nmendoza-ar/credit-simulator/pkg/constants"
)

// DateTimeLayout is the output format for schedule due dates.
const DateTimeLayout = constants.DateTimeLayout

// Scheduler derives due dates for schedule periods from an explicit reference
// date. The simulation engine takes one of these as an optional collaborator
// so that it never reads the system clock itself.
type Scheduler struct {
	reference time.Time
}

// NewScheduler returns a Scheduler anchored at the given reference date.
func NewScheduler(reference time.Time) *Scheduler {
	return &Scheduler{reference: reference}
}

// Reference returns the anchor date of the scheduler.
func (s *Scheduler) Reference() time.Time {
	return s.reference
}

// DueDate returns the due date for the given period: reference + 30 days per
// period.
func (s *Scheduler) DueDate(period int) time.Time {
	return s.reference.AddDate(0, 0, constants.DueDateIntervalDays*period)
}

// DueDateString returns the due date for the given period formatted with
// DateTimeLayout.
func (s *Scheduler) DueDateString(period int) string {
	return s.DueDate(period).Format(DateTimeLayout)
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}
