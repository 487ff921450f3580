package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/feral-file/ff-balance/internal/domain"
)

// ErrInvalidPeriod is returned when a period cannot be resolved into a window
var ErrInvalidPeriod = fmt.Errorf("%w: invalid period", domain.ErrInvalidInput)

// Period names a reporting window
type Period string

const (
	PeriodAllTime   Period = "allTime"
	PeriodThisMonth Period = "thisMonth"
	PeriodLastMonth Period = "lastMonth"
	PeriodThisYear  Period = "thisYear"
	PeriodLastYear  Period = "lastYear"
	PeriodCustom    Period = "custom"
)

// Valid checks if the period name is known
func (p Period) Valid() bool {
	switch p {
	case PeriodAllTime, PeriodThisMonth, PeriodLastMonth, PeriodThisYear, PeriodLastYear, PeriodCustom:
		return true
	}
	return false
}

// PeriodSpec is a period name plus the bounds of a custom period
type PeriodSpec struct {
	Period Period     `json:"period"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

// Window is a resolved reporting window. Both bounds are inclusive.
// A nil bound is open, so the all-time window has neither.
type Window struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Contains checks if t falls inside the window
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// DateRange converts the window to a store query range
func (w Window) DateRange() domain.DateRange {
	return domain.DateRange{Start: w.Start, End: w.End}
}

// ResolvePeriod computes the window of a period relative to now.
// Calendar boundaries are taken in now's location.
func ResolvePeriod(spec PeriodSpec, now time.Time) (Window, error) {
	loc := now.Location()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)

	switch spec.Period {
	case PeriodAllTime, "":
		return Window{}, nil
	case PeriodThisMonth:
		return window(monthStart, now), nil
	case PeriodLastMonth:
		start := monthStart.AddDate(0, -1, 0)
		return window(start, lastInstantBefore(monthStart)), nil
	case PeriodThisYear:
		return window(yearStart, now), nil
	case PeriodLastYear:
		start := yearStart.AddDate(-1, 0, 0)
		return window(start, lastInstantBefore(yearStart)), nil
	case PeriodCustom:
		if spec.Start == nil || spec.End == nil {
			return Window{}, fmt.Errorf("%w: custom period requires start and end", ErrInvalidPeriod)
		}
		if spec.Start.After(*spec.End) {
			return Window{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod,
				spec.Start.Format(time.RFC3339), spec.End.Format(time.RFC3339))
		}
		return window(*spec.Start, *spec.End), nil
	default:
		return Window{}, fmt.Errorf("%w: unknown period %q", ErrInvalidPeriod, spec.Period)
	}
}

// IsInvalidPeriod checks if err was caused by an unresolvable period
func IsInvalidPeriod(err error) bool {
	return errors.Is(err, ErrInvalidPeriod)
}

// EndOfDay returns the last instant of t's calendar day
func EndOfDay(t time.Time) time.Time {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return lastInstantBefore(start.AddDate(0, 0, 1))
}

func lastInstantBefore(t time.Time) time.Time {
	return t.Add(-time.Nanosecond)
}

func window(start, end time.Time) Window {
	return Window{Start: &start, End: &end}
}
