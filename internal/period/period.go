// Package period maps a reference date and a period type to the concrete
// calendar range the type covers. All functions are pure.
package period

import (
	"errors"
	"fmt"
	"time"

	"dayscore-backend/internal/models"
)

var ErrInvalidPeriodType = errors.New("invalid period type")

// Range is one calendar period. Start is the first instant of the first
// day, End the last second of the last day.
type Range struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether the date's calendar day falls inside the range.
func (r Range) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(truncateDay(r.Start)) && !d.After(truncateDay(r.End))
}

// Dates returns the range of the period of type pt that contains date.
//
// week      — ISO week, Monday through Sunday
// month     — first through last calendar day of the month
// quarter   — the 3-month block the date falls into
// half_year — Jan 1–Jun 30 or Jul 1–Dec 31
// year      — Jan 1–Dec 31
func Dates(date time.Time, pt models.PeriodType) (Range, error) {
	d := truncateDay(date)

	switch pt {
	case models.PeriodWeek:
		// time.Weekday puts Sunday at 0; shift so Monday starts the week.
		offset := (int(d.Weekday()) + 6) % 7
		start := d.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 6)
		year, week := start.ISOWeek()
		return Range{
			Start: start,
			End:   endOfDay(end),
			Label: fmt.Sprintf("week %d of %d", week, year),
		}, nil

	case models.PeriodMonth:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		end := start.AddDate(0, 1, -1)
		return Range{
			Start: start,
			End:   endOfDay(end),
			Label: start.Format("January 2006"),
		}, nil

	case models.PeriodQuarter:
		q := (int(d.Month()) - 1) / 3
		start := time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, d.Location())
		end := start.AddDate(0, 3, -1)
		return Range{
			Start: start,
			End:   endOfDay(end),
			Label: fmt.Sprintf("Q%d %d", q+1, d.Year()),
		}, nil

	case models.PeriodHalfYear:
		half := 1
		startMonth := time.January
		if d.Month() > time.June {
			half = 2
			startMonth = time.July
		}
		start := time.Date(d.Year(), startMonth, 1, 0, 0, 0, 0, d.Location())
		end := start.AddDate(0, 6, -1)
		return Range{
			Start: start,
			End:   endOfDay(end),
			Label: fmt.Sprintf("H%d %d", half, d.Year()),
		}, nil

	case models.PeriodYear:
		start := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
		end := time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
		return Range{
			Start: start,
			End:   endOfDay(end),
			Label: fmt.Sprintf("%d", d.Year()),
		}, nil
	}

	return Range{}, fmt.Errorf("%w: %q", ErrInvalidPeriodType, pt)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
