package report

import (
	"fmt"
	"time"

	"github.com/mauv0809/sales-dashboard/internal/products"
)

// Range is an inclusive span of civil days in a time zone.
type Range struct {
	Start time.Time // midnight of the first day
	End   time.Time // midnight of the last day
}

// DayRange builds the range covering start..end (inclusive) in loc. Only
// the calendar dates of start and end are used.
func DayRange(start, end time.Time, loc *time.Location) (Range, error) {
	s := midnight(start, loc)
	e := midnight(end, loc)
	if e.Before(s) {
		return Range{}, fmt.Errorf("%w: end %s is before start %s",
			products.ErrInvalidArgument, e.Format(time.DateOnly), s.Format(time.DateOnly))
	}
	return Range{Start: s, End: e}, nil
}

// ParseDayRange parses YYYY-MM-DD dates; an empty value falls back to def.
func ParseDayRange(start, end string, def Range, loc *time.Location) (Range, error) {
	s, e := def.Start, def.End
	var err error
	if start != "" {
		if s, err = time.ParseInLocation(time.DateOnly, start, loc); err != nil {
			return Range{}, fmt.Errorf("%w: start date %q", products.ErrInvalidArgument, start)
		}
	}
	if end != "" {
		if e, err = time.ParseInLocation(time.DateOnly, end, loc); err != nil {
			return Range{}, fmt.Errorf("%w: end date %q", products.ErrInvalidArgument, end)
		}
	}
	return DayRange(s, e, loc)
}

// From is the first instant of the range.
func (r Range) From() time.Time { return r.Start }

// To is the last instant of the range.
func (r Range) To() time.Time { return r.End.AddDate(0, 0, 1).Add(-time.Nanosecond) }

// StartDate and EndDate are the bounds as YYYY-MM-DD.
func (r Range) StartDate() string { return r.Start.Format(time.DateOnly) }
func (r Range) EndDate() string   { return r.End.Format(time.DateOnly) }

// Contains reports whether the civil date d (YYYY-MM-DD) is in the range.
func (r Range) Contains(d string) bool {
	return d >= r.StartDate() && d <= r.EndDate()
}

func (r Range) key() string {
	return r.From().Format(time.RFC3339Nano) + "/" + r.To().Format(time.RFC3339Nano)
}

// MonthToDate is the first of now's month through now, in loc.
func MonthToDate(now time.Time, loc *time.Location) Range {
	today := midnight(now, loc)
	return Range{Start: today.AddDate(0, 0, 1-today.Day()), End: today}
}

// YearToDate is January 1st of now's year through now, in loc.
func YearToDate(now time.Time, loc *time.Location) Range {
	today := midnight(now, loc)
	return Range{Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc), End: today}
}

// Today is the single day containing now, in loc.
func Today(now time.Time, loc *time.Location) Range {
	today := midnight(now, loc)
	return Range{Start: today, End: today}
}

// Period names accepted by PeriodRange.
const (
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodRange resolves a named period relative to now.
func PeriodRange(period string, now time.Time, loc *time.Location) (Range, error) {
	switch period {
	case PeriodMonth, "":
		return MonthToDate(now, loc), nil
	case PeriodYear:
		return YearToDate(now, loc), nil
	}
	return Range{}, fmt.Errorf("%w: unknown period %q", products.ErrInvalidArgument, period)
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
