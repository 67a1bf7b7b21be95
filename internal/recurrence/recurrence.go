// Package recurrence turns a schedule's recurrence kind and parameters into
// concrete execution instants. Everything here is pure: the reference time is
// always passed in, never read from the wall clock.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

// ErrInvalidParams marks a malformed recurrence configuration. It is
// rejected at schedule creation time and never silently defaulted.
var ErrInvalidParams = errors.New("invalid recurrence params")

// Next returns the next execution instant for the given kind and params.
//
// For "once" the configured instant is returned verbatim even when it lies in
// the past; callers treat past-due schedules as immediately due. All other
// kinds return an instant strictly after now, so a schedule firing exactly at
// its wall-clock time rolls to the following occurrence instead of re-firing
// within the same tick.
func Next(kind string, p models.RecurrenceParams, now time.Time) (time.Time, error) {
	switch kind {
	case models.RecurrenceOnce:
		if p.RunAt == nil {
			return time.Time{}, fmt.Errorf("%w: once requires run_at", ErrInvalidParams)
		}
		return *p.RunAt, nil

	case models.RecurrenceDaily:
		if err := validateTimeOfDay(p); err != nil {
			return time.Time{}, err
		}
		next := atTimeOfDay(now, p.Hour, p.Minute)
		if !next.After(now) {
			next = atTimeOfDay(now.AddDate(0, 0, 1), p.Hour, p.Minute)
		}
		return next, nil

	case models.RecurrenceWeekly:
		if err := validateTimeOfDay(p); err != nil {
			return time.Time{}, err
		}
		if p.DayOfWeek < 1 || p.DayOfWeek > 7 {
			return time.Time{}, fmt.Errorf("%w: day_of_week must be 1-7, got %d", ErrInvalidParams, p.DayOfWeek)
		}
		daysAhead := p.DayOfWeek - isoWeekday(now)
		if daysAhead < 0 {
			daysAhead += 7
		}
		next := atTimeOfDay(now.AddDate(0, 0, daysAhead), p.Hour, p.Minute)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		return next, nil

	case models.RecurrenceMonthly:
		if err := validateTimeOfDay(p); err != nil {
			return time.Time{}, err
		}
		if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
			return time.Time{}, fmt.Errorf("%w: day_of_month must be 1-31, got %d", ErrInvalidParams, p.DayOfMonth)
		}
		next := atDayOfMonth(now.Year(), now.Month(), p.DayOfMonth, p.Hour, p.Minute, now.Location())
		if !next.After(now) {
			year, month := now.Year(), now.Month()
			if month == time.December {
				year, month = year+1, time.January
			} else {
				month++
			}
			next = atDayOfMonth(year, month, p.DayOfMonth, p.Hour, p.Minute, now.Location())
		}
		return next, nil

	case models.RecurrenceCustom:
		interval, err := ParseInterval(p.Expression)
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(interval), nil
	}

	return time.Time{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidParams, kind)
}

// Validate checks kind and params without producing an instant. Used at
// schedule creation so broken configurations never reach the scan loop.
func Validate(kind string, p models.RecurrenceParams) error {
	_, err := Next(kind, p, time.Now())
	return err
}

// Preview returns the next n occurrences starting strictly after from, using
// the exact same advance rules as execution. A "once" schedule previews at
// most its single instant.
func Preview(kind string, p models.RecurrenceParams, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	if kind == models.RecurrenceOnce {
		next, err := Next(kind, p, from)
		if err != nil {
			return nil, err
		}
		return []time.Time{next}, nil
	}

	out := make([]time.Time, 0, n)
	cursor := from
	for i := 0; i < n; i++ {
		next, err := Next(kind, p, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

// ParseInterval parses the fixed custom-recurrence grammar: "every <n>m" or
// "every <n>h" with n >= 1. Anything else is ErrInvalidParams; there is
// deliberately no fallback interval.
func ParseInterval(expr string) (time.Duration, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(expr)))
	if len(fields) != 2 || fields[0] != "every" {
		return 0, fmt.Errorf("%w: custom expression %q", ErrInvalidParams, expr)
	}

	spec := fields[1]
	if len(spec) < 2 {
		return 0, fmt.Errorf("%w: custom expression %q", ErrInvalidParams, expr)
	}

	unit := spec[len(spec)-1]
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: custom expression %q", ErrInvalidParams, expr)
	}

	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: custom expression %q", ErrInvalidParams, expr)
}

func validateTimeOfDay(p models.RecurrenceParams) error {
	if p.Hour < 0 || p.Hour > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidParams, p.Hour)
	}
	if p.Minute < 0 || p.Minute > 59 {
		return fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidParams, p.Minute)
	}
	return nil
}

func atTimeOfDay(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// atDayOfMonth clips the requested day to the last valid day of the month,
// so day 31 lands on Feb 28/29, Apr 30 and so on.
func atDayOfMonth(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	last := daysIn(year, month)
	if day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// isoWeekday maps Go's Sunday-based weekday to the 1=Monday..7=Sunday
// convention used by schedule params.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
