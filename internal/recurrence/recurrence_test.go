package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func TestNextOnce(t *testing.T) {
	now := mustTime(t, "2025-06-15T12:00:00Z")

	past := now.Add(-48 * time.Hour)
	got, err := Next(models.RecurrenceOnce, models.RecurrenceParams{RunAt: &past}, now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	// A past instant is returned verbatim; the scanner treats it as due.
	if !got.Equal(past) {
		t.Fatalf("got %v, want %v", got, past)
	}

	if _, err := Next(models.RecurrenceOnce, models.RecurrenceParams{}, now); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("missing run_at: got %v, want ErrInvalidParams", err)
	}
}

func TestNextDaily(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{"before time of day", "2025-06-15T08:59:00Z", "2025-06-15T09:00:00Z"},
		{"exactly at time of day rolls over", "2025-06-15T09:00:00Z", "2025-06-16T09:00:00Z"},
		{"after time of day", "2025-06-15T10:30:00Z", "2025-06-16T09:00:00Z"},
		{"month boundary", "2025-06-30T22:00:00Z", "2025-07-01T09:00:00Z"},
		{"year boundary", "2025-12-31T23:30:00Z", "2026-01-01T09:00:00Z"},
	}

	params := models.RecurrenceParams{Hour: 9, Minute: 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustTime(t, tt.now)
			got, err := Next(models.RecurrenceDaily, params, now)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if want := mustTime(t, tt.want); !got.Equal(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			if !got.After(now) {
				t.Fatalf("result %v not strictly after now %v", got, now)
			}
		})
	}
}

func TestNextWeekly(t *testing.T) {
	// 2025-06-18 is a Wednesday (ISO day 3).
	tests := []struct {
		name string
		now  string
		want string
	}{
		{"earlier weekday", "2025-06-16T12:00:00Z", "2025-06-18T09:00:00Z"},
		{"same day before time", "2025-06-18T08:00:00Z", "2025-06-18T09:00:00Z"},
		{"same day after time rolls a week", "2025-06-18T10:00:00Z", "2025-06-25T09:00:00Z"},
		{"later weekday rolls to next week", "2025-06-20T12:00:00Z", "2025-06-25T09:00:00Z"},
	}

	params := models.RecurrenceParams{DayOfWeek: 3, Hour: 9, Minute: 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustTime(t, tt.now)
			got, err := Next(models.RecurrenceWeekly, params, now)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if want := mustTime(t, tt.want); !got.Equal(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}

	if _, err := Next(models.RecurrenceWeekly, models.RecurrenceParams{DayOfWeek: 8, Hour: 9}, mustTime(t, "2025-06-16T12:00:00Z")); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("day_of_week=8: got %v, want ErrInvalidParams", err)
	}
}

func TestNextMonthly(t *testing.T) {
	tests := []struct {
		name string
		day  int
		now  string
		want string
	}{
		{"later this month", 20, "2025-06-15T12:00:00Z", "2025-06-20T09:00:00Z"},
		{"already passed rolls a month", 10, "2025-06-15T12:00:00Z", "2025-07-10T09:00:00Z"},
		{"day 31 clipped to june 30", 31, "2025-06-15T12:00:00Z", "2025-06-30T09:00:00Z"},
		{"day 31 clipped to february", 31, "2025-02-01T12:00:00Z", "2025-02-28T09:00:00Z"},
		{"leap february", 30, "2024-02-01T12:00:00Z", "2024-02-29T09:00:00Z"},
		{"december rolls into january", 5, "2025-12-20T12:00:00Z", "2026-01-05T09:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustTime(t, tt.now)
			params := models.RecurrenceParams{DayOfMonth: tt.day, Hour: 9, Minute: 0}
			got, err := Next(models.RecurrenceMonthly, params, now)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if want := mustTime(t, tt.want); !got.Equal(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			if !got.After(now) {
				t.Fatalf("result %v not strictly after now %v", got, now)
			}
		})
	}
}

func TestNextCustom(t *testing.T) {
	now := mustTime(t, "2025-06-15T12:00:00Z")

	got, err := Next(models.RecurrenceCustom, models.RecurrenceParams{Expression: "every 30m"}, now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := now.Add(30 * time.Minute); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = Next(models.RecurrenceCustom, models.RecurrenceParams{Expression: "every 2h"}, now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := now.Add(2 * time.Hour); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for _, expr := range []string{"", "every day", "every 0m", "every -5m", "hourly", "every 5s", "0 * * * *"} {
		if _, err := Next(models.RecurrenceCustom, models.RecurrenceParams{Expression: expr}, now); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("expression %q: got %v, want ErrInvalidParams", expr, err)
		}
	}
}

func TestNextIsDeterministic(t *testing.T) {
	now := mustTime(t, "2025-06-15T12:00:00Z")
	params := models.RecurrenceParams{DayOfWeek: 3, Hour: 9, Minute: 30}

	first, err := Next(models.RecurrenceWeekly, params, now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Next(models.RecurrenceWeekly, params, now)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("non-deterministic result: %v vs %v", again, first)
		}
	}
}

func TestPreviewMatchesExecutionRules(t *testing.T) {
	from := mustTime(t, "2025-01-15T12:00:00Z")
	params := models.RecurrenceParams{DayOfMonth: 31, Hour: 9, Minute: 0}

	got, err := Preview(models.RecurrenceMonthly, params, from, 4)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	// No fixed 30-day approximation: each step applies the real monthly
	// rollover with short-month clipping.
	want := []string{
		"2025-01-31T09:00:00Z",
		"2025-02-28T09:00:00Z",
		"2025-03-31T09:00:00Z",
		"2025-04-30T09:00:00Z",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(want))
	}
	for i := range want {
		if w := mustTime(t, want[i]); !got[i].Equal(w) {
			t.Fatalf("occurrence %d: got %v, want %v", i, got[i], w)
		}
	}
}

func TestPreviewOnce(t *testing.T) {
	from := mustTime(t, "2025-06-15T12:00:00Z")
	runAt := from.Add(24 * time.Hour)

	got, err := Preview(models.RecurrenceOnce, models.RecurrenceParams{RunAt: &runAt}, from, 10)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(got) != 1 || !got[0].Equal(runAt) {
		t.Fatalf("got %v, want single occurrence at %v", got, runAt)
	}
}
