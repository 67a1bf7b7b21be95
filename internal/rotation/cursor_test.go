package rotation

import (
	"errors"
	"testing"
)

func TestAdvanceEmptyQueue(t *testing.T) {
	if _, _, err := Advance([]string{}, 0); !errors.Is(err, ErrNoContent) {
		t.Fatalf("got %v, want ErrNoContent", err)
	}
	if _, _, err := Advance([]string(nil), 7); !errors.Is(err, ErrNoContent) {
		t.Fatalf("nil queue: got %v, want ErrNoContent", err)
	}
}

func TestAdvanceRoundRobin(t *testing.T) {
	queue := []string{"a", "b"}

	item, next, err := Advance(queue, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if item != "b" || next != 0 {
		t.Fatalf("got (%q, %d), want (%q, 0)", item, next, "b")
	}

	item, next, err = Advance(queue, next)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if item != "a" || next != 1 {
		t.Fatalf("got (%q, %d), want (%q, 1)", item, next, "a")
	}
}

func TestAdvanceOutOfRangeCursor(t *testing.T) {
	queue := []string{"a", "b", "c"}

	tests := []struct {
		cursor   int
		wantItem string
		wantNext int
	}{
		{0, "a", 1},
		{2, "c", 0},
		{3, "a", 1},  // stale cursor from a longer queue
		{9, "a", 1},  // shrunken from length 10 at index 9
		{-1, "c", 0}, // negative wraps from the tail
		{-4, "c", 0},
	}

	for _, tt := range tests {
		item, next, err := Advance(queue, tt.cursor)
		if err != nil {
			t.Fatalf("cursor %d: %v", tt.cursor, err)
		}
		if item != tt.wantItem || next != tt.wantNext {
			t.Fatalf("cursor %d: got (%q, %d), want (%q, %d)", tt.cursor, item, next, tt.wantItem, tt.wantNext)
		}
		if next < 0 || next >= len(queue) {
			t.Fatalf("cursor %d: next %d outside [0,%d)", tt.cursor, next, len(queue))
		}
	}
}

func TestCursorForReplacement(t *testing.T) {
	tests := []struct {
		oldCursor, newLen, want int
	}{
		{2, 5, 2}, // still in range, rotation continues
		{4, 5, 4},
		{5, 5, 0}, // out of range for the new queue
		{9, 3, 0},
		{0, 0, 0}, // queue emptied
		{-1, 3, 0},
	}
	for _, tt := range tests {
		if got := CursorForReplacement(tt.oldCursor, tt.newLen); got != tt.want {
			t.Fatalf("CursorForReplacement(%d, %d) = %d, want %d", tt.oldCursor, tt.newLen, got, tt.want)
		}
	}
}
