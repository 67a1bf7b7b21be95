// Package rotation implements the round-robin cursor over a schedule's
// content queue. It is pure data manipulation; persistence of the cursor
// belongs to the caller.
package rotation

import "errors"

// ErrNoContent is returned when a due schedule has an empty content queue.
// The schedule stays due; the condition is surfaced to the operator instead
// of being skipped silently.
var ErrNoContent = errors.New("no content available in queue")

// Advance returns the item at the cursor and the cursor for the following
// tick. Any integer cursor is accepted: a stale value persisted against a
// longer queue (or a negative one) is normalized by modulo before indexing,
// so a shrunken queue can never cause an out-of-range access.
func Advance[T any](queue []T, cursor int) (item T, next int, err error) {
	if len(queue) == 0 {
		var zero T
		return zero, 0, ErrNoContent
	}
	idx := Normalize(cursor, len(queue))
	return queue[idx], (idx + 1) % len(queue), nil
}

// Normalize maps an arbitrary cursor into [0, length). length must be > 0.
func Normalize(cursor, length int) int {
	idx := cursor % length
	if idx < 0 {
		idx += length
	}
	return idx
}

// CursorForReplacement returns the cursor to store when the content queue is
// swapped out. Rotation continuity is kept when the old position still fits
// the new queue; otherwise the cursor restarts at the head.
func CursorForReplacement(oldCursor, newLen int) int {
	if newLen <= 0 || oldCursor < 0 || oldCursor >= newLen {
		return 0
	}
	return oldCursor
}
