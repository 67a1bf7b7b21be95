package dispatch

import "errors"

var (
	// ErrDoubleDispatchPrevented signals that a concurrent or redelivered
	// trigger found the post already claimed. It is an internal no-op, not a
	// failure: task handlers swallow it so the runner does not redeliver.
	ErrDoubleDispatchPrevented = errors.New("dispatch already in progress or finished")

	ErrPostNotFound     = errors.New("post not found")
	ErrNoTargets        = errors.New("no platform targets for post")
	ErrCancelNotAllowed = errors.New("post can no longer be cancelled")
)
