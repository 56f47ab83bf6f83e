package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by store commands. Callers should use
// [errors.Is] (or [errors.As] for InvalidRowCountError) to match against
// these values; anything outside this set reaching a caller is a defect.
var (
	// ErrEntryExists is returned when an insert collides with an existing
	// row: a taken username on AddUser, or a duplicate (user, name) pair on
	// CreateChannelList.
	ErrEntryExists = errors.New("entry already exists")

	// ErrSerialization is returned when encoding a command's result (e.g.
	// the JSON array of channel-list names) fails.
	ErrSerialization = errors.New("serialization error")

	// ErrReplyChannelLost marks a reply that could not be delivered to the
	// submitting caller. The command has already executed in full; only the
	// outcome is lost. It is logged by the worker, never returned.
	ErrReplyChannelLost = errors.New("reply channel lost")

	// ErrStorage wraps storage-engine failures that carry no more specific
	// classification.
	ErrStorage = errors.New("storage error")

	// ErrQueueFull is returned by Submit when the command queue is at
	// capacity. Callers must treat it as a fatal infrastructure condition
	// for the request at hand, not retry silently.
	ErrQueueFull = errors.New("store command queue is full")

	// ErrStoreClosed is returned by Submit once the worker has processed a
	// Shutdown command. Submissions never hang on a stopped store.
	ErrStoreClosed = errors.New("store is shut down")

	// ErrUnexpectedResponse is used by callers when a command produced a
	// response variant other than the one its action promises. It always
	// indicates an internal defect.
	ErrUnexpectedResponse = errors.New("unexpected store response variant")
)

// InvalidRowCountError reports that an operation expecting exactly one
// affected or returned row saw a different count. Zero and more-than-one
// are both defects under the exact-row-count discipline: an ambiguous
// result is never silently treated as success or "pick the first".
type InvalidRowCountError struct {
	N int64
}

func (e *InvalidRowCountError) Error() string {
	return fmt.Sprintf("expected exactly 1 row, got %d", e.N)
}

// NotFound reports whether the mismatch was an empty result, which callers
// may surface as a caller-input failure rather than an internal one.
func (e *InvalidRowCountError) NotFound() bool {
	return e.N == 0
}

// storageErr wraps a driver-level error into the closed taxonomy.
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func errUnknownAction(a Action) error {
	return fmt.Errorf("unknown action %T", a)
}
