package storage

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store is closed")

// Error reports a failure of the underlying persistence layer. It is kept
// distinct from input validation failures so callers can tell "rejected"
// apart from "not persisted".
type Error struct {
	// Backend names the storage implementation (memory, sqlite, redis, dynamodb).
	Backend string
	// Op is the operation that failed, e.g. "upsert selection".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s storage: failed to %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *Error, or nil when err is nil.
// An err that already is a *Error is returned unchanged.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Backend: backend, Op: op, Err: err}
}

// IsStorageError reports whether err originated in the storage layer.
func IsStorageError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
