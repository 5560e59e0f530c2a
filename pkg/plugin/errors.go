package plugin

import (
	"errors"
	"fmt"
)

// ErrCancel means the user aborted. It is an outcome, not a failure: at the
// top of a run it stops with zero effects, and returned from an edit it
// skips only that edit.
var ErrCancel = errors.New("cancelled")

// IsCancel reports whether err is, or wraps, ErrCancel.
func IsCancel(err error) bool {
	return errors.Is(err, ErrCancel)
}

// OtherError is a generic application failure reported by a plugin or by
// the host on its behalf (template errors, malformed documents, io).
type OtherError struct {
	Message string
}

func (e *OtherError) Error() string { return e.Message }

// Otherf builds an OtherError from a format string.
func Otherf(format string, args ...any) error {
	return &OtherError{Message: fmt.Sprintf(format, args...)}
}

// Trap is an unrecoverable host-side failure such as a disposed handle.
// It always aborts the run.
type Trap struct {
	Err error
}

func (e *Trap) Error() string { return fmt.Sprintf("trap: %v", e.Err) }

func (e *Trap) Unwrap() error { return e.Err }

// IsTrap reports whether err carries a Trap.
func IsTrap(err error) bool {
	var t *Trap
	return errors.As(err, &t)
}
