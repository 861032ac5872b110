// Package errors collects the error helpers used across wavetext. Sentinel
// errors are created with New and decorated with Wrapf as they travel up;
// callers recover the sentinel with Cause.
package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// New returns a sentinel error with the given message. Each call returns a
// distinct value, so sentinels may be compared with ==.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf is re-exported from fmt
var Errorf = fmt.Errorf

// Wrapf annotates err with a formatted message; the result still reports err
// as its Cause. A nil err yields a fresh error carrying only the message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return pkgerrors.WithMessage(err, fmt.Sprintf(format, args...))
}

// WrapfOrNil is Wrapf, except that it returns nil for a nil err.
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrapf(err, format, args...)
}

// Cause is re-exported from github.com/pkg/errors
var Cause = pkgerrors.Cause
