package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf builds a plain formatted error. It is the default constructor in
// this repo; use Wrapf to add context to an underlying cause instead.
var Errorf = fmt.Errorf

// New is Errorf under the name callers expect from the standard library.
var New = Errorf

// Wrapf annotates err with a formatted message while preserving err as the
// cause. A nil err yields a fresh error built from the message alone, so
// the result is never nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// Cause strips the annotations added by Wrapf and returns the original
// error.
var Cause = errors.Cause
