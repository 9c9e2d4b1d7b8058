package errors

import (
	"strings"
)

// Errors is a non-empty collection of errors presented as one value. A nil
// Errors means no errors at all; Append keeps that invariant, so an
// accumulated result can be returned directly from a function with an
// error result.
type Errors interface {
	error

	// Slice returns a copy of the collected errors. It is never empty.
	Slice() []error

	// Len returns the number of collected errors, always > 0.
	Len() int
}

type errorSlice []error

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	parts := make([]string, len(m))
	for i, err := range m {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}

// Append adds err to errs and returns the result. Either side may be nil.
// An err that is itself an Errors is flattened, so nesting never builds
// up no matter how the collection was assembled.
func Append(errs Errors, err error) Errors {
	switch err := err.(type) {
	case nil:
		return errs
	case Errors:
		out := errs
		for _, e := range err.Slice() {
			out = Append(out, e)
		}
		return out
	default:
		if errs == nil {
			return errorSlice{err}
		}
		slice, ok := errs.(errorSlice)
		if !ok {
			slice = errorSlice(errs.Slice())
		}
		return append(slice, err)
	}
}
