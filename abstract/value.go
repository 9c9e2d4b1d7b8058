package abstract

import (
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// the maximum number of recursive value evaluations before giving up
const maxSteps = 50

// Kind is the top level classification of abstract values.
type Kind int

const (
	// UnknownKind indicates a value about which we know nothing, but whose
	// usage is recorded for later structural reconstruction
	UnknownKind Kind = iota
	// ClassKind indicates a value usable as a class
	ClassKind
	// FunctionKind indicates a function or method
	FunctionKind
	// InstanceKind indicates an instance of some class
	InstanceKind
	// ModuleKind indicates a module
	ModuleKind
	// UnionKind indicates a value that is one of several possible values
	UnionKind
	// TypeParamKind indicates a formal type parameter or an instance of one
	TypeParamKind
	// UnsolvableKind indicates a value the analysis has given up on
	UnsolvableKind
	// EmptyKind indicates the uninhabited bottom value
	EmptyKind
)

// String gets a string representation of this kind
func (k Kind) String() string {
	switch k {
	case UnknownKind:
		return "unknown"
	case ClassKind:
		return "class"
	case FunctionKind:
		return "function"
	case InstanceKind:
		return "instance"
	case ModuleKind:
		return "module"
	case UnionKind:
		return "union"
	case TypeParamKind:
		return "typeparam"
	case UnsolvableKind:
		return "unsolvable"
	case EmptyKind:
		return "empty"
	default:
		return "invalid"
	}
}

// Value represents a set of possible runtime values of the analyzed program.
// Values are always handled by pointer so that interface equality is identity
// and values can serve as binding payloads. Structural equality goes through
// Equal.
type Value interface {
	// Name is a short human readable name for the value
	Name() string

	// Kind categorizes this value
	Kind() Kind

	// Class gets the abstract type of this value. Ambiguous values answer
	// themselves so that ambiguity propagates through type queries.
	Class() Value

	// Formal reports whether the value still contains an unresolved type
	// parameter
	Formal() bool

	context() *Context
	key(ctx pyctx.CallContext) uint64
	equal(ctx pyctx.CallContext, other Value) bool
}

// Equal determines whether two values are structurally equal. If the
// computation exceeds the evaluation budget the values are reported unequal.
func Equal(ctx pyctx.Context, u, v Value) bool {
	var res bool
	err := ctx.WithCallLimit(maxSteps, func(ctx pyctx.CallContext) error {
		res = equal(ctx, u, v)
		return nil
	})
	if err != nil {
		return false
	}
	return res
}

func equal(ctx pyctx.CallContext, u, v Value) bool {
	ctx.CheckAbort()
	if u == nil || v == nil {
		return u == nil && v == nil
	}
	if u == v {
		return true
	}
	return u.equal(ctx.Call(), v)
}

// Hash computes a structural hash consistent with Equal. If the computation
// exceeds the evaluation budget the zero hash is returned.
func Hash(ctx pyctx.Context, v Value) uint64 {
	var res uint64
	err := ctx.WithCallLimit(maxSteps, func(ctx pyctx.CallContext) error {
		res = hash(ctx, v)
		return nil
	})
	if err != nil {
		return 0
	}
	return res
}

func hash(ctx pyctx.CallContext, v Value) uint64 {
	ctx.CheckAbort()
	if v == nil {
		return saltNil
	}
	return v.key(ctx.Call())
}

// IsAmbiguous reports whether the value is one the analysis has stopped
// reasoning precisely about. Unknown retains usage history for structural
// reconstruction while Unsolvable and Empty discard it, but all three are
// mutually substitutable for soundness purposes.
func IsAmbiguous(v Value) bool {
	switch v.(type) {
	case *Unknown, *Unsolvable, *Empty:
		return true
	}
	return false
}

// VariableAmbiguous reports whether any binding of the variable holds an
// ambiguous value.
func VariableAmbiguous(v *typegraph.Variable) bool {
	for _, d := range v.Data() {
		if val, ok := d.(Value); ok && IsAmbiguous(val) {
			return true
		}
	}
	return false
}
