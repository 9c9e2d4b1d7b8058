package abstract

import (
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// KeywordArg is one name=value actual.
type KeywordArg struct {
	Name  string
	Value *typegraph.Variable
}

// Args carries the actuals of one call. Each slot is a variable, since an
// argument expression may have several candidate values. Starargs and
// Starstarargs hold the *args tuple and **kwargs dict when present.
type Args struct {
	Positional   []*typegraph.Variable
	Keywords     []KeywordArg
	Starargs     *typegraph.Variable
	Starstarargs *typegraph.Variable
}

// WithSelf returns a copy with recv prepended to the positionals, for
// dispatching a method call through its unbound function.
func (a *Args) WithSelf(recv *typegraph.Variable) *Args {
	out := &Args{
		Positional:   make([]*typegraph.Variable, 0, len(a.Positional)+1),
		Keywords:     a.Keywords,
		Starargs:     a.Starargs,
		Starstarargs: a.Starstarargs,
	}
	out.Positional = append(out.Positional, recv)
	out.Positional = append(out.Positional, a.Positional...)
	return out
}

// Keyword returns the variable passed for name, or nil.
func (a *Args) Keyword(name string) *typegraph.Variable {
	for _, kw := range a.Keywords {
		if kw.Name == name {
			return kw.Value
		}
	}
	return nil
}

// Simplify folds starred actuals whose value is a known constant into the
// concrete argument lists: a tuple literal extends the positionals, a dict
// literal with only constant string keys extends the keywords. Anything
// else stays symbolic. The receiver is not modified.
func (a *Args) Simplify(ctx pyctx.CallContext, node *typegraph.Node) *Args {
	out := &Args{
		Positional:   a.Positional,
		Keywords:     a.Keywords,
		Starargs:     a.Starargs,
		Starstarargs: a.Starstarargs,
	}
	if elts, ok := constantTuple(out.Starargs); ok {
		out.Positional = append(append([]*typegraph.Variable{}, out.Positional...), elts...)
		out.Starargs = nil
	}
	if kws, ok := constantDict(out.Starstarargs); ok {
		out.Keywords = append(append([]KeywordArg{}, out.Keywords...), kws...)
		out.Starstarargs = nil
	}
	return out
}

// ExpandForCount covers the gap between the positionals and a signature
// that requires more, by pulling synthetic element-typed arguments out of a
// symbolic *args. The remainder stays in Starargs. Without a *args actual
// the receiver is returned unchanged and the shortage surfaces as a
// matching failure instead.
func (a *Args) ExpandForCount(ctx pyctx.CallContext, node *typegraph.Node, required int) *Args {
	if a.Starargs == nil || len(a.Positional) >= required {
		return a
	}
	elem := starredElement(ctx, a.Starargs, node)
	if elem == nil {
		return a
	}
	out := &Args{
		Positional:   append([]*typegraph.Variable{}, a.Positional...),
		Keywords:     a.Keywords,
		Starargs:     a.Starargs,
		Starstarargs: a.Starstarargs,
	}
	for len(out.Positional) < required {
		out.Positional = append(out.Positional, elem)
	}
	return out
}

// HasAmbiguous reports whether any actual binding is ambiguous, which
// forces overload selection to consider every matching signature.
func (a *Args) HasAmbiguous() bool {
	for _, p := range a.Positional {
		if VariableAmbiguous(p) {
			return true
		}
	}
	for _, kw := range a.Keywords {
		if VariableAmbiguous(kw.Value) {
			return true
		}
	}
	if a.Starargs != nil && VariableAmbiguous(a.Starargs) {
		return true
	}
	if a.Starstarargs != nil && VariableAmbiguous(a.Starstarargs) {
		return true
	}
	return false
}

// Variables returns every argument variable, for view enumeration.
func (a *Args) Variables() []*typegraph.Variable {
	var out []*typegraph.Variable
	out = append(out, a.Positional...)
	for _, kw := range a.Keywords {
		out = append(out, kw.Value)
	}
	if a.Starargs != nil {
		out = append(out, a.Starargs)
	}
	if a.Starstarargs != nil {
		out = append(out, a.Starstarargs)
	}
	return out
}

// constantTuple unwraps a *args variable holding exactly one known tuple or
// list literal.
func constantTuple(v *typegraph.Variable) ([]*typegraph.Variable, bool) {
	if v == nil {
		return nil, false
	}
	data := v.Data()
	if len(data) != 1 {
		return nil, false
	}
	ci, ok := data[0].(*ConcreteInstance)
	if !ok {
		return nil, false
	}
	elts := ci.Elements()
	if elts == nil {
		return nil, false
	}
	return elts, true
}

// constantDict unwraps a **kwargs variable holding exactly one dict literal
// whose keys are all known strings.
func constantDict(v *typegraph.Variable) ([]KeywordArg, bool) {
	if v == nil {
		return nil, false
	}
	data := v.Data()
	if len(data) != 1 {
		return nil, false
	}
	ci, ok := data[0].(*ConcreteInstance)
	if !ok {
		return nil, false
	}
	d := ci.Dict()
	if d == nil || d.Ambiguous {
		return nil, false
	}
	var out []KeywordArg
	ok = true
	d.Entries.RangeInc(func(key, value interface{}) bool {
		name, isStr := key.(string)
		if !isStr {
			ok = false
			return false
		}
		out = append(out, KeywordArg{Name: name, Value: value.(*typegraph.Variable)})
		return true
	})
	if !ok {
		return nil, false
	}
	return out, true
}

// starredElement produces the element type variable of a symbolic *args
// actual: the T parameter for tuple or list instances, unsolvable for
// anything ambiguous.
func starredElement(ctx pyctx.CallContext, v *typegraph.Variable, node *typegraph.Node) *typegraph.Variable {
	for _, d := range v.Data() {
		val := d.(Value)
		if inst, ok := AsInstance(val); ok {
			if pv := inst.TypeParamVar("T"); pv != nil && len(pv.Bindings()) > 0 {
				return pv
			}
		}
		return val.context().UnsolvableVar("*"+v.Name(), node)
	}
	return nil
}
