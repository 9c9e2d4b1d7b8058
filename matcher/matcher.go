// Package matcher implements call and argument matching: binding actual
// arguments to formal parameters, unifying type parameters against views of
// the arguments, selecting among overloads and applying declared mutation
// effects. It plugs into abstract.Context as its CallMatcher, which is how
// construction, attribute descriptors and the interpreter reach it without a
// package cycle.
package matcher

import (
	"fmt"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
	"github.com/pythiaco/pythia/views"
)

// Options control matching behavior.
type Options struct {
	// MaxViewProduct bounds the number of joint argument assignments
	// enumerated per call. Beyond it matching degrades to a single
	// all-unsolvable assignment.
	MaxViewProduct int

	// StrictParameterChecks reports every collected failure of an unmatched
	// call instead of only the most informative one.
	StrictParameterChecks bool

	// CheckContainerMutations reports mutations that widen a container with
	// an element type unrelated to everything already in it.
	CheckContainerMutations bool
}

// DefaultOptions returns the options analysis runs use unless overridden.
func DefaultOptions() Options {
	return Options{MaxViewProduct: views.DefaultOpts.MaxProduct}
}

// BodyRunner executes the body of an interpreted function. The interpreter
// provides the implementation; without one, calls to interpreted functions
// degrade to matching their declared signature.
type BodyRunner interface {
	RunFunction(ctx pyctx.CallContext, node *typegraph.Node, fn *abstract.InterpreterFunction, args *abstract.Args) (abstract.CallOutcome, error)
}

// Matcher applies callable values to arguments. One matcher serves one
// abstract.Context for the duration of an analysis run.
type Matcher struct {
	actx *abstract.Context
	opts Options
	pos  diag.Pos

	// Runner, when set, executes interpreted function bodies.
	Runner BodyRunner

	// broken declarations are reported once, not per call
	reportedDecls map[abstract.Value]bool
}

// New creates a matcher over actx and installs it as the context's call
// matcher.
func New(actx *abstract.Context, opts Options) *Matcher {
	m := &Matcher{
		actx:          actx,
		opts:          opts,
		reportedDecls: make(map[abstract.Value]bool),
	}
	actx.Matcher = m
	return m
}

// SetPos sets the source position attached to subsequently reported events.
func (m *Matcher) SetPos(pos diag.Pos) { m.pos = pos }

// Call implements abstract.CallMatcher.
func (m *Matcher) Call(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, args *abstract.Args) (abstract.CallOutcome, error) {
	ctx.CheckAbort()
	val, ok := callee.Data().(abstract.Value)
	if !ok {
		return abstract.CallOutcome{}, errors.Errorf("matcher: callee binding carries %T, not a value", callee.Data())
	}
	return m.callValue(ctx, node, callee, val, args)
}

// callValue dispatches on the callee's variant. Function-like values go
// through signature matching, classes through construction, ambiguous values
// degrade and everything else is not callable.
func (m *Matcher) callValue(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, val abstract.Value, args *abstract.Args) (abstract.CallOutcome, error) {
	ctx.CheckAbort()
	switch v := val.(type) {
	case *abstract.BoundFunction:
		if out, handled, err := m.constLookup(ctx, node, v, args); handled {
			return out, err
		}
		return m.callValue(ctx, node, callee, v.Underlying(), args.WithSelf(v.Receiver()))
	case *abstract.DeclFunction:
		return m.callDeclFunction(ctx, node, callee, v, args)
	case *abstract.InterpreterFunction:
		return m.callInterpreterFunction(ctx, node, callee, v, args)
	case *abstract.NativeFunction:
		ret, err := v.F(ctx.Call(), node, args)
		if err != nil {
			return abstract.CallOutcome{}, err
		}
		return abstract.CallOutcome{Return: ret, Node: node, Matched: true}, nil
	case *abstract.Union:
		return m.callUnion(ctx, node, callee, v, args)
	case *abstract.Unknown:
		return abstract.CallOutcome{Return: v.RecordCall(args, node), Node: node, Matched: true}, nil
	case *abstract.Unsolvable, *abstract.Empty:
		return abstract.CallOutcome{Return: m.actx.UnsolvableVar(val.Name()+"()", node), Node: node, Matched: true}, nil
	case *abstract.TypeParameter:
		m.report(diag.Event{
			Kind:   diag.TypeVarAsValue,
			Pos:    m.pos,
			Callee: v.Name(),
			Detail: fmt.Sprintf("type parameter %s used as a value", v.Name()),
		})
		return abstract.CallOutcome{Return: m.actx.UnsolvableVar(v.Name()+"()", node), Node: node, Matched: false}, nil
	}
	if cls, ok := abstract.AsClass(val); ok {
		return abstract.Instantiate(ctx.Call(), cls, callee, args, node, uint64(node.ID()))
	}
	if _, ok := abstract.AsInstance(val); ok {
		return m.callDunder(ctx, node, callee, val, args)
	}
	m.report(diag.Event{Kind: diag.NotCallable, Pos: m.pos, Callee: val.Name()})
	return abstract.CallOutcome{Return: m.actx.UnsolvableVar(val.Name()+"()", node), Node: node, Matched: false}, nil
}

// callDunder resolves __call__ on an instance and dispatches through it.
func (m *Matcher) callDunder(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, val abstract.Value, args *abstract.Args) (abstract.CallOutcome, error) {
	fnVar, err := abstract.Attr(ctx, callee, "__call__", node)
	if err != nil {
		return abstract.CallOutcome{}, err
	}
	if fnVar == nil || len(fnVar.Bindings()) == 0 {
		m.report(diag.Event{Kind: diag.NotCallable, Pos: m.pos, Callee: val.Name()})
		return abstract.CallOutcome{Return: m.actx.UnsolvableVar(val.Name()+"()", node), Node: node, Matched: false}, nil
	}
	ret := m.actx.Program.NewVariable(val.Name() + "()")
	matched := false
	for _, b := range fnVar.Bindings() {
		fn, ok := b.Data().(abstract.Value)
		if !ok {
			continue
		}
		out, err := m.callValue(ctx.Call(), node, b, fn, args)
		if err != nil {
			return abstract.CallOutcome{}, err
		}
		node = out.Node
		if out.Return != nil {
			ret.PasteVariable(out.Return, node, []*typegraph.Binding{callee})
		}
		matched = matched || out.Matched
	}
	return abstract.CallOutcome{Return: ret, Node: node, Matched: matched}, nil
}

// callUnion calls each callable option and pastes the returns together. The
// whole union is not callable only when no option is.
func (m *Matcher) callUnion(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, u *abstract.Union, args *abstract.Args) (abstract.CallOutcome, error) {
	var callable []abstract.Value
	for _, opt := range u.Options() {
		if maybeCallable(opt) {
			callable = append(callable, opt)
		}
	}
	if len(callable) == 0 {
		m.report(diag.Event{Kind: diag.NotCallable, Pos: m.pos, Callee: u.Name()})
		return abstract.CallOutcome{Return: m.actx.UnsolvableVar(u.Name()+"()", node), Node: node, Matched: false}, nil
	}
	ret := m.actx.Program.NewVariable(u.Name() + "()")
	matched := false
	for _, opt := range callable {
		out, err := m.callValue(ctx.Call(), node, callee, opt, args)
		if err != nil {
			return abstract.CallOutcome{}, err
		}
		node = out.Node
		if out.Return != nil {
			ret.PasteVariable(out.Return, node, []*typegraph.Binding{callee})
		}
		matched = matched || out.Matched
	}
	return abstract.CallOutcome{Return: ret, Node: node, Matched: matched}, nil
}

// maybeCallable is a cheap pre-filter for union options. Instances pass
// because only an attribute lookup can tell; the per-option dispatch still
// rejects them properly.
func maybeCallable(v abstract.Value) bool {
	switch v.Kind() {
	case abstract.FunctionKind, abstract.ClassKind, abstract.UnknownKind, abstract.UnsolvableKind, abstract.EmptyKind, abstract.UnionKind, abstract.InstanceKind:
		return true
	}
	return false
}

// callDeclFunction matches a call against a declared function's overloads. A
// declaration that fails to convert is reported once and then degrades, so
// one bad stub does not fail every call through it.
func (m *Matcher) callDeclFunction(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, fn *abstract.DeclFunction, args *abstract.Args) (abstract.CallOutcome, error) {
	sigs, err := fn.Signatures(ctx)
	if err != nil {
		if !m.reportedDecls[fn] {
			m.reportedDecls[fn] = true
			ev := diag.Event{Kind: diag.GenericTypeError, Pos: m.pos, Callee: fn.Name(), Detail: err.Error()}
			if gte, ok := errors.Cause(err).(*abstract.GenericTypeError); ok {
				ev.BadParam = gte.Param
			}
			m.report(ev)
		}
		return abstract.CallOutcome{Return: m.actx.UnsolvableVar(fn.Name()+"()", node), Node: node, Matched: true}, nil
	}
	return m.callSignatures(ctx, node, callee, fn.Name(), sigs, args)
}

// callInterpreterFunction hands the call to the body runner when one is
// wired, and otherwise falls back to the function's declared signature.
func (m *Matcher) callInterpreterFunction(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, fn *abstract.InterpreterFunction, args *abstract.Args) (abstract.CallOutcome, error) {
	if m.Runner != nil {
		return m.Runner.RunFunction(ctx, node, fn, args)
	}
	if sig := fn.Signature(); sig != nil {
		return m.callSignatures(ctx, node, callee, fn.Name(), []*abstract.Signature{sig}, args)
	}
	return abstract.CallOutcome{Return: m.actx.UnsolvableVar(fn.Name()+"()", node), Node: node, Matched: true}, nil
}

// constLookup special-cases subscripting a dict literal with a constant key.
// A present key returns the stored variable exactly; an absent one on a fully
// known literal is a key error, not a fallback to the declared value type.
func (m *Matcher) constLookup(ctx pyctx.CallContext, node *typegraph.Node, bf *abstract.BoundFunction, args *abstract.Args) (abstract.CallOutcome, bool, error) {
	df, ok := bf.Underlying().(*abstract.DeclFunction)
	if !ok || df.Name() != "builtins.dict.__getitem__" {
		return abstract.CallOutcome{}, false, nil
	}
	if len(args.Positional) != 1 || len(args.Keywords) > 0 || args.Starargs != nil || args.Starstarargs != nil {
		return abstract.CallOutcome{}, false, nil
	}
	key, ok := constantKey(args.Positional[0])
	if !ok {
		return abstract.CallOutcome{}, false, nil
	}
	recv := bf.Receiver().Data()
	if len(recv) != 1 {
		return abstract.CallOutcome{}, false, nil
	}
	ci, ok := recv[0].(*abstract.ConcreteInstance)
	if !ok {
		return abstract.CallOutcome{}, false, nil
	}
	d := ci.Dict()
	if d == nil || d.Ambiguous {
		return abstract.CallOutcome{}, false, nil
	}
	if stored, present := d.Entries.Get(key); present {
		ret := m.actx.Program.NewVariable(ci.Name() + "[...]")
		ret.PasteVariable(stored.(*typegraph.Variable), node, nil)
		return abstract.CallOutcome{Return: ret, Node: node, Matched: true}, true, nil
	}
	m.report(diag.Event{
		Kind:   diag.KeyMissing,
		Pos:    m.pos,
		Callee: df.Name(),
		Detail: fmt.Sprintf("no entry for key %#v", key),
	})
	return abstract.CallOutcome{Return: m.actx.UnsolvableVar(ci.Name()+"[...]", node), Node: node, Matched: false}, true, nil
}

// constantKey extracts a hashable constant from a single-valued argument.
func constantKey(v *typegraph.Variable) (interface{}, bool) {
	data := v.Data()
	if len(data) != 1 {
		return nil, false
	}
	ci, ok := data[0].(*abstract.ConcreteInstance)
	if !ok {
		return nil, false
	}
	switch k := ci.Pyval().(type) {
	case string, int64, bool, float64:
		return k, true
	}
	return nil, false
}

func (m *Matcher) report(e diag.Event) {
	if m.actx.Diag != nil {
		m.actx.Diag.Add(e)
	}
}
