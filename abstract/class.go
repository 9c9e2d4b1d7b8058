package abstract

import (
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// ClassValue is the capability interface for values usable as the class of an
// instance. Capabilities are checked explicitly with AsClass rather than
// mixed into the value variants.
type ClassValue interface {
	Value

	// BaseValues returns the direct base class values in declaration order.
	// A parameterization of the Generic marker appears as the bare marker;
	// its parameters only declare the template.
	BaseValues(ctx pyctx.CallContext) []Value

	// MRO returns the C3 linearization of the class.
	MRO(ctx pyctx.CallContext) ([]Value, error)

	// Template returns the formal type parameters the class introduces, in
	// declaration order.
	Template(ctx pyctx.CallContext) ([]*TypeParameter, error)

	// OwnAttr returns an attribute defined directly on the class, or nil.
	OwnAttr(ctx pyctx.CallContext, name string) (Value, error)

	// OwnNew returns the class's own __new__ if it overrides the trivial
	// default, or nil. Construction dispatch branches on this.
	OwnNew(ctx pyctx.CallContext) (Value, error)

	// IsAbstract reports whether the class has abstract methods.
	IsAbstract() bool

	// IsProtocol reports whether the class is a structural protocol.
	IsProtocol() bool

	// HasDynamicAttrs reports whether instance attribute lookups may succeed
	// beyond the declared members.
	HasDynamicAttrs() bool
}

// AsClass checks whether a value can serve as a class.
func AsClass(v Value) (ClassValue, bool) {
	c, ok := v.(ClassValue)
	return c, ok
}

// InstanceValue is the capability interface for values that carry
// per-instance state: an attribute dict and the instance variables tracking
// the class's type parameters.
type InstanceValue interface {
	Value

	// TypeParamVar returns the instance variable tracking the given type
	// parameter name, creating it empty on first use.
	TypeParamVar(name string) *typegraph.Variable

	// Attrs returns the instance attribute dict.
	Attrs() map[string]*typegraph.Variable

	// SetAttr records an attribute assignment at node.
	SetAttr(name string, value *typegraph.Variable, node *typegraph.Node)

	// SetMaybeMissingAttrs marks the instance as analyzed imprecisely, so
	// that missing attributes stop being errors.
	SetMaybeMissingAttrs()

	// MaybeMissingAttrs reports whether the instance was analyzed
	// imprecisely.
	MaybeMissingAttrs() bool
}

// AsInstance checks whether a value carries instance state.
func AsInstance(v Value) (InstanceValue, bool) {
	i, ok := v.(InstanceValue)
	return i, ok
}

// classCache holds the lazily computed per-class data. Each is computed once
// from the MRO or the base list and then reused.
type classCache struct {
	mroDone bool
	mro     []Value
	mroErr  error

	tplDone  bool
	template []*TypeParameter
	formals  map[string]Value
	tplErr   error
}

// Instantiate models calling a class: construction dispatch. If the class
// overrides __new__, that is called first and __init__ runs only on results
// whose class is still the receiver. Otherwise the synthetic per-call-site
// instance is produced and __init__ runs on it. callsite identifies the
// textual allocation site.
func Instantiate(ctx pyctx.CallContext, cls ClassValue, clsBinding *typegraph.Binding, args *Args, node *typegraph.Node, callsite uint64) (CallOutcome, error) {
	ctx.CheckAbort()
	actx := cls.context()

	ownNew, err := cls.OwnNew(ctx)
	if err != nil {
		return CallOutcome{}, err
	}
	if ownNew != nil {
		return instantiateViaNew(ctx, cls, ownNew, args, node)
	}

	inst := actx.CachedInstance(cls, callsite)
	var sources []*typegraph.Binding
	if clsBinding != nil {
		sources = append(sources, clsBinding)
	}
	instVar := actx.Program.NewVariable(cls.Name() + "()")
	instBinding := instVar.AddBinding(inst, sources, node)

	node = callInit(ctx, inst, instBinding, args, node)
	return CallOutcome{Return: instVar, Node: node, Matched: true}, nil
}

// instantiateViaNew calls an overridden __new__ and then __init__ on the
// subset of its results whose concrete class equals the receiver. Objects of
// a different class returned by a custom __new__ must not receive an
// inherited __init__ call.
func instantiateViaNew(ctx pyctx.CallContext, cls ClassValue, ownNew Value, args *Args, node *typegraph.Node) (CallOutcome, error) {
	actx := cls.context()

	clsVar := actx.SingleVar(cls.Name(), cls, node)
	newVar := actx.SingleVar(cls.Name()+".__new__", ownNew, node)
	newArgs := args.WithSelf(clsVar)

	out, err := actx.callMatcher().Call(ctx, node, newVar.Bindings()[0], newArgs)
	if err != nil {
		return CallOutcome{}, err
	}
	node = out.Node

	for _, b := range out.Return.Bindings() {
		val, ok := b.Data().(Value)
		if !ok {
			continue
		}
		if !equal(ctx.Call(), val.Class(), cls) {
			continue
		}
		inst, ok := AsInstance(val)
		if !ok {
			continue
		}
		node = callInit(ctx, inst, b, args, node)
	}
	return CallOutcome{Return: out.Return, Node: node, Matched: out.Matched}, nil
}

// callInit looks up __init__ on the instance and calls it. If argument
// matching fails the call is retried once with synthetic placeholder
// arguments, so that the class's attribute shape is at least partially
// analyzed. Returns the program point after the call.
func callInit(ctx pyctx.CallContext, inst InstanceValue, instBinding *typegraph.Binding, args *Args, node *typegraph.Node) *typegraph.Node {
	actx := inst.context()

	initVar, err := Attr(ctx, instBinding, "__init__", node)
	if err != nil || initVar == nil {
		return node
	}
	for _, b := range initVar.Bindings() {
		out, err := actx.callMatcher().Call(ctx, node, b, args)
		if err != nil {
			continue
		}
		node = out.Node
		if !out.Matched {
			// placeholder arguments: variadic unknowns bind every formal to
			// an imprecise value regardless of arity
			fake := &Args{
				Starargs:     actx.UnsolvableVar("*args", node),
				Starstarargs: actx.UnsolvableVar("**kwargs", node),
			}
			if retry, err := actx.callMatcher().Call(ctx, node, b, fake); err == nil {
				node = retry.Node
			}
			inst.SetMaybeMissingAttrs()
		}
	}
	return node
}
