package abstract

import (
	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// CallOutcome is what the matcher reports back for one call.
type CallOutcome struct {
	// Return holds the possible return values
	Return *typegraph.Variable
	// Node is the program point after the call, a fresh one if the call
	// applied mutations
	Node *typegraph.Node
	// Matched reports whether at least one interpretation of the call
	// succeeded. An unmatched call still produces an imprecise Return.
	Matched bool
}

// CallMatcher applies a callable binding to arguments. The matcher package
// provides the implementation; the indirection keeps this package from
// depending on it.
type CallMatcher interface {
	Call(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, args *Args) (CallOutcome, error)
}

// Context owns all abstract values of one analysis run along with the program
// graph they bind into. It also carries the caches that keep value creation
// bounded: equivalent constructions are interned and allocation sites share
// instances.
type Context struct {
	Program *typegraph.Program
	// Root is the entry program point. Values that exist before any analyzed
	// code runs originate here.
	Root    *typegraph.Node
	Loader  decl.Loader
	Diag    *diag.Log
	Matcher CallMatcher

	unsolvable *Unsolvable
	empty      *Empty
	numUnknown int
	numValues  int

	declClasses   map[string]*DeclClass
	declFuncs     map[*decl.Function]*DeclFunction
	modules       map[string]*Module
	parameterized map[uint64][]*ParameterizedClass
	instances     map[instanceKey]*Instance
}

type instanceKey struct {
	class    Value
	callsite uint64
}

// NewContext creates a context with a fresh program graph whose root node is
// already created.
func NewContext(loader decl.Loader, log *diag.Log) *Context {
	program := typegraph.NewProgram()
	ctx := &Context{
		Program:       program,
		Root:          program.NewNode("root"),
		Loader:        loader,
		Diag:          log,
		declClasses:   make(map[string]*DeclClass),
		declFuncs:     make(map[*decl.Function]*DeclFunction),
		modules:       make(map[string]*Module),
		parameterized: make(map[uint64][]*ParameterizedClass),
		instances:     make(map[instanceKey]*Instance),
	}
	ctx.unsolvable = &Unsolvable{ctx: ctx}
	ctx.empty = &Empty{ctx: ctx}
	return ctx
}

// Unsolvable returns the context's single maximally imprecise value.
func (ctx *Context) Unsolvable() Value { return ctx.unsolvable }

// Empty returns the context's single bottom value.
func (ctx *Context) Empty() Value { return ctx.empty }

// NewUnknown creates a fresh unknown value that records its usage.
func (ctx *Context) NewUnknown() *Unknown {
	ctx.numUnknown++
	return &Unknown{
		ctx: ctx,
		id:  ctx.numUnknown,
	}
}

// nextID hands out identities for values that are distinct per definition
// site rather than per structure.
func (ctx *Context) nextID() int {
	ctx.numValues++
	return ctx.numValues
}

// SingleVar creates a variable holding just the given value, originating at
// node.
func (ctx *Context) SingleVar(name string, v Value, node *typegraph.Node) *typegraph.Variable {
	out := ctx.Program.NewVariable(name)
	out.AddBinding(v, nil, node)
	return out
}

// UnsolvableVar creates a variable holding just the unsolvable value.
func (ctx *Context) UnsolvableVar(name string, node *typegraph.Node) *typegraph.Variable {
	return ctx.SingleVar(name, ctx.unsolvable, node)
}

// CachedInstance returns the one synthetic instance for a (class, call site)
// pair. Every textual allocation site produces a single abstract object no
// matter how many times it executes.
func (ctx *Context) CachedInstance(class Value, callsite uint64) *Instance {
	k := instanceKey{class: class, callsite: callsite}
	if inst, ok := ctx.instances[k]; ok {
		return inst
	}
	inst := NewInstance(ctx, class)
	ctx.instances[k] = inst
	return inst
}

// callMatcher returns the wired matcher, panicking if analysis began without
// one.
func (ctx *Context) callMatcher() CallMatcher {
	if ctx.Matcher == nil {
		panic("abstract: no call matcher wired into context")
	}
	return ctx.Matcher
}

// report logs a diagnostics event if a log is attached.
func (ctx *Context) report(e diag.Event) {
	if ctx.Diag != nil {
		ctx.Diag.Add(e)
	}
}
