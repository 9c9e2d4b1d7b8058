// Package interp executes op streams over the program graph, creating
// bindings, nodes and calls as it goes. It is the body runner the matcher
// delegates interpreted function calls to, which is why the recursion budget
// and the call cache live here rather than in the matcher.
package interp

import (
	"fmt"
	"io"
	"time"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/matcher"
	"github.com/pythiaco/pythia/typegraph"
)

// Options control interpretation.
type Options struct {
	// Passes is the number of times the module body is executed. Later
	// passes see bindings created by earlier ones, so forward references
	// and mutually recursive definitions settle.
	Passes int

	// MaxLoadDepth bounds recursive calls during the first pass, which
	// establishes the module's shape.
	MaxLoadDepth int

	// MaxDepth bounds recursive calls during the remaining passes.
	MaxDepth int
}

// DefaultOptions is the configuration analysis runs use unless overridden.
var DefaultOptions = Options{
	Passes:       3,
	MaxLoadDepth: 2,
	MaxDepth:     4,
}

// Stats counts interpreter work, for reporting after a run.
type Stats struct {
	Passes      int
	Calls       int
	CacheHits   int
	CacheStores int
}

// Interpreter executes op streams. One interpreter serves one
// abstract.Context; creating it installs it as the matcher's body runner.
type Interpreter struct {
	actx *abstract.Context
	m    *matcher.Matcher
	opts Options

	cache    *callCache
	fnIDs    map[*abstract.InterpreterFunction]uint64
	fns      map[*FuncDef]*abstract.InterpreterFunction
	classes  map[*ClassDef]*abstract.InterpreterClass
	builtins map[string]*typegraph.Variable

	// moduleNodes keeps the control flow nodes of the module body stable
	// across passes; the body always re-executes from the root.
	moduleNodes map[*Op]*typegraph.Node

	// consts and literals keep the result variables of constant and
	// literal ops stable across passes, so repeated passes rebind the
	// same variables instead of growing the program.
	consts   map[*Op]*typegraph.Variable
	literals map[*Op]*typegraph.Variable

	src   *Source
	pos   diag.Pos
	stats Stats

	traceWriter io.Writer
}

// New creates an interpreter over actx and wires it into m as the body
// runner.
func New(actx *abstract.Context, m *matcher.Matcher, opts Options) (*Interpreter, error) {
	cache, err := newCallCache()
	if err != nil {
		return nil, err
	}
	i := &Interpreter{
		actx:        actx,
		m:           m,
		opts:        opts,
		cache:       cache,
		fnIDs:       make(map[*abstract.InterpreterFunction]uint64),
		fns:         make(map[*FuncDef]*abstract.InterpreterFunction),
		classes:     make(map[*ClassDef]*abstract.InterpreterClass),
		builtins:    make(map[string]*typegraph.Variable),
		moduleNodes: make(map[*Op]*typegraph.Node),
		consts:      make(map[*Op]*typegraph.Variable),
		literals:    make(map[*Op]*typegraph.Variable),
	}
	m.Runner = i
	return i, nil
}

// SetTrace sets a writer that receives a line per pass and executed op.
func (i *Interpreter) SetTrace(w io.Writer) {
	i.traceWriter = w
}

func (i *Interpreter) trace(format string, objs ...interface{}) {
	if i.traceWriter != nil {
		fmt.Fprintf(i.traceWriter, format+"\n", objs...)
	}
}

// Stats returns the counters accumulated so far.
func (i *Interpreter) Stats() Stats { return i.stats }

// Run executes the program's module body opts.Passes times and returns the
// resulting module. The first pass defines the module under the load
// budget; later passes re-execute it under the analysis budget, so
// information discovered late reaches constructs executed early.
func (i *Interpreter) Run(ctx pyctx.Context, src *Source) (*abstract.Module, error) {
	ctx.CheckAbort()
	passes := i.opts.Passes
	if passes <= 0 {
		passes = 1
	}
	i.src = src
	module := abstract.NewModule(i.actx, src.Name)

	for pass := 0; pass < passes; pass++ {
		limit := i.opts.MaxDepth
		if pass == 0 {
			limit = i.opts.MaxLoadDepth
			i.trace("### LOAD PASS")
		} else {
			i.trace("### PROPAGATION PASS %d", pass)
		}
		start := time.Now()
		err := ctx.WithCallLimit(limit, func(call pyctx.CallContext) error {
			return i.runPass(call, module, src)
		})
		if err != nil {
			return nil, err
		}
		i.stats.Passes++
		if ctx.Logger != nil {
			ctx.Logger.Durations.Record("pass", start)
			ctx.Logger.Printf("pass %d/%d: %d nodes, %d bindings, %d calls",
				pass+1, passes, i.actx.Program.NumNodes(), i.actx.Program.NumBindings(), i.stats.Calls)
		}
	}
	return module, nil
}

// runPass executes the module body once, starting at the root node.
func (i *Interpreter) runPass(ctx pyctx.CallContext, module *abstract.Module, src *Source) error {
	ctx.CheckAbort()
	fr := &frame{
		name:    src.Name,
		src:     src,
		module:  module,
		node:    i.actx.Root,
		ret:     i.actx.Program.NewVariable(src.Name + ".return"),
		pending: make(map[string][]*typegraph.Node),
		nodes:   i.moduleNodes,
	}
	return i.execBody(ctx, fr, src.Body)
}
