package interp

import (
	"strings"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// RunFunction implements matcher.BodyRunner: it executes the body of an
// interpreted function with the caller's arguments bound to its parameters.
// Outcomes are memoized in the call cache; the recursion budget is enforced
// here, degrading to unsolvable instead of unwinding.
func (i *Interpreter) RunFunction(ctx pyctx.CallContext, node *typegraph.Node, fn *abstract.InterpreterFunction, args *abstract.Args) (abstract.CallOutcome, error) {
	ctx.CheckAbort()
	i.stats.Calls++

	def, ok := fn.Body.(*FuncDef)
	if !ok || fn.Signature() == nil {
		// not defined by executed code (for example a declared stub wrapped
		// as an interpreted function), so only its shape is known
		return abstract.CallOutcome{Return: i.actx.UnsolvableVar(fn.Name()+"()", node), Node: node, Matched: true}, nil
	}
	args = args.Simplify(ctx, node)

	if ctx.AtCallLimit() && !initLike(fn.Name()) {
		i.report(diag.Event{
			Kind:   diag.RecursionLimit,
			Pos:    i.pos,
			Callee: fn.Name(),
			Sig:    fn.Signature().String(),
		})
		markMaybeMissing(args)
		return abstract.CallOutcome{Return: i.actx.UnsolvableVar(fn.Name()+"()", node), Node: node, Matched: true}, nil
	}

	key := i.callKey(fn, node, args)
	remaining := ctx.Remaining()
	if e, ok := i.cache.lookup(key, remaining); ok {
		i.stats.CacheHits++
		return abstract.CallOutcome{Return: e.ret, Node: node, Matched: e.matched}, nil
	}

	out, err := i.callFunction(ctx, node, fn, def, args)
	if err != nil {
		return abstract.CallOutcome{}, err
	}
	i.cache.store(key, callEntry{ret: out.Return, matched: out.Matched, remaining: remaining})
	i.stats.CacheStores++
	return out, nil
}

// callFunction checks the argument shape and executes the body. A
// structural mismatch fails the call without running the body; type
// questions stay with signature matching, since the body is analyzed with
// the actual values either way.
func (i *Interpreter) callFunction(ctx pyctx.CallContext, node *typegraph.Node, fn *abstract.InterpreterFunction, def *FuncDef, args *abstract.Args) (abstract.CallOutcome, error) {
	if ev, ok := i.checkShape(fn.Signature(), args); !ok {
		i.report(ev)
		return abstract.CallOutcome{Return: i.actx.UnsolvableVar(fn.Name()+"()", node), Node: node, Matched: false}, nil
	}
	return i.execFunction(ctx.Call(), node, fn, def, args)
}

// checkShape validates the argument shape against the signature: positional
// count, duplicate and unknown keywords, and parameters left without any
// source. Variadic arguments cover whatever cannot be decided.
func (i *Interpreter) checkShape(sig *abstract.Signature, args *abstract.Args) (diag.Event, bool) {
	ev := diag.Event{Pos: i.pos, Callee: sig.Name, Sig: sig.String()}
	if len(args.Positional) > len(sig.Params) && sig.Vararg == "" {
		ev.Kind = diag.WrongArgCount
		return ev, false
	}
	for idx, name := range sig.Params {
		if idx < len(args.Positional) && args.Keyword(name) != nil {
			ev.Kind = diag.DuplicateKeyword
			ev.BadParam = name
			return ev, false
		}
	}
	if sig.Kwarg == "" {
		for _, kw := range args.Keywords {
			if !sig.HasParam(kw.Name) {
				ev.Kind = diag.WrongKeywordArgs
				ev.BadParam = kw.Name
				return ev, false
			}
		}
	}
	if args.Starargs == nil && args.Starstarargs == nil {
		for idx, name := range sig.Params {
			if idx >= len(args.Positional) && args.Keyword(name) == nil && !sig.HasDefault(name) {
				ev.Kind = diag.MissingParameter
				ev.BadParam = name
				return ev, false
			}
		}
	}
	return diag.Event{}, true
}

// initLike reports whether a function is an initializer. Initializers stay
// exempt from the recursion budget so the attribute shape of classes under
// construction is still discovered.
func initLike(name string) bool {
	return name == "__init__" || strings.HasSuffix(name, ".__init__") ||
		name == "__new__" || strings.HasSuffix(name, ".__new__")
}

// markMaybeMissing flags the instance interpretations of a degraded call's
// receiver, so later attribute reads on them stop treating absences as
// precise.
func markMaybeMissing(args *abstract.Args) {
	if len(args.Positional) == 0 {
		return
	}
	for _, b := range args.Positional[0].Bindings() {
		v, ok := b.Data().(abstract.Value)
		if !ok {
			continue
		}
		if inst, ok := abstract.AsInstance(v); ok {
			inst.SetMaybeMissingAttrs()
		}
	}
}

// execFunction runs a function body in a fresh frame rooted at the call
// node and joins the return paths into the single node the caller resumes
// at.
func (i *Interpreter) execFunction(ctx pyctx.CallContext, node *typegraph.Node, fn *abstract.InterpreterFunction, def *FuncDef, args *abstract.Args) (abstract.CallOutcome, error) {
	i.trace("--- call %s (depth %d)", fn.Name(), ctx.Depth())
	module, _ := fn.Globals.(*abstract.Module)
	fr := &frame{
		name:    fn.Name(),
		src:     i.src,
		module:  module,
		scope:   make(map[string]*typegraph.Variable),
		node:    node,
		ret:     i.actx.Program.NewVariable(fn.Name() + "()"),
		pending: make(map[string][]*typegraph.Node),
	}
	if err := i.bindParams(fr, fn.Signature(), args, node); err != nil {
		return abstract.CallOutcome{}, err
	}
	if err := i.execBody(ctx, fr, def.Body); err != nil {
		return abstract.CallOutcome{}, err
	}
	if fr.node != nil {
		// falling off the end returns None
		nv, err := i.constValue(nil)
		if err != nil {
			return abstract.CallOutcome{}, err
		}
		fr.ret.AddBinding(nv, nil, fr.node)
		fr.exits = append(fr.exits, fr.node)
	}
	exit := joinExits(fr, fn.Name())
	if exit == nil {
		exit = node
	}
	ret := fr.ret
	if len(ret.Bindings()) == 0 {
		ret = i.actx.UnsolvableVar(fn.Name()+"()", exit)
	}
	return abstract.CallOutcome{Return: ret, Node: exit, Matched: true}, nil
}

// joinExits merges the nodes at which control left the body into the single
// program point the caller resumes at.
func joinExits(fr *frame, name string) *typegraph.Node {
	switch len(fr.exits) {
	case 0:
		return nil
	case 1:
		return fr.exits[0]
	}
	out := fr.exits[0].ConnectNew("exit " + name)
	for _, e := range fr.exits[1:] {
		e.ConnectTo(out)
	}
	return out
}

// bindParams seeds the local scope from the arguments. Arity and type
// questions belong to signature matching; here extra arguments are dropped
// and missing ones degrade, so the body is analyzed with whatever is known.
func (i *Interpreter) bindParams(fr *frame, sig *abstract.Signature, args *abstract.Args, node *typegraph.Node) error {
	for idx, name := range sig.Params {
		v := i.actx.Program.NewVariable(name)
		switch {
		case idx < len(args.Positional):
			v.PasteVariable(args.Positional[idx], node, nil)
		case args.Keyword(name) != nil:
			v.PasteVariable(args.Keyword(name), node, nil)
		case sig.Defaults[name] != nil:
			v.PasteVariable(sig.Defaults[name], node, nil)
		default:
			v = i.actx.UnsolvableVar(name, node)
		}
		fr.scope[name] = v
	}
	if sig.Vararg != "" {
		vv, err := i.varargValue(fr, sig, args, node)
		if err != nil {
			return err
		}
		fr.scope[sig.Vararg] = vv
	}
	if sig.Kwarg != "" {
		kv, err := i.kwargValue(fr, sig, args, node)
		if err != nil {
			return err
		}
		fr.scope[sig.Kwarg] = kv
	}
	return nil
}

// varargValue binds *args: the surplus positionals as a tuple literal, or
// the caller's own starargs when nothing else is known.
func (i *Interpreter) varargValue(fr *frame, sig *abstract.Signature, args *abstract.Args, node *typegraph.Node) (*typegraph.Variable, error) {
	if len(args.Positional) <= len(sig.Params) && args.Starargs != nil {
		out := i.actx.Program.NewVariable(sig.Vararg)
		out.PasteVariable(args.Starargs, node, nil)
		return out, nil
	}
	var surplus []*typegraph.Variable
	if len(args.Positional) > len(sig.Params) {
		surplus = args.Positional[len(sig.Params):]
	}
	cls, err := i.actx.LoadClass("builtins.tuple")
	if err != nil {
		return nil, err
	}
	ci := abstract.NewConcreteInstance(i.actx, cls, surplus)
	tvar := ci.TypeParamVar("T")
	for _, e := range surplus {
		tvar.PasteVariable(e, node, nil)
	}
	return i.actx.SingleVar(sig.Vararg, ci, node), nil
}

// kwargValue binds **kwargs: the keywords no declared parameter consumed as
// a dict literal, or the caller's own starstarargs when nothing else is
// known.
func (i *Interpreter) kwargValue(fr *frame, sig *abstract.Signature, args *abstract.Args, node *typegraph.Node) (*typegraph.Variable, error) {
	var extra []abstract.KeywordArg
	for _, kw := range args.Keywords {
		if !sig.HasParam(kw.Name) {
			extra = append(extra, kw)
		}
	}
	if len(extra) == 0 && args.Starstarargs != nil {
		out := i.actx.Program.NewVariable(sig.Kwarg)
		out.PasteVariable(args.Starstarargs, node, nil)
		return out, nil
	}
	cls, err := i.actx.LoadClass("builtins.dict")
	if err != nil {
		return nil, err
	}
	d := abstract.NewConstDict()
	ci := abstract.NewConcreteInstance(i.actx, cls, d)
	for _, kw := range extra {
		d.Entries.Set(kw.Name, kw.Value)
		ci.TypeParamVar("V").PasteVariable(kw.Value, node, nil)
	}
	if args.Starstarargs != nil {
		d.Ambiguous = true
	}
	return i.actx.SingleVar(sig.Kwarg, ci, node), nil
}

// function returns the value for a definition, creating it on first use so
// repeated passes rebind the same value and the call cache stays warm.
func (i *Interpreter) function(ctx pyctx.CallContext, fr *frame, def *FuncDef, qual string) (*abstract.InterpreterFunction, error) {
	if fn, ok := i.fns[def]; ok {
		return fn, nil
	}
	sig, err := i.signature(ctx, def, qual)
	if err != nil {
		return nil, err
	}
	fn := abstract.NewInterpreterFunction(i.actx, qual, sig)
	fn.Body = def
	fn.Globals = fr.module
	i.fns[def] = fn
	return fn, nil
}

// signature converts the declared parameter shapes. Annotations name
// classes; a parameter without one matches anything.
func (i *Interpreter) signature(ctx pyctx.CallContext, def *FuncDef, qual string) (*abstract.Signature, error) {
	sig := &abstract.Signature{
		Name:        qual,
		Vararg:      def.Vararg,
		Kwarg:       def.Kwarg,
		Defaults:    make(map[string]*typegraph.Variable),
		Annotations: make(map[string]abstract.Value),
	}
	for _, p := range def.Params {
		sig.Params = append(sig.Params, p.Name)
		var ann abstract.Value
		if p.Type != "" {
			a, err := i.actx.LoadClass(p.Type)
			if err != nil {
				return nil, err
			}
			ann = a
			sig.Annotations[p.Name] = a
		}
		if p.Optional {
			if ann == nil {
				sig.Defaults[p.Name] = i.actx.UnsolvableVar(p.Name, i.actx.Root)
			} else {
				sig.Defaults[p.Name] = i.actx.SingleVar(p.Name, abstract.InstanceOf(ctx, ann, i.actx.Root), i.actx.Root)
			}
		}
	}
	sig.KwOnlyStart = len(sig.Params)
	if def.Returns != "" {
		r, err := i.actx.LoadClass(def.Returns)
		if err != nil {
			return nil, err
		}
		sig.Return = r
	}
	return sig, nil
}

// class returns the value for a class definition, creating it on first use
// so every pass and allocation site shares one class identity.
func (i *Interpreter) class(ctx pyctx.CallContext, fr *frame, def *ClassDef) (*abstract.InterpreterClass, error) {
	if cls, ok := i.classes[def]; ok {
		return cls, nil
	}
	qual := fr.name + "." + def.Name
	var bases []*typegraph.Variable
	for _, bname := range def.Bases {
		bases = append(bases, i.resolveName(fr, bname))
	}
	members := make(map[string]*typegraph.Variable)
	for _, m := range def.Methods {
		fn, err := i.function(ctx, fr, m, qual+"."+m.Name)
		if err != nil {
			return nil, err
		}
		members[m.Name] = i.actx.SingleVar(m.Name, fn, fr.node)
	}
	cls := abstract.NewInterpreterClass(i.actx, qual, bases, members)
	i.classes[def] = cls
	return cls, nil
}

func (i *Interpreter) report(e diag.Event) {
	if i.actx.Diag != nil {
		i.actx.Diag.Add(e)
	}
}
