package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
	"github.com/pythiaco/pythia/views"
)

// callState accumulates the outcome of matching one call across views and
// overloads: the return variable under construction, the mutation node, the
// literal values consumed by narrow overloads and the ranked failures.
type callState struct {
	matcher *Matcher
	name    string
	origin  *typegraph.Node
	callee  *typegraph.Binding
	args    *abstract.Args
	sigs    []*abstract.Signature
	passed  []string

	// collectAll switches overload selection from first-match to
	// union-of-all-matches, for calls with ambiguous arguments.
	collectAll bool
	// barred holds constants already consumed by a Literal formal of an
	// earlier overload. They no longer match broader formals in this call.
	barred map[abstract.Value]bool

	ret     *typegraph.Variable
	matched bool
	mutNode *typegraph.Node
	best    *failure
	all     []*failure
}

// boundArg pairs one actual with the formal it was bound to. val is the
// view-resolved value; when nil the actual is matched against each of its
// bindings instead.
type boundArg struct {
	formal string
	v      *typegraph.Variable
	val    abstract.Value
}

// matchResult is the evidence of one signature accepting the arguments: the
// formal bindings, the type parameter candidates and the literals consumed.
type matchResult struct {
	bound    []boundArg
	subst    map[string][]abstract.Value
	literals []abstract.Value
}

func (r *matchResult) clone() *matchResult {
	out := &matchResult{
		bound:    r.bound,
		literals: append([]abstract.Value{}, r.literals...),
		subst:    make(map[string][]abstract.Value, len(r.subst)),
	}
	for k, v := range r.subst {
		out.subst[k] = append([]abstract.Value{}, v...)
	}
	return out
}

// adopt replaces the accumulated state with a trial that succeeded.
func (r *matchResult) adopt(t *matchResult) {
	r.subst = t.subst
	r.literals = t.literals
}

// callSignatures runs the matching state machine for one callable's overload
// set. Generic overloads are matched once per view of the arguments, so that
// each joint assignment resolves type parameters consistently; everything
// else gets a single pass over the bindings.
func (m *Matcher) callSignatures(ctx pyctx.CallContext, node *typegraph.Node, callee *typegraph.Binding, name string, sigs []*abstract.Signature, args *abstract.Args) (abstract.CallOutcome, error) {
	ctx.CheckAbort()
	args = args.Simplify(ctx, node)

	c := &callState{
		matcher:    m,
		name:       name,
		origin:     node,
		callee:     callee,
		args:       args,
		sigs:       sigs,
		passed:     renderArgs(args),
		collectAll: len(sigs) > 1 && args.HasAmbiguous(),
		barred:     make(map[abstract.Value]bool),
		ret:        m.actx.Program.NewVariable(name + "()"),
	}

	if needsViews(sigs) {
		e := views.NewEnumerator(dedupVars(args.Variables()), node, views.Opts{
			MaxProduct:  m.opts.MaxViewProduct,
			DefaultData: m.actx.Unsolvable(),
		})
		processed := 0
		for {
			view, ok := e.Next()
			if !ok {
				break
			}
			processed++
			c.matchView(ctx, view)
			// matching is deterministic in the values the view handed out, so
			// every later view agreeing on them would repeat this result
			e.MarkExhausted(view)
		}
		if processed == 0 && !c.matched && c.best == nil {
			// an argument variable with no feasible value: the call cannot
			// actually happen
			c.ret.AddBinding(m.actx.Empty(), []*typegraph.Binding{callee}, node)
			return abstract.CallOutcome{Return: c.ret, Node: node, Matched: true}, nil
		}
	} else {
		c.matchView(ctx, nil)
	}

	outNode := c.origin
	if c.mutNode != nil {
		outNode = c.mutNode
	}
	if c.matched {
		return abstract.CallOutcome{Return: c.ret, Node: outNode, Matched: true}, nil
	}
	c.reportFailures()
	if len(c.ret.Bindings()) == 0 {
		c.ret.AddBinding(m.actx.Unsolvable(), []*typegraph.Binding{callee}, node)
	}
	return abstract.CallOutcome{Return: c.ret, Node: outNode, Matched: false}, nil
}

// needsViews reports whether any overload involves type parameters. Only
// then does the joint choice of argument values matter; otherwise each
// argument can be checked against its bindings independently.
func needsViews(sigs []*abstract.Signature) bool {
	for _, s := range sigs {
		if s.IsGeneric() {
			return true
		}
	}
	return false
}

func dedupVars(vars []*typegraph.Variable) []*typegraph.Variable {
	seen := make(map[*typegraph.Variable]bool, len(vars))
	out := make([]*typegraph.Variable, 0, len(vars))
	for _, v := range vars {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// matchView runs the overload loop for one joint argument assignment. A nil
// view checks each argument against all of its bindings.
func (c *callState) matchView(ctx pyctx.CallContext, view *views.View) {
	ctx.CheckAbort()
	type success struct {
		sig *abstract.Signature
		res *matchResult
	}
	var successes []success
	for _, sig := range c.sigs {
		res, fail := c.matchSignature(ctx, sig, view)
		if fail != nil {
			c.keep(fail)
			continue
		}
		for _, lv := range res.literals {
			c.barred[lv] = true
		}
		successes = append(successes, success{sig, res})
		if !c.collectAll {
			break
		}
	}
	if len(successes) == 0 {
		return
	}
	c.matched = true
	rets := make([]abstract.Value, 0, len(successes))
	for _, s := range successes {
		c.applyMutations(ctx, s.sig, s.res)
		rets = append(rets, c.returnValue(ctx, s.sig, s.res))
	}
	retVal := rets[0]
	if len(rets) > 1 {
		retVal = c.matcher.actx.Unite(ctx.Context(), rets...)
	}
	c.ret.AddBinding(retVal, c.sources(view), c.origin)
}

// sources lists the bindings a view-specific result depends on: the callee
// plus every argument binding the match consulted.
func (c *callState) sources(view *views.View) []*typegraph.Binding {
	out := []*typegraph.Binding{c.callee}
	if view != nil {
		for _, b := range view.Accessed() {
			out = append(out, b)
		}
	}
	return out
}

// matchSignature binds the actuals to sig's formals and type-checks each
// pair. It returns the failure that rules the signature out, if any.
func (c *callState) matchSignature(ctx pyctx.CallContext, sig *abstract.Signature, view *views.View) (*matchResult, *failure) {
	ctx.CheckAbort()
	kwStart := sig.KwOnlyStart

	// pull synthetic elements out of a symbolic *args before zipping, so an
	// unknown-length tuple covers the positional formals instead of failing
	needed := 0
	for _, p := range sig.Params[:kwStart] {
		if c.args.Keyword(p) == nil {
			needed++
		}
	}
	args := c.args.ExpandForCount(ctx, c.origin, needed)

	res := &matchResult{subst: make(map[string][]abstract.Value)}
	seen := make(map[string]bool)

	for i, pv := range args.Positional {
		if i < kwStart {
			formal := sig.Params[i]
			seen[formal] = true
			res.bound = append(res.bound, boundArg{formal: formal, v: pv})
			continue
		}
		if sig.Vararg == "" {
			return nil, c.fail(sig, diag.WrongArgCount, "",
				fmt.Sprintf("%d positional arguments, at most %d accepted", len(args.Positional), kwStart))
		}
		res.bound = append(res.bound, boundArg{formal: sig.Vararg, v: pv})
	}

	for _, kw := range args.Keywords {
		switch {
		case sig.HasParam(kw.Name):
			if seen[kw.Name] {
				return nil, c.fail(sig, diag.DuplicateKeyword, kw.Name, "passed both positionally and by keyword")
			}
			seen[kw.Name] = true
			res.bound = append(res.bound, boundArg{formal: kw.Name, v: kw.Value})
		case sig.Kwarg != "":
			res.bound = append(res.bound, boundArg{formal: sig.Kwarg, v: kw.Value})
		default:
			return nil, c.fail(sig, diag.WrongKeywordArgs, kw.Name, "unexpected keyword argument")
		}
	}

	for i, p := range sig.Params {
		if seen[p] || sig.HasDefault(p) {
			continue
		}
		// a surviving symbolic *args or **kwargs may still supply it, at an
		// unknown type
		if args.Starstarargs != nil || (i < kwStart && args.Starargs != nil) {
			continue
		}
		return nil, c.fail(sig, diag.MissingParameter, p, "missing required argument")
	}

	for i := range res.bound {
		ba := &res.bound[i]
		if view != nil {
			if b := view.Get(ba.v); b != nil {
				ba.val = b.Data().(abstract.Value)
			}
		}
		if f := c.checkArg(ctx, sig, ba, res); f != nil {
			return nil, f
		}
	}
	return res, nil
}

// checkArg type-checks one bound actual. Under a view the actual is the
// view's value for the variable; otherwise any one matching binding
// suffices, adopting the first.
func (c *callState) checkArg(ctx pyctx.CallContext, sig *abstract.Signature, ba *boundArg, res *matchResult) *failure {
	ann := sig.Annotations[ba.formal]
	if ba.val != nil {
		return c.checkValue(ctx, sig, ba.formal, ba.val, ann, res)
	}
	data := ba.v.Data()
	if len(data) == 0 {
		return nil
	}
	var firstFail *failure
	for _, d := range data {
		val, ok := d.(abstract.Value)
		if !ok {
			continue
		}
		trial := res.clone()
		f := c.checkValue(ctx, sig, ba.formal, val, ann, trial)
		if f == nil {
			res.adopt(trial)
			return nil
		}
		if firstFail == nil {
			firstFail = f
		}
	}
	return firstFail
}

// checkValue reports whether val can inhabit the annotation, accumulating
// type parameter candidates along the way.
func (c *callState) checkValue(ctx pyctx.CallContext, sig *abstract.Signature, formal string, val abstract.Value, ann abstract.Value, res *matchResult) *failure {
	ctx.CheckAbort()
	if tp, ok := val.(*abstract.TypeParameter); ok {
		return c.fail(sig, diag.TypeVarAsValue, formal,
			fmt.Sprintf("type parameter %s used as a value", tp.Name()))
	}
	if c.barred[val] {
		if _, literal := ann.(*abstract.ConcreteInstance); !literal {
			return c.fail(sig, diag.WrongArgTypes, formal, "constant already claimed by a narrower overload")
		}
	}
	if ann == nil {
		return nil
	}
	if abstract.IsAmbiguous(val) {
		c.accumulateAmbiguous(ann, res)
		return nil
	}
	if tp, ok := ann.(*abstract.TypeParameter); ok {
		return c.bindTypeParam(ctx, sig, formal, tp, val, res)
	}
	if u, ok := val.(*abstract.Union); ok {
		// a union actual is safe only if every option is
		for _, opt := range u.Options() {
			if f := c.checkValue(ctx, sig, formal, opt, ann, res); f != nil {
				return f
			}
		}
		return nil
	}
	if tpi, ok := val.(*abstract.TypeParameterInstance); ok {
		return c.checkAnchored(ctx, sig, formal, tpi, ann, res)
	}

	switch a := ann.(type) {
	case *abstract.Union:
		var firstFail *failure
		for _, opt := range a.Options() {
			trial := res.clone()
			f := c.checkValue(ctx, sig, formal, val, opt, trial)
			if f == nil {
				res.adopt(trial)
				return nil
			}
			if firstFail == nil {
				firstFail = f
			}
		}
		return firstFail
	case *abstract.ConcreteInstance:
		if cv, ok := val.(*abstract.ConcreteInstance); ok && abstract.Equal(ctx.Context(), cv, a) {
			res.literals = append(res.literals, val)
			return nil
		}
		return c.fail(sig, diag.WrongArgTypes, formal, "expected "+a.Name())
	case *abstract.ParameterizedClass:
		return c.checkParameterized(ctx, sig, formal, val, a, res)
	case *abstract.TupleClass:
		return c.checkTuple(ctx, sig, formal, val, a, res)
	case *abstract.CallableClass:
		return c.checkCallable(ctx, sig, formal, val, a, res)
	case *abstract.Unsolvable:
		return nil
	case *abstract.Empty:
		return c.fail(sig, diag.WrongArgTypes, formal, "no value inhabits the expected type")
	}

	if _, ok := abstract.AsClass(ann); ok {
		if c.instanceOfClass(ctx, val, ann) {
			return nil
		}
		return c.fail(sig, diag.WrongArgTypes, formal, "expected "+ann.Name())
	}
	return nil
}

// checkAnchored matches a type parameter instance through the values
// anchored in its carrying instance. With nothing anchored the parameter is
// still unconstrained and anything goes.
func (c *callState) checkAnchored(ctx pyctx.CallContext, sig *abstract.Signature, formal string, tpi *abstract.TypeParameterInstance, ann abstract.Value, res *matchResult) *failure {
	anchored := tpi.Instance().TypeParamVar(tpi.Param().Name()).Data()
	if len(anchored) == 0 {
		c.accumulateAmbiguous(ann, res)
		return nil
	}
	var firstFail *failure
	for _, d := range anchored {
		trial := res.clone()
		f := c.checkValue(ctx, sig, formal, d.(abstract.Value), ann, trial)
		if f == nil {
			res.adopt(trial)
			return nil
		}
		if firstFail == nil {
			firstFail = f
		}
	}
	return firstFail
}

// bindTypeParam accumulates val as a candidate for the type parameter after
// checking the parameter's bound and constraints. Candidates for the same
// parameter must stay related by inheritance; otherwise the interpretation
// is inconsistent and the signature is ruled out.
func (c *callState) bindTypeParam(ctx pyctx.CallContext, sig *abstract.Signature, formal string, tp *abstract.TypeParameter, val abstract.Value, res *matchResult) *failure {
	if b := tp.Bound(); b != nil && !abstract.IsAmbiguous(b) {
		if !c.instanceOfClass(ctx, val, b) {
			return c.fail(sig, diag.WrongArgTypes, formal,
				fmt.Sprintf("%s is bounded by %s", tp.Name(), b.Name()))
		}
	}
	if cons := tp.Constraints(); len(cons) > 0 {
		ok := false
		for _, cv := range cons {
			if abstract.IsAmbiguous(cv) || c.instanceOfClass(ctx, val, cv) {
				ok = true
				break
			}
		}
		if !ok {
			return c.fail(sig, diag.WrongArgTypes, formal,
				fmt.Sprintf("%s does not satisfy the constraints of %s", val.Name(), tp.Name()))
		}
	}
	key := paramKey(tp)
	for _, prev := range res.subst[key] {
		if !related(ctx, prev, val) {
			return c.fail(sig, diag.WrongArgTypes, formal,
				fmt.Sprintf("conflicting values for %s", tp.Name()))
		}
	}
	res.subst[key] = append(res.subst[key], val)
	return nil
}

// checkParameterized matches val against a parameterized annotation: an
// instance of the base class whose tracked element values recursively fit
// the annotation's parameters.
func (c *callState) checkParameterized(ctx pyctx.CallContext, sig *abstract.Signature, formal string, val abstract.Value, ann *abstract.ParameterizedClass, res *matchResult) *failure {
	if !c.instanceOfClass(ctx, val, ann.Base()) {
		return c.fail(sig, diag.WrongArgTypes, formal, "expected "+ann.Name())
	}
	inst, ok := abstract.AsInstance(val)
	if !ok {
		return nil
	}
	params := ann.Params()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data := inst.TypeParamVar(name).Data()
		if len(data) == 0 {
			continue
		}
		if f := c.checkElements(ctx, sig, formal, data, params[name], res); f != nil {
			return f
		}
	}
	return nil
}

// checkElements matches the tracked element values of one container
// parameter. Against a bare type parameter the alternatives funnel into a
// single united candidate; against a concrete type each one must fit.
func (c *callState) checkElements(ctx pyctx.CallContext, sig *abstract.Signature, formal string, data []typegraph.Data, p abstract.Value, res *matchResult) *failure {
	if tp, ok := p.(*abstract.TypeParameter); ok {
		vals := make([]abstract.Value, 0, len(data))
		for _, d := range data {
			vals = append(vals, d.(abstract.Value))
		}
		return c.bindTypeParam(ctx, sig, formal, tp, c.matcher.actx.Unite(ctx.Context(), vals...), res)
	}
	for _, d := range data {
		if f := c.checkValue(ctx, sig, formal, d.(abstract.Value), p, res); f != nil {
			return f
		}
	}
	return nil
}

// checkTuple matches val against a tuple annotation. Fixed-length element
// positions are not tracked on instances, so only the overall class and a
// single formal element parameter are enforced.
func (c *callState) checkTuple(ctx pyctx.CallContext, sig *abstract.Signature, formal string, val abstract.Value, ann *abstract.TupleClass, res *matchResult) *failure {
	if tupleCls, err := c.matcher.actx.LoadClass("builtins.tuple"); err == nil {
		if !c.instanceOfClass(ctx, val, tupleCls) {
			return c.fail(sig, diag.WrongArgTypes, formal, "expected "+ann.Name())
		}
	}
	tps := abstract.TypeParamsIn(ann)
	if len(tps) != 1 {
		return nil
	}
	inst, ok := abstract.AsInstance(val)
	if !ok {
		return nil
	}
	data := inst.TypeParamVar("T").Data()
	if len(data) == 0 {
		return nil
	}
	return c.checkElements(ctx, sig, formal, data, tps[0], res)
}

// checkCallable matches val against a Callable annotation. The argument
// slots are not enforced; the return slot is matched when the function's
// produced type is visible, which is what lets map-style callbacks resolve
// type parameters.
func (c *callState) checkCallable(ctx pyctx.CallContext, sig *abstract.Signature, formal string, val abstract.Value, ann *abstract.CallableClass, res *matchResult) *failure {
	switch val.Kind() {
	case abstract.FunctionKind, abstract.ClassKind:
	default:
		return c.fail(sig, diag.WrongArgTypes, formal, "expected "+ann.Name())
	}
	if ann.Return() == nil {
		return nil
	}
	if ret := c.callableReturn(ctx, val); ret != nil {
		return c.checkValue(ctx, sig, formal, ret, ann.Return(), res)
	}
	c.accumulateAmbiguous(ann.Return(), res)
	return nil
}

// callableReturn recovers the value a function argument produces, for
// matching against the return slot of a Callable annotation.
func (c *callState) callableReturn(ctx pyctx.CallContext, val abstract.Value) abstract.Value {
	var ret abstract.Value
	switch f := val.(type) {
	case *abstract.BoundFunction:
		return c.callableReturn(ctx, f.Underlying())
	case *abstract.InterpreterFunction:
		if sig := f.Signature(); sig != nil {
			ret = sig.Return
		}
	case *abstract.DeclFunction:
		if sigs, err := f.Signatures(ctx); err == nil && len(sigs) == 1 {
			ret = sigs[0].Return
		}
	}
	if ret == nil || ret.Formal() {
		return nil
	}
	return abstract.InstanceOf(ctx, ret, c.origin)
}

// accumulateAmbiguous resolves every type parameter the annotation mentions
// to unsolvable, so an ambiguous actual never leaves a parameter dangling.
func (c *callState) accumulateAmbiguous(ann abstract.Value, res *matchResult) {
	if ann == nil {
		return
	}
	for _, tp := range abstract.TypeParamsIn(ann) {
		key := paramKey(tp)
		res.subst[key] = append(res.subst[key], c.matcher.actx.Unsolvable())
	}
}

// instanceOfClass reports whether val is usable where an instance of cls is
// expected.
func (c *callState) instanceOfClass(ctx pyctx.CallContext, val, cls abstract.Value) bool {
	if cls.Name() == "builtins.object" {
		return true
	}
	if u, ok := val.(*abstract.Union); ok {
		for _, opt := range u.Options() {
			if !c.instanceOfClass(ctx, opt, cls) {
				return false
			}
		}
		return true
	}
	if tpi, ok := val.(*abstract.TypeParameterInstance); ok {
		anchored := tpi.Instance().TypeParamVar(tpi.Param().Name()).Data()
		if len(anchored) == 0 {
			return true
		}
		for _, d := range anchored {
			if c.instanceOfClass(ctx, d.(abstract.Value), cls) {
				return true
			}
		}
		return false
	}
	if abstract.IsAmbiguous(val) {
		return true
	}
	return abstract.IsSubclass(ctx, val.Class(), cls)
}

// related reports whether two candidates could describe the same type
// parameter: either is ambiguous, or their classes are related by
// inheritance. A union is related if any option is.
func related(ctx pyctx.CallContext, a, b abstract.Value) bool {
	if abstract.IsAmbiguous(a) || abstract.IsAmbiguous(b) {
		return true
	}
	if u, ok := a.(*abstract.Union); ok {
		for _, o := range u.Options() {
			if related(ctx, o, b) {
				return true
			}
		}
		return false
	}
	if u, ok := b.(*abstract.Union); ok {
		for _, o := range u.Options() {
			if related(ctx, a, o) {
				return true
			}
		}
		return false
	}
	ac, bc := a.Class(), b.Class()
	return abstract.IsSubclass(ctx, ac, bc) || abstract.IsSubclass(ctx, bc, ac)
}

func paramKey(tp *abstract.TypeParameter) string {
	if tp.Module() == "" {
		return tp.Name()
	}
	return tp.Module() + "." + tp.Name()
}

// returnValue builds the value a matched signature returns. Type parameters
// that never received a candidate come out unsolvable.
func (c *callState) returnValue(ctx pyctx.CallContext, sig *abstract.Signature, res *matchResult) abstract.Value {
	if sig.Return == nil {
		return c.matcher.actx.Unsolvable()
	}
	return c.instantiate(ctx, sig.Return, res.subst)
}

// instantiate converts an annotation under a substitution into a value. A
// bare type parameter resolves to the matched argument values themselves,
// which is what keeps constants flowing through identity-shaped functions.
func (c *callState) instantiate(ctx pyctx.CallContext, ann abstract.Value, subst map[string][]abstract.Value) abstract.Value {
	actx := c.matcher.actx
	switch a := ann.(type) {
	case *abstract.TypeParameter:
		if cands := subst[paramKey(a)]; len(cands) > 0 {
			return actx.Unite(ctx.Context(), cands...)
		}
		return actx.Unsolvable()
	case *abstract.Union:
		opts := make([]abstract.Value, 0, len(a.Options()))
		for _, o := range a.Options() {
			opts = append(opts, c.instantiate(ctx, o, subst))
		}
		return actx.Unite(ctx.Context(), opts...)
	case *abstract.ParameterizedClass:
		if !a.Formal() {
			return abstract.InstanceOf(ctx, a, c.origin)
		}
		inst := abstract.NewInstance(actx, a.Base())
		for name, p := range a.Params() {
			inst.TypeParamVar(name).AddBinding(c.instantiate(ctx, p, subst), nil, c.origin)
		}
		return inst
	case *abstract.TupleClass:
		if !a.Formal() {
			return abstract.InstanceOf(ctx, a, c.origin)
		}
		tupleCls, err := actx.LoadClass("builtins.tuple")
		if err != nil {
			return actx.Unsolvable()
		}
		inst := abstract.NewInstance(actx, tupleCls)
		pv := inst.TypeParamVar("T")
		for _, e := range a.Elements() {
			pv.AddBinding(c.instantiate(ctx, e, subst), nil, c.origin)
		}
		return inst
	}
	return abstract.InstanceOf(ctx, ann, c.origin)
}

// fail builds a candidate failure for ranking. Nothing is reported until the
// whole call is known to have no matching interpretation.
func (c *callState) fail(sig *abstract.Signature, kind diag.Kind, param, detail string) *failure {
	return &failure{
		kind:   kind,
		callee: c.name,
		sig:    sig,
		param:  param,
		detail: detail,
		passed: c.passed,
	}
}

// keep folds a failure into the running best and, in strict mode, the full
// list.
func (c *callState) keep(f *failure) {
	if f == nil {
		return
	}
	if c.matcher.opts.StrictParameterChecks {
		c.all = append(c.all, f)
	}
	if f.beats(c.best) {
		c.best = f
	}
}

// reportFailures surfaces the collected failures once no interpretation of
// the call matched.
func (c *callState) reportFailures() {
	if c.matcher.opts.StrictParameterChecks {
		for _, f := range c.all {
			c.matcher.report(f.event(c.matcher.pos))
		}
		return
	}
	if c.best != nil {
		c.matcher.report(c.best.event(c.matcher.pos))
	}
}

// renderArgs renders the actuals once per call for diagnostics.
func renderArgs(args *abstract.Args) []string {
	var out []string
	for _, p := range args.Positional {
		out = append(out, renderVar(p))
	}
	for _, kw := range args.Keywords {
		out = append(out, kw.Name+"="+renderVar(kw.Value))
	}
	if args.Starargs != nil {
		out = append(out, "*"+renderVar(args.Starargs))
	}
	if args.Starstarargs != nil {
		out = append(out, "**"+renderVar(args.Starstarargs))
	}
	return out
}

func renderVar(v *typegraph.Variable) string {
	data := v.Data()
	names := make([]string, 0, len(data))
	for _, d := range data {
		if val, ok := d.(abstract.Value); ok {
			names = append(names, val.Name())
		}
	}
	if len(names) == 0 {
		return "<empty>"
	}
	return strings.Join(names, " | ")
}
