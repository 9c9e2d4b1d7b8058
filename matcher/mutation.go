package matcher

import (
	"fmt"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// applyMutations widens the tracked type parameters of arguments the matched
// signature declares as mutated. All widenings of one call land on a single
// successor node, so the program point only splits once per call however
// many containers change.
func (c *callState) applyMutations(ctx pyctx.CallContext, sig *abstract.Signature, res *matchResult) {
	if len(sig.Mutations) == 0 {
		return
	}
	for _, ba := range res.bound {
		mut, ok := sig.Mutations[ba.formal]
		if !ok {
			continue
		}
		pc, ok := mut.(*abstract.ParameterizedClass)
		if !ok {
			panic(fmt.Sprintf("matcher: mutation of %s in %s is not a parameterized class", ba.formal, sig.Name))
		}
		for _, target := range mutationTargets(ba) {
			c.mutate(ctx, target, pc, res)
		}
	}
}

// mutationTargets lists the instances the bound actual can refer to.
// Ambiguous receivers carry no element state and are skipped.
func mutationTargets(ba boundArg) []abstract.InstanceValue {
	var vals []abstract.Value
	if ba.val != nil {
		vals = []abstract.Value{ba.val}
	} else {
		for _, d := range ba.v.Data() {
			if val, ok := d.(abstract.Value); ok {
				vals = append(vals, val)
			}
		}
	}
	var out []abstract.InstanceValue
	for _, v := range vals {
		if inst, ok := abstract.AsInstance(v); ok {
			out = append(out, inst)
		}
	}
	return out
}

// mutate adds the substituted element values to the instance's tracked
// parameter variables at the call's mutation node.
func (c *callState) mutate(ctx pyctx.CallContext, target abstract.InstanceValue, mut *abstract.ParameterizedClass, res *matchResult) {
	node := c.mutationNode()
	for name, p := range mut.Params() {
		newVal := c.instantiate(ctx, p, res.subst)
		pv := target.TypeParamVar(name)
		if c.matcher.opts.CheckContainerMutations {
			c.checkMutation(ctx, target, name, pv, newVal)
		}
		pv.AddBinding(newVal, nil, node)
	}
}

// mutationNode returns the node this call's mutations land on, creating it
// on first use.
func (c *callState) mutationNode() *typegraph.Node {
	if c.mutNode == nil {
		c.mutNode = c.origin.ConnectNew("after " + c.name)
	}
	return c.mutNode
}

// checkMutation reports a widening that adds an element type unrelated to
// everything already in the container. The widened value folds the old
// elements back in, so each union option is judged on its own. The widening
// is still applied; downstream reads see the union either way.
func (c *callState) checkMutation(ctx pyctx.CallContext, target abstract.InstanceValue, param string, pv *typegraph.Variable, newVal abstract.Value) {
	existing := pv.Data()
	if len(existing) == 0 {
		return
	}
	options := []abstract.Value{newVal}
	if u, ok := newVal.(*abstract.Union); ok {
		options = u.Options()
	}
	for _, opt := range options {
		if abstract.IsAmbiguous(opt) {
			continue
		}
		ok := false
		for _, d := range existing {
			if val, isVal := d.(abstract.Value); isVal && related(ctx, val, opt) {
				ok = true
				break
			}
		}
		if !ok {
			c.matcher.report(diag.Event{
				Kind:     diag.WrongArgTypes,
				Pos:      c.matcher.pos,
				Callee:   c.name,
				BadParam: param,
				Detail:   fmt.Sprintf("%s widened with unrelated %s", target.Name(), opt.Name()),
			})
			return
		}
	}
}
