package abstract

import (
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/golib/pyctx"
)

// underlying strips parameterization off a class value, so that list[int]
// and list[str] count as the same class during linearization.
func underlying(v Value) Value {
	if pc, ok := v.(*ParameterizedClass); ok {
		return pc.base
	}
	return v
}

// computeMRO linearizes the inheritance graph above cls with the C3 merge.
// The head of the result is cls itself, possibly parameterized; everything
// after it is unparameterized. An inheritance cycle is an error. An
// ambiguous ordering degrades to [cls, object], and an interpreter class
// that hits it additionally turns dynamic so attribute lookups stay usable.
func computeMRO(ctx pyctx.CallContext, cls Value) ([]Value, error) {
	return linearize(ctx, cls, make(map[Value]bool))
}

func linearize(ctx pyctx.CallContext, cls Value, visiting map[Value]bool) ([]Value, error) {
	ctx.CheckAbort()
	c, ok := AsClass(cls)
	if !ok {
		return []Value{cls}, nil
	}
	u := underlying(cls)
	if visiting[u] {
		return nil, errors.Errorf("cyclic inheritance involving %s", cls.Name())
	}
	visiting[u] = true
	defer delete(visiting, u)

	bases := c.BaseValues(ctx)
	seqs := make([][]Value, 0, len(bases)+1)
	baseMROs := make([][]Value, len(bases))
	for i, b := range bases {
		bm, err := baseMRO(ctx, b, visiting)
		if err != nil {
			return nil, err
		}
		baseMROs[i] = unparameterize(bm)
	}
	// A direct base that is a strict ancestor of a sibling base carries no
	// ordering information of its own and would only contradict the
	// sibling's linearization.
	kept := make([]Value, 0, len(bases))
	for i, b := range bases {
		redundant := false
		for j := range bases {
			if j == i {
				continue
			}
			if containsClass(baseMROs[j][1:], underlying(b)) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, b)
			seqs = append(seqs, baseMROs[i])
		}
	}
	if len(kept) > 0 {
		seqs = append(seqs, unparameterize(kept))
	}
	merged, ok := c3Merge(seqs)
	if !ok {
		if ic, isInterp := u.(*InterpreterClass); isInterp {
			ic.dynamic = true
		}
		out := []Value{cls}
		if obj, err := cls.context().LoadClass("builtins.object"); err == nil && obj != u {
			out = append(out, obj)
		}
		return out, nil
	}
	return append([]Value{cls}, merged...), nil
}

// baseMRO returns the linearization of a direct base, reusing a finished
// cache when one exists.
func baseMRO(ctx pyctx.CallContext, b Value, visiting map[Value]bool) ([]Value, error) {
	if mro, ok := cachedMRO(b); ok {
		return mro, nil
	}
	return linearize(ctx, b, visiting)
}

func cachedMRO(v Value) ([]Value, bool) {
	switch t := v.(type) {
	case *DeclClass:
		if t.mroDone && t.mroErr == nil {
			return t.mro, true
		}
	case *InterpreterClass:
		if t.mroDone && t.mroErr == nil {
			return t.mro, true
		}
	case *ParameterizedClass:
		if t.mroDone && t.mroErr == nil {
			return t.mro, true
		}
	case *TupleClass:
		if t.mroDone && t.mroErr == nil {
			return t.mro, true
		}
	case *CallableClass:
		if t.mroDone && t.mroErr == nil {
			return t.mro, true
		}
	}
	return nil, false
}

func unparameterize(vals []Value) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = underlying(v)
	}
	return out
}

func containsClass(vals []Value, cls Value) bool {
	for _, v := range vals {
		if v == cls {
			return true
		}
	}
	return false
}

// c3Merge merges the given linearizations, preserving the order within each
// one. It reports false when no consistent order exists.
func c3Merge(seqs [][]Value) ([]Value, bool) {
	work := make([][]Value, 0, len(seqs))
	for _, s := range seqs {
		if len(s) > 0 {
			work = append(work, s)
		}
	}
	var out []Value
	for len(work) > 0 {
		var head Value
		for _, s := range work {
			cand := s[0]
			if inAnyTail(work, cand) {
				continue
			}
			head = cand
			break
		}
		if head == nil {
			return nil, false
		}
		out = append(out, head)
		next := work[:0]
		for _, s := range work {
			if s[0] == head {
				s = s[1:]
			}
			if len(s) > 0 {
				next = append(next, s)
			}
		}
		work = next
	}
	return out, true
}

func inAnyTail(seqs [][]Value, cand Value) bool {
	for _, s := range seqs {
		for _, v := range s[1:] {
			if v == cand {
				return true
			}
		}
	}
	return false
}
