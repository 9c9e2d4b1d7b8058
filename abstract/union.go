package abstract

import (
	"strings"

	"github.com/pythiaco/pythia/golib/pyctx"
)

// It is possible to write python code that generates huge union types, but
// if the number of options is above this threshold then it is unlikely that
// we were going to get anything reasonable out of it anyway, so we just
// restrict the total union size.
const maxUnionSize = 25

// It is also possible to write python code that generates deeply nested
// union types (lists of dicts of tuples of...) so here we cap the depth
// fairly tightly (since the cost tends to grow exponentially with depth)
const maxUnionDepth = 6

// Union is a value that is one of several possible values. The option list
// is flattened and deduplicated; it never contains another union, an
// unsolvable or fewer than two entries.
type Union struct {
	ctx     *Context
	options []Value
}

// Options returns the alternative values.
func (v *Union) Options() []Value { return v.options }

// Name implements Value
func (v *Union) Name() string {
	parts := make([]string, len(v.options))
	for i, o := range v.options {
		parts[i] = o.Name()
	}
	return "Union[" + strings.Join(parts, ", ") + "]"
}

// Kind implements Value
func (v *Union) Kind() Kind { return UnionKind }

// Class implements Value
func (v *Union) Class() Value {
	classes := make([]Value, len(v.options))
	for i, o := range v.options {
		classes[i] = o.Class()
	}
	return v.ctx.Unite(pyctx.TODO(), classes...)
}

// Formal implements Value. A union is formal if any option is.
func (v *Union) Formal() bool {
	for _, o := range v.options {
		if o.Formal() {
			return true
		}
	}
	return false
}

func (v *Union) context() *Context { return v.ctx }

func (v *Union) key(ctx pyctx.CallContext) uint64 {
	// options are unordered for equality purposes, so combine their hashes
	// with an order independent fold
	var h uint64
	for _, o := range v.options {
		h += hash(ctx, o)
	}
	return rehash(saltUnion, h)
}

func (v *Union) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*Union)
	if !ok {
		return false
	}
	if len(v.options) != len(o.options) {
		return false
	}
	matched := make([]bool, len(o.options))
outer:
	for _, a := range v.options {
		for i, b := range o.options {
			if !matched[i] && equal(ctx, a, b) {
				matched[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func (v *Union) String() string { return v.Name() }

// Unite merges values into a single value: nested unions are flattened,
// equal values are deduplicated, empty is dropped and unsolvable absorbs
// everything. Parameterizations of the same generic base are merged pointwise
// so that repeated widening converges.
func (ctx *Context) Unite(c pyctx.Context, vals ...Value) Value {
	var res Value
	err := c.WithCallLimit(maxSteps, func(call pyctx.CallContext) error {
		res = ctx.unite(call, 0, vals)
		return nil
	})
	if err != nil {
		return ctx.unsolvable
	}
	return res
}

func (ctx *Context) unite(call pyctx.CallContext, depth int, vals []Value) Value {
	if depth > maxUnionDepth || call.AtCallLimit() {
		return ctx.unsolvable
	}
	var flat []Value
	for _, v := range vals {
		if v == nil {
			continue
		}
		switch t := v.(type) {
		case *Union:
			flat = append(flat, t.options...)
		case *Empty:
			// identity element
		case *Unsolvable:
			return ctx.unsolvable
		default:
			flat = append(flat, v)
		}
	}

	var opts []Value
outer:
	for _, v := range flat {
		for _, u := range opts {
			if equal(call, u, v) {
				continue outer
			}
		}
		opts = append(opts, v)
		if len(opts) > maxUnionSize {
			return ctx.unsolvable
		}
	}

	opts = ctx.mergeParameterized(call, depth, opts)

	switch len(opts) {
	case 0:
		return ctx.empty
	case 1:
		return opts[0]
	}
	return &Union{ctx: ctx, options: opts}
}

// mergeParameterized collapses options that parameterize the same generic
// base into one parameterization with pointwise united parameters.
func (ctx *Context) mergeParameterized(call pyctx.CallContext, depth int, opts []Value) []Value {
	byBase := make(map[Value][]*ParameterizedClass)
	for _, o := range opts {
		if pc, ok := o.(*ParameterizedClass); ok {
			byBase[pc.base] = append(byBase[pc.base], pc)
		}
	}

	var out []Value
	merged := make(map[Value]bool)
	for _, o := range opts {
		pc, ok := o.(*ParameterizedClass)
		if !ok {
			out = append(out, o)
			continue
		}
		group := byBase[pc.base]
		if len(group) < 2 {
			out = append(out, o)
			continue
		}
		if merged[pc.base] {
			continue
		}
		merged[pc.base] = true

		params := make(map[string]Value)
		for _, g := range group {
			for name, val := range g.params {
				if prev, ok := params[name]; ok {
					params[name] = ctx.unite(call, depth+1, []Value{prev, val})
				} else {
					params[name] = val
				}
			}
		}
		mergedClass, err := ctx.InternParameterized(call, pc.base, params)
		if err != nil {
			for _, g := range group {
				out = append(out, g)
			}
			continue
		}
		out = append(out, mergedClass)
	}
	return out
}
