package abstract

import (
	"fmt"

	"github.com/pythiaco/pythia/golib/pyctx"
)

// GenericTypeError reports a self-contradictory generic class declaration,
// such as two unrelated concrete types supplied for one type parameter.
type GenericTypeError struct {
	Class  string
	Param  string
	Detail string
}

func (e *GenericTypeError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid generic declaration of %s: %s: %s", e.Class, e.Param, e.Detail)
	}
	return fmt.Sprintf("invalid generic declaration of %s: %s", e.Class, e.Detail)
}

// NewGenericAnnotation builds the Generic[...] special form used as a class
// base to introduce type parameters. Unlike InternParameterized it does not
// validate against the marker's own template, which is empty.
func NewGenericAnnotation(ctx *Context, params []*TypeParameter) (Value, error) {
	base, err := ctx.LoadClass("typing.Generic")
	if err != nil {
		return nil, err
	}
	full := make(map[string]Value, len(params))
	order := make([]string, 0, len(params))
	for _, tp := range params {
		if _, dup := full[tp.name]; dup {
			return nil, &GenericTypeError{Param: tp.name, Detail: "duplicate type parameter in Generic[...]"}
		}
		full[tp.name] = tp
		order = append(order, tp.name)
	}
	return &ParameterizedClass{ctx: ctx, base: base, params: full, order: order, formal: true}, nil
}

// parseTemplate determines which type parameters cls introduces and merges
// the parameter assignments its direct bases pin down. A Generic[...] base
// declares the template outright; otherwise the template is the formal
// parameters appearing in parameterized bases, in order of appearance.
//
// The merge over direct bases applies a three-way rule per qualified
// parameter: a formal argument records an alias link, a concrete argument
// records an assignment, and two concrete assignments must be related by
// inheritance, with the subtype winning.
func parseTemplate(ctx pyctx.CallContext, cls *InterpreterClass) ([]*TypeParameter, map[string]Value, error) {
	var (
		declared   []*TypeParameter
		hasGeneric bool
		inferred   []*TypeParameter
	)
	formals := make(map[string]Value)
	seen := make(map[string]bool)
	note := func(tp *TypeParameter) {
		if !seen[tp.name] {
			seen[tp.name] = true
			inferred = append(inferred, tp)
		}
	}
	for _, raw := range cls.rawBaseValues(ctx) {
		if isGenericMarker(raw) {
			return nil, nil, &GenericTypeError{Class: cls.name, Detail: "cannot inherit from plain Generic"}
		}
		pc, ok := raw.(*ParameterizedClass)
		if !ok {
			continue
		}
		if isGenericMarker(pc.base) {
			if hasGeneric {
				return nil, nil, &GenericTypeError{Class: cls.name, Detail: "duplicate Generic[...] base"}
			}
			hasGeneric = true
			for _, name := range pc.order {
				tp, ok := pc.params[name].(*TypeParameter)
				if !ok {
					return nil, nil, &GenericTypeError{Class: cls.name, Param: name, Detail: "Generic[...] accepts only type parameters"}
				}
				declared = append(declared, tp)
			}
			continue
		}
		baseName := underlying(pc.base).Name()
		for _, name := range pc.order {
			val := pc.params[name]
			qual := baseName + "." + name
			if val.Formal() {
				for _, tp := range collectTypeParams(val) {
					note(tp)
				}
				if _, taken := formals[qual]; !taken {
					formals[qual] = val
				}
				continue
			}
			prev, taken := formals[qual]
			if !taken {
				formals[qual] = val
				continue
			}
			if prev.Formal() || equal(ctx, prev, val) {
				continue
			}
			merged, ok := narrower(ctx, prev, val)
			if !ok {
				return nil, nil, &GenericTypeError{Class: cls.name, Param: qual, Detail: "conflicting concrete values"}
			}
			formals[qual] = merged
		}
	}
	if !hasGeneric {
		return inferred, formals, nil
	}
	names := make(map[string]bool, len(declared))
	for _, tp := range declared {
		names[tp.name] = true
	}
	for _, tp := range inferred {
		if !names[tp.name] {
			return nil, nil, &GenericTypeError{Class: cls.name, Param: tp.name, Detail: "type parameter not listed in Generic[...]"}
		}
	}
	return declared, formals, nil
}

// narrower picks the more specific of two concrete types when one inherits
// from the other.
func narrower(ctx pyctx.CallContext, a, b Value) (Value, bool) {
	if isSubclassOf(ctx, a, b) {
		return a, true
	}
	if isSubclassOf(ctx, b, a) {
		return b, true
	}
	return nil, false
}

// IsSubclass reports whether sub inherits from super, or is super itself.
// Parameterization is ignored on both sides.
func IsSubclass(ctx pyctx.CallContext, sub, super Value) bool {
	return isSubclassOf(ctx, sub, super)
}

// isSubclassOf reports whether sub's MRO contains super, comparing the
// unparameterized underlying classes.
func isSubclassOf(ctx pyctx.CallContext, sub, super Value) bool {
	c, ok := AsClass(sub)
	if !ok {
		return false
	}
	mro, err := c.MRO(ctx)
	if err != nil {
		return false
	}
	return containsClass(unparameterize(mro), underlying(super))
}

// TypeParamsIn lists the type parameters mentioned anywhere inside a formal
// type expression, in first-appearance order.
func TypeParamsIn(v Value) []*TypeParameter { return collectTypeParams(v) }

// collectTypeParams gathers the type parameters mentioned anywhere inside a
// formal type expression.
func collectTypeParams(v Value) []*TypeParameter {
	var out []*TypeParameter
	seen := make(map[*TypeParameter]bool)
	var walk func(Value)
	walk = func(v Value) {
		switch t := v.(type) {
		case *TypeParameter:
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		case *ParameterizedClass:
			for _, name := range t.order {
				walk(t.params[name])
			}
		case *Union:
			for _, o := range t.options {
				walk(o)
			}
		case *TupleClass:
			for _, e := range t.elements {
				walk(e)
			}
		case *CallableClass:
			for _, a := range t.args {
				walk(a)
			}
			walk(t.ret)
		}
	}
	walk(v)
	return out
}
