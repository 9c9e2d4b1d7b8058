package abstract

import (
	"strings"

	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// LoadClass resolves the class with the given fully qualified name to an
// interned class value. The shell is registered before any of its details
// are computed so that recursive references in bases or signatures resolve
// to the same value. Bare names fall back to builtins.
func (ctx *Context) LoadClass(name string) (Value, error) {
	if c, ok := ctx.declClasses[name]; ok {
		return c, nil
	}
	dc, err := ctx.Loader.LookupClass(name)
	if err != nil {
		if !strings.Contains(name, ".") {
			return ctx.LoadClass("builtins." + name)
		}
		return nil, err
	}
	c := &DeclClass{ctx: ctx, decl: dc}
	ctx.declClasses[name] = c
	return c, nil
}

// FunctionValue returns the interned value for a declared function.
func (ctx *Context) FunctionValue(f *decl.Function) *DeclFunction {
	if v, ok := ctx.declFuncs[f]; ok {
		return v
	}
	v := &DeclFunction{ctx: ctx, decl: f}
	ctx.declFuncs[f] = v
	return v
}

// LoadFunction resolves a fully qualified function name to a value.
func (ctx *Context) LoadFunction(name string) (Value, error) {
	df, err := ctx.Loader.LookupFunction(name)
	if err != nil {
		return nil, err
	}
	return ctx.FunctionValue(df), nil
}

// LoadModule converts a declared module into a module value whose members
// are variables at the root node. Constants become instances of their
// declared types.
func (ctx *Context) LoadModule(call pyctx.CallContext, name string) (Value, error) {
	if m, ok := ctx.modules[name]; ok {
		return m, nil
	}
	dm, err := ctx.Loader.LookupModule(name)
	if err != nil {
		return nil, err
	}
	m := NewModule(ctx, dm.Name)
	ctx.modules[name] = m
	for _, c := range dm.Classes {
		cv, err := ctx.LoadClass(c.Name)
		if err != nil {
			return nil, err
		}
		m.SetMember(shortName(c.Name), ctx.SingleVar(shortName(c.Name), cv, ctx.Root))
	}
	for _, f := range dm.Functions {
		m.SetMember(shortName(f.Name), ctx.SingleVar(shortName(f.Name), ctx.FunctionValue(f), ctx.Root))
	}
	for _, c := range dm.Constants {
		t, err := typeFromDecl(call, ctx, c.Type, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "converting constant %s", c.Name)
		}
		inst := InstanceOf(call, t, ctx.Root)
		m.SetMember(shortName(c.Name), ctx.SingleVar(shortName(c.Name), inst, ctx.Root))
	}
	return m, nil
}

func shortName(fq string) string {
	if i := strings.LastIndex(fq, "."); i >= 0 {
		return fq[i+1:]
	}
	return fq
}

// typeFromDecl converts a declared type expression to a value. scope maps
// in-scope type parameter names to their values and may be nil.
func typeFromDecl(call pyctx.CallContext, ctx *Context, t decl.Type, scope map[string]*TypeParameter) (Value, error) {
	call.CheckAbort()
	switch t := t.(type) {
	case decl.Named:
		return ctx.LoadClass(t.Name)
	case decl.Param:
		if tp, ok := scope[t.Name]; ok {
			return tp, nil
		}
		return ctx.unsolvable, nil
	case decl.Parameterized:
		base, err := typeFromDecl(call, ctx, t.Base, scope)
		if err != nil {
			return nil, err
		}
		cls, ok := AsClass(base)
		if !ok {
			return ctx.unsolvable, nil
		}
		tpl, err := cls.Template(call)
		if err != nil {
			return nil, err
		}
		params := make(map[string]Value)
		for i, pt := range t.Params {
			if i >= len(tpl) {
				break
			}
			pv, err := typeFromDecl(call, ctx, pt, scope)
			if err != nil {
				return nil, err
			}
			params[tpl[i].name] = pv
		}
		return ctx.InternParameterized(call, base, params)
	case decl.Union:
		var opts []Value
		for _, o := range t.Options {
			ov, err := typeFromDecl(call, ctx, o, scope)
			if err != nil {
				return nil, err
			}
			opts = append(opts, ov)
		}
		return ctx.unite(call, 0, opts), nil
	case decl.Callable:
		var args []Value
		for _, a := range t.Args {
			av, err := typeFromDecl(call, ctx, a, scope)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
		}
		ret, err := typeFromDecl(call, ctx, t.Return, scope)
		if err != nil {
			return nil, err
		}
		return NewCallableClass(ctx, args, ret), nil
	case decl.Tuple:
		var elts []Value
		for _, e := range t.Elements {
			ev, err := typeFromDecl(call, ctx, e, scope)
			if err != nil {
				return nil, err
			}
			elts = append(elts, ev)
		}
		return NewTupleClass(ctx, elts), nil
	case decl.Literal:
		return literalInstance(ctx, t.Value)
	case decl.Any:
		return ctx.unsolvable, nil
	case decl.Nothing:
		return ctx.empty, nil
	}
	return nil, errors.Errorf("unhandled declared type %T", t)
}

// literalInstance builds the constant instance denoted by a literal type.
func literalInstance(ctx *Context, pyval interface{}) (Value, error) {
	var clsName string
	switch pyval.(type) {
	case bool:
		clsName = "builtins.bool"
	case int64:
		clsName = "builtins.int"
	case string:
		clsName = "builtins.str"
	default:
		return nil, errors.Errorf("unsupported literal %v", pyval)
	}
	cls, err := ctx.LoadClass(clsName)
	if err != nil {
		return nil, err
	}
	return NewConcreteInstance(ctx, cls, pyval), nil
}

// typeParamsFromDecl converts declared type parameters. Conversion failures
// in constraints or bounds degrade to unsolvable rather than failing the
// whole template.
func typeParamsFromDecl(call pyctx.CallContext, ctx *Context, tps []decl.TypeParam, module string) []*TypeParameter {
	var out []*TypeParameter
	for _, tp := range tps {
		var constraints []Value
		for _, c := range tp.Constraints {
			cv, err := typeFromDecl(call, ctx, c, nil)
			if err != nil {
				cv = ctx.unsolvable
			}
			constraints = append(constraints, cv)
		}
		var bound Value
		if tp.Bound != nil {
			bv, err := typeFromDecl(call, ctx, tp.Bound, nil)
			if err != nil {
				bv = ctx.unsolvable
			}
			bound = bv
		}
		out = append(out, NewTypeParameter(ctx, tp.Name, module, constraints, bound, tp.Covariant, tp.Contravariant))
	}
	return out
}

// scopeOf builds a name lookup for the given declared type parameters.
func scopeOf(call pyctx.CallContext, ctx *Context, tps []decl.TypeParam, module string) map[string]*TypeParameter {
	if len(tps) == 0 {
		return nil
	}
	scope := make(map[string]*TypeParameter, len(tps))
	for _, tp := range typeParamsFromDecl(call, ctx, tps, module) {
		scope[tp.name] = tp
	}
	return scope
}

// elideGenericMarker collapses a parameterization of typing.Generic to the
// bare marker class. The parameter list only ever matters for template
// extraction, which reads it off the declaration instead.
func elideGenericMarker(call pyctx.CallContext, v Value) Value {
	if pc, ok := v.(*ParameterizedClass); ok && isGenericMarker(pc.base) {
		return pc.base
	}
	return v
}

func isGenericMarker(v Value) bool {
	dc, ok := v.(*DeclClass)
	return ok && dc.decl.Name == "typing.Generic"
}

// InstanceOf returns an instance of the given type value without running
// any initializer, for seeding constants, annotations and placeholder
// arguments. Ambiguous values and existing instances pass through.
func InstanceOf(call pyctx.CallContext, v Value, node *typegraph.Node) Value {
	call.CheckAbort()
	if _, ok := AsInstance(v); ok {
		return v
	}
	ctx := v.context()
	switch t := v.(type) {
	case *Union:
		opts := make([]Value, 0, len(t.options))
		for _, o := range t.options {
			opts = append(opts, InstanceOf(call, o, node))
		}
		return ctx.unite(call, 0, opts)
	case *ParameterizedClass:
		inst := NewInstance(ctx, t.base)
		for name, p := range t.params {
			pv := inst.TypeParamVar(name)
			pv.AddBinding(InstanceOf(call, p, node), nil, node)
		}
		return inst
	case *TupleClass:
		inst := NewInstance(ctx, t)
		pv := inst.TypeParamVar("T")
		for _, e := range t.elements {
			pv.AddBinding(InstanceOf(call, e, node), nil, node)
		}
		return inst
	case *TypeParameter:
		return ctx.unsolvable
	case *Unknown, *Unsolvable, *Empty:
		return v
	}
	if _, ok := AsClass(v); ok {
		return NewInstance(ctx, v)
	}
	return ctx.unsolvable
}
