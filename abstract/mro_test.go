package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

func newTestContext(t *testing.T) (*Context, pyctx.CallContext) {
	t.Helper()
	ctx := NewContext(decl.StdLoader(), diag.NewLog())
	var call pyctx.CallContext
	return ctx, call
}

func baseVars(ctx *Context, vals ...Value) []*typegraph.Variable {
	out := make([]*typegraph.Variable, 0, len(vals))
	for _, v := range vals {
		out = append(out, ctx.SingleVar(v.Name(), v, ctx.Root))
	}
	return out
}

func mroNames(mro []Value) []string {
	out := make([]string, 0, len(mro))
	for _, v := range mro {
		out = append(out, v.Name())
	}
	return out
}

func TestMRO_Linear(t *testing.T) {
	ctx, call := newTestContext(t)

	boolCls, err := ctx.LoadClass("builtins.bool")
	require.NoError(t, err)
	cls, ok := AsClass(boolCls)
	require.True(t, ok)

	mro, err := cls.MRO(call)
	require.NoError(t, err)
	assert.Equal(t, []string{"builtins.bool", "builtins.int", "builtins.object"}, mroNames(mro))
}

func TestMRO_DuplicatedGenericBase(t *testing.T) {
	ctx, call := newTestContext(t)

	T := NewTypeParameter(ctx, "T", "test", nil, nil, false, false)
	genT, err := NewGenericAnnotation(ctx, []*TypeParameter{T})
	require.NoError(t, err)

	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	strCls, err := ctx.LoadClass("builtins.str")
	require.NoError(t, err)

	a := NewInterpreterClass(ctx, "A", baseVars(ctx, genT), nil)
	aInt, err := ctx.InternParameterized(call, a, map[string]Value{"T": intCls})
	require.NoError(t, err)
	b := NewInterpreterClass(ctx, "B", baseVars(ctx, aInt), nil)
	aStr, err := ctx.InternParameterized(call, a, map[string]Value{"T": strCls})
	require.NoError(t, err)
	c := NewInterpreterClass(ctx, "C", baseVars(ctx, aStr, b), nil)

	mro, err := c.MRO(call)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A", "typing.Generic", "builtins.object"}, mroNames(mro))

	// the two parameterizations of A must not appear as distinct entries
	seen := 0
	for _, v := range mro {
		if underlying(v) == Value(a) {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}

func TestMRO_ParameterizedHead(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	lInt, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": intCls})
	require.NoError(t, err)

	cls, ok := AsClass(lInt)
	require.True(t, ok)
	mro, err := cls.MRO(call)
	require.NoError(t, err)

	// the parameterization stands in for its base in the linearization
	require.NotEmpty(t, mro)
	assert.Same(t, lInt, mro[0])
	assert.Same(t, listCls, underlying(mro[0]))
	assert.Equal(t, []string{"builtins.object"}, mroNames(mro[1:]))
}

func TestMRO_CycleFails(t *testing.T) {
	ctx, call := newTestContext(t)

	// bases are variables, so a cycle can be tied after construction
	aBase := ctx.Program.NewVariable("abase")
	a := NewInterpreterClass(ctx, "A", []*typegraph.Variable{aBase}, nil)
	b := NewInterpreterClass(ctx, "B", baseVars(ctx, a), nil)
	aBase.AddBinding(b, nil, ctx.Root)

	_, err := a.MRO(call)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic inheritance")
}

func TestMRO_AmbiguousOrderFallsBack(t *testing.T) {
	ctx, call := newTestContext(t)

	// X(A, B) and Y(B, A) give Z(X, Y) no consistent order
	a := NewInterpreterClass(ctx, "A", nil, nil)
	b := NewInterpreterClass(ctx, "B", nil, nil)
	x := NewInterpreterClass(ctx, "X", baseVars(ctx, a, b), nil)
	y := NewInterpreterClass(ctx, "Y", baseVars(ctx, b, a), nil)
	z := NewInterpreterClass(ctx, "Z", baseVars(ctx, x, y), nil)

	mro, err := z.MRO(call)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "builtins.object"}, mroNames(mro))
	assert.True(t, z.HasDynamicAttrs())
}

func TestTemplate_FromGenericMarker(t *testing.T) {
	ctx, call := newTestContext(t)

	T := NewTypeParameter(ctx, "T", "test", nil, nil, false, false)
	U := NewTypeParameter(ctx, "U", "test", nil, nil, false, false)
	gen, err := NewGenericAnnotation(ctx, []*TypeParameter{T, U})
	require.NoError(t, err)

	a := NewInterpreterClass(ctx, "A", baseVars(ctx, gen), nil)
	tpl, err := a.Template(call)
	require.NoError(t, err)
	require.Len(t, tpl, 2)
	assert.Equal(t, "T", tpl[0].Name())
	assert.Equal(t, "U", tpl[1].Name())
}

func TestTemplate_InheritedFormalArg(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	U := NewTypeParameter(ctx, "U", "test", nil, nil, false, false)
	lU, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": U})
	require.NoError(t, err)

	// class A(List[U]) introduces U and aliases builtins.list.T to it
	a := NewInterpreterClass(ctx, "A", baseVars(ctx, lU), nil)
	tpl, err := a.Template(call)
	require.NoError(t, err)
	require.Len(t, tpl, 1)
	assert.Equal(t, "U", tpl[0].Name())

	formals, err := a.Formals(call)
	require.NoError(t, err)
	assert.Same(t, U, formals["builtins.list.T"])
}

func TestTemplate_ConflictingConcreteValues(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	strCls, err := ctx.LoadClass("builtins.str")
	require.NoError(t, err)

	lInt, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": intCls})
	require.NoError(t, err)
	lStr, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": strCls})
	require.NoError(t, err)

	d := NewInterpreterClass(ctx, "D", baseVars(ctx, lInt, lStr), nil)
	_, err = d.Template(call)
	require.Error(t, err)
	gte, ok := err.(*GenericTypeError)
	require.True(t, ok)
	assert.Equal(t, "builtins.list.T", gte.Param)
}

func TestTemplate_RelatedConcreteValuesNarrow(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	boolCls, err := ctx.LoadClass("builtins.bool")
	require.NoError(t, err)

	lInt, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": intCls})
	require.NoError(t, err)
	lBool, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": boolCls})
	require.NoError(t, err)

	e := NewInterpreterClass(ctx, "E", baseVars(ctx, lInt, lBool), nil)
	_, err = e.Template(call)
	require.NoError(t, err)

	formals, err := e.Formals(call)
	require.NoError(t, err)
	assert.Same(t, boolCls, formals["builtins.list.T"])
}

func TestTemplate_ShallowMergeIgnoresTransitiveBases(t *testing.T) {
	ctx, call := newTestContext(t)

	T := NewTypeParameter(ctx, "T", "test", nil, nil, false, false)
	genT, err := NewGenericAnnotation(ctx, []*TypeParameter{T})
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	strCls, err := ctx.LoadClass("builtins.str")
	require.NoError(t, err)

	a := NewInterpreterClass(ctx, "A", baseVars(ctx, genT), nil)
	aInt, err := ctx.InternParameterized(call, a, map[string]Value{"T": intCls})
	require.NoError(t, err)
	b := NewInterpreterClass(ctx, "B", baseVars(ctx, aInt), nil)
	aStr, err := ctx.InternParameterized(call, a, map[string]Value{"T": strCls})
	require.NoError(t, err)

	// B pins A.T to int, but only B's own declaration sees that; C's merge
	// covers direct bases only and must not conflict
	c := NewInterpreterClass(ctx, "C", baseVars(ctx, aStr, b), nil)
	_, err = c.Template(call)
	require.NoError(t, err)

	formals, err := c.Formals(call)
	require.NoError(t, err)
	assert.Same(t, strCls, formals["A.T"])
}

func TestTemplate_PlainGenericBaseFails(t *testing.T) {
	ctx, call := newTestContext(t)

	gen, err := ctx.LoadClass("typing.Generic")
	require.NoError(t, err)
	a := NewInterpreterClass(ctx, "A", baseVars(ctx, gen), nil)

	_, err = a.Template(call)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain Generic")
}

func TestTemplate_FormalNotListedInGeneric(t *testing.T) {
	ctx, call := newTestContext(t)

	T := NewTypeParameter(ctx, "T", "test", nil, nil, false, false)
	U := NewTypeParameter(ctx, "U", "test", nil, nil, false, false)
	genT, err := NewGenericAnnotation(ctx, []*TypeParameter{T})
	require.NoError(t, err)
	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	lU, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": U})
	require.NoError(t, err)

	a := NewInterpreterClass(ctx, "A", baseVars(ctx, genT, lU), nil)
	_, err = a.Template(call)
	require.Error(t, err)
	gte, ok := err.(*GenericTypeError)
	require.True(t, ok)
	assert.Equal(t, "U", gte.Param)
}

func TestInternParameterized_UnknownName(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	_, err = ctx.InternParameterized(call, listCls, map[string]Value{"K": intCls})
	require.Error(t, err)
	_, ok := err.(*GenericTypeError)
	assert.True(t, ok)
}

func TestInternParameterized_Interned(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	first, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": intCls})
	require.NoError(t, err)
	second, err := ctx.InternParameterized(call, listCls, map[string]Value{"T": intCls})
	require.NoError(t, err)
	assert.Same(t, first, second)

	// missing names fill with unsolvable and still intern consistently
	bare, err := ctx.InternParameterized(call, listCls, nil)
	require.NoError(t, err)
	pc, ok := bare.(*ParameterizedClass)
	require.True(t, ok)
	assert.Same(t, ctx.Unsolvable(), pc.TypeParam("T"))
}
