package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythiaco/pythia/typegraph"
)

func TestArgs_SimplifyConstantTuple(t *testing.T) {
	ctx, call := newTestContext(t)

	tupleCls, err := ctx.LoadClass("builtins.tuple")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	e1 := ctx.SingleVar("e1", NewInstance(ctx, intCls), ctx.Root)
	e2 := ctx.SingleVar("e2", NewInstance(ctx, intCls), ctx.Root)
	lit := NewConcreteInstance(ctx, tupleCls, []*typegraph.Variable{e1, e2})

	p := ctx.UnsolvableVar("p", ctx.Root)
	args := &Args{
		Positional: []*typegraph.Variable{p},
		Starargs:   ctx.SingleVar("star", lit, ctx.Root),
	}
	out := args.Simplify(call, ctx.Root)

	require.Len(t, out.Positional, 3)
	assert.Same(t, p, out.Positional[0])
	assert.Same(t, e1, out.Positional[1])
	assert.Same(t, e2, out.Positional[2])
	assert.Nil(t, out.Starargs)

	// the receiver stays untouched
	assert.Len(t, args.Positional, 1)
	assert.NotNil(t, args.Starargs)
}

func TestArgs_SimplifyConstantDict(t *testing.T) {
	ctx, call := newTestContext(t)

	dictCls, err := ctx.LoadClass("builtins.dict")
	require.NoError(t, err)

	v1 := ctx.UnsolvableVar("v1", ctx.Root)
	v2 := ctx.UnsolvableVar("v2", ctx.Root)
	d := NewConstDict()
	d.Entries.Set("alpha", v1)
	d.Entries.Set("beta", v2)
	lit := NewConcreteInstance(ctx, dictCls, d)

	args := &Args{Starstarargs: ctx.SingleVar("starstar", lit, ctx.Root)}
	out := args.Simplify(call, ctx.Root)

	require.Len(t, out.Keywords, 2)
	assert.Equal(t, "alpha", out.Keywords[0].Name)
	assert.Same(t, v1, out.Keywords[0].Value)
	assert.Equal(t, "beta", out.Keywords[1].Name)
	assert.Same(t, v2, out.Keywords[1].Value)
	assert.Nil(t, out.Starstarargs)
}

func TestArgs_SimplifyKeepsSymbolic(t *testing.T) {
	ctx, call := newTestContext(t)

	dictCls, err := ctx.LoadClass("builtins.dict")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	// a dict that also received a non-constant key
	ambiguous := NewConstDict()
	ambiguous.Entries.Set("alpha", ctx.UnsolvableVar("v", ctx.Root))
	ambiguous.Ambiguous = true
	lit := NewConcreteInstance(ctx, dictCls, ambiguous)
	args := &Args{Starstarargs: ctx.SingleVar("starstar", lit, ctx.Root)}
	out := args.Simplify(call, ctx.Root)
	assert.Empty(t, out.Keywords)
	assert.NotNil(t, out.Starstarargs)

	// a dict with a non-string key
	weird := NewConstDict()
	weird.Entries.Set(int64(3), ctx.UnsolvableVar("v", ctx.Root))
	lit = NewConcreteInstance(ctx, dictCls, weird)
	args = &Args{Starstarargs: ctx.SingleVar("starstar", lit, ctx.Root)}
	out = args.Simplify(call, ctx.Root)
	assert.Empty(t, out.Keywords)
	assert.NotNil(t, out.Starstarargs)

	// a *args with several candidate values
	multi := ctx.Program.NewVariable("star")
	multi.AddBinding(NewConcreteInstance(ctx, intCls, []*typegraph.Variable{}), nil, ctx.Root)
	multi.AddBinding(ctx.Unsolvable(), nil, ctx.Root)
	args = &Args{Starargs: multi}
	out = args.Simplify(call, ctx.Root)
	assert.Empty(t, out.Positional)
	assert.Same(t, multi, out.Starargs)
}

func TestArgs_ExpandForCount(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	xs := NewInstance(ctx, listCls)
	xs.TypeParamVar("T").AddBinding(NewInstance(ctx, intCls), nil, ctx.Root)

	a := ctx.UnsolvableVar("a", ctx.Root)
	args := &Args{
		Positional: []*typegraph.Variable{a},
		Starargs:   ctx.SingleVar("star", xs, ctx.Root),
	}
	out := args.ExpandForCount(call, ctx.Root, 3)

	require.Len(t, out.Positional, 3)
	assert.Same(t, a, out.Positional[0])
	assert.Same(t, xs.TypeParamVar("T"), out.Positional[1])
	assert.Same(t, xs.TypeParamVar("T"), out.Positional[2])
	assert.NotNil(t, out.Starargs)
	assert.Len(t, args.Positional, 1)
}

func TestArgs_ExpandForCount_NoStarargs(t *testing.T) {
	ctx, call := newTestContext(t)

	args := &Args{Positional: []*typegraph.Variable{ctx.UnsolvableVar("a", ctx.Root)}}
	assert.Same(t, args, args.ExpandForCount(call, ctx.Root, 3))
}

func TestArgs_ExpandForCount_UnknownElements(t *testing.T) {
	ctx, call := newTestContext(t)

	listCls, err := ctx.LoadClass("builtins.list")
	require.NoError(t, err)

	// nothing known about the element type
	xs := NewInstance(ctx, listCls)
	args := &Args{Starargs: ctx.SingleVar("star", xs, ctx.Root)}
	out := args.ExpandForCount(call, ctx.Root, 2)

	require.Len(t, out.Positional, 2)
	assert.True(t, VariableAmbiguous(out.Positional[0]))
}

func TestArgs_WithSelf(t *testing.T) {
	ctx, _ := newTestContext(t)

	recv := ctx.UnsolvableVar("self", ctx.Root)
	x := ctx.UnsolvableVar("x", ctx.Root)
	kw := ctx.UnsolvableVar("kw", ctx.Root)
	args := &Args{
		Positional: []*typegraph.Variable{x},
		Keywords:   []KeywordArg{{Name: "k", Value: kw}},
	}

	out := args.WithSelf(recv)
	require.Len(t, out.Positional, 2)
	assert.Same(t, recv, out.Positional[0])
	assert.Same(t, x, out.Positional[1])
	assert.Same(t, kw, out.Keyword("k"))
	assert.Nil(t, out.Keyword("missing"))
	assert.Len(t, args.Positional, 1)
}

func TestArgs_HasAmbiguousAndVariables(t *testing.T) {
	ctx, _ := newTestContext(t)

	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	precise := ctx.SingleVar("p", NewInstance(ctx, intCls), ctx.Root)
	star := ctx.SingleVar("star", NewInstance(ctx, intCls), ctx.Root)
	args := &Args{
		Positional: []*typegraph.Variable{precise},
		Keywords:   []KeywordArg{{Name: "k", Value: precise}},
		Starargs:   star,
	}
	assert.False(t, args.HasAmbiguous())
	assert.Equal(t, []*typegraph.Variable{precise, precise, star}, args.Variables())

	args.Starstarargs = ctx.UnsolvableVar("kwargs", ctx.Root)
	assert.True(t, args.HasAmbiguous())
	assert.Len(t, args.Variables(), 4)
}
