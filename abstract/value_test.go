package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

func TestUnknown_AttrMemoized(t *testing.T) {
	ctx, _ := newTestContext(t)

	u := ctx.NewUnknown()
	first := u.Attr("foo", ctx.Root)
	second := u.Attr("foo", ctx.Root)
	assert.Same(t, first, second)

	other := u.Attr("bar", ctx.Root)
	assert.NotSame(t, first, other)

	// each attribute is itself a fresh unknown
	require.Len(t, first.Data(), 1)
	attr, ok := first.Data()[0].(*Unknown)
	require.True(t, ok)
	assert.NotSame(t, u, attr)

	assert.Len(t, u.Attrs(), 2)
}

func TestUnknown_RecordCall(t *testing.T) {
	ctx, _ := newTestContext(t)

	u := ctx.NewUnknown()
	args := &Args{}
	ret := u.RecordCall(args, ctx.Root)
	require.Len(t, ret.Data(), 1)
	_, ok := ret.Data()[0].(*Unknown)
	assert.True(t, ok)

	calls := u.Calls()
	require.Len(t, calls, 1)
	assert.Same(t, args, calls[0].Args)
	assert.Same(t, ret, calls[0].Return)
}

func TestUnknown_DistinctIdentities(t *testing.T) {
	ctx, _ := newTestContext(t)

	a := ctx.NewUnknown()
	b := ctx.NewUnknown()
	assert.False(t, Equal(pyctx.Background(), a, b))
	assert.True(t, Equal(pyctx.Background(), a, a))
	assert.NotEqual(t, a.Name(), b.Name())
}

func TestCachedInstance_PerCallsite(t *testing.T) {
	ctx, _ := newTestContext(t)

	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	strCls, err := ctx.LoadClass("builtins.str")
	require.NoError(t, err)

	a := ctx.CachedInstance(intCls, 1)
	b := ctx.CachedInstance(intCls, 1)
	assert.Same(t, a, b)

	c := ctx.CachedInstance(intCls, 2)
	assert.NotSame(t, a, c)

	d := ctx.CachedInstance(strCls, 1)
	assert.NotSame(t, a, d)
}

func TestIsAmbiguous(t *testing.T) {
	ctx, _ := newTestContext(t)

	assert.True(t, IsAmbiguous(ctx.Unsolvable()))
	assert.True(t, IsAmbiguous(ctx.Empty()))
	assert.True(t, IsAmbiguous(ctx.NewUnknown()))

	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)
	assert.False(t, IsAmbiguous(intCls))
	assert.False(t, IsAmbiguous(NewInstance(ctx, intCls)))
}

func TestVariableAmbiguous(t *testing.T) {
	ctx, _ := newTestContext(t)

	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	precise := ctx.SingleVar("x", NewInstance(ctx, intCls), ctx.Root)
	assert.False(t, VariableAmbiguous(precise))

	precise.AddBinding(ctx.Unsolvable(), nil, ctx.Root)
	assert.True(t, VariableAmbiguous(precise))
}

func TestEqual_NilAndIdentity(t *testing.T) {
	ctx, _ := newTestContext(t)

	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	assert.True(t, Equal(pyctx.Background(), nil, nil))
	assert.False(t, Equal(pyctx.Background(), intCls, nil))
	assert.True(t, Equal(pyctx.Background(), intCls, intCls))

	inst := NewInstance(ctx, intCls)
	other := NewInstance(ctx, intCls)
	assert.True(t, Equal(pyctx.Background(), inst, inst))
	assert.False(t, Equal(pyctx.Background(), inst, other))
}

func TestConcreteInstance_LiteralEquality(t *testing.T) {
	ctx, _ := newTestContext(t)

	strCls, err := ctx.LoadClass("builtins.str")
	require.NoError(t, err)
	intCls, err := ctx.LoadClass("builtins.int")
	require.NoError(t, err)

	a := NewConcreteInstance(ctx, strCls, "x")
	b := NewConcreteInstance(ctx, strCls, "x")
	c := NewConcreteInstance(ctx, strCls, "y")
	assert.True(t, Equal(pyctx.Background(), a, b))
	assert.False(t, Equal(pyctx.Background(), a, c))
	assert.Equal(t, Hash(pyctx.Background(), a), Hash(pyctx.Background(), b))

	n := NewConcreteInstance(ctx, intCls, int64(1))
	m := NewConcreteInstance(ctx, intCls, int64(1))
	assert.True(t, Equal(pyctx.Background(), n, m))

	// list literals carry element variables and stay identity values
	xs := NewConcreteInstance(ctx, intCls, []*typegraph.Variable{})
	ys := NewConcreteInstance(ctx, intCls, []*typegraph.Variable{})
	assert.False(t, Equal(pyctx.Background(), xs, ys))
}
