package pyctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCallLimit_WithinBudget(t *testing.T) {
	var depth func(ctx CallContext, n int) int
	depth = func(ctx CallContext, n int) int {
		ctx.CheckAbort()
		if n == 0 {
			return ctx.Depth()
		}
		return depth(ctx.Call(), n-1)
	}

	var got int
	err := Background().WithCallLimit(10, func(ctx CallContext) error {
		got = depth(ctx, 5)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestWithCallLimit_Exceeded(t *testing.T) {
	var recurse func(ctx CallContext)
	recurse = func(ctx CallContext) {
		ctx.CheckAbort()
		recurse(ctx.Call())
	}

	err := Background().WithCallLimit(50, func(ctx CallContext) error {
		recurse(ctx)
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsCallLimit(err))
	assert.Equal(t, CallLimitError{50}, err)
}

func TestAtCallLimit(t *testing.T) {
	err := Background().WithCallLimit(2, func(ctx CallContext) error {
		assert.False(t, ctx.AtCallLimit())
		child := ctx.Call().Call()
		assert.True(t, child.AtCallLimit())
		// CheckAbort only panics strictly beyond the limit
		child.CheckAbort()
		return nil
	})
	require.NoError(t, err)
}

func TestZeroCallContext(t *testing.T) {
	// a zero CallContext has no budget and never aborts
	var ctx CallContext
	for i := 0; i < 100; i++ {
		ctx = ctx.Call()
		ctx.CheckAbort()
	}
	assert.False(t, ctx.AtCallLimit())
	assert.Equal(t, -1, ctx.Remaining())
}

func TestRemaining(t *testing.T) {
	err := Background().WithCallLimit(3, func(ctx CallContext) error {
		assert.Equal(t, 3, ctx.Remaining())
		assert.Equal(t, 2, ctx.Call().Remaining())
		assert.Equal(t, 0, ctx.Call().Call().Call().Remaining())
		assert.Equal(t, 0, ctx.Call().Call().Call().Call().Remaining())
		return nil
	})
	require.NoError(t, err)
}
