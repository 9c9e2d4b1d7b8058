package pyctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithTimeout_RunsToCompletion(t *testing.T) {
	var ran bool
	err := Background().WithTimeout(time.Hour, func(ctx Context) error {
		ran = true
		ctx.CheckAbort()
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestWithTimeout_Expires(t *testing.T) {
	err := Background().WithTimeout(time.Nanosecond, func(ctx Context) error {
		ctx.WaitExpiry(t)
		ctx.CheckAbort()
		t.Fatal("unreachable")
		return nil
	})
	require.Error(t, err)
	require.True(t, IsDeadlineExceeded(err))
}

func TestWithDeadline_AlreadyPassed(t *testing.T) {
	var ran bool
	err := Background().WithDeadline(time.Now().Add(-time.Second), func(Context) error {
		ran = true
		return nil
	})
	require.Error(t, err)
	require.False(t, ran)
	require.True(t, IsDeadlineExceeded(err))
}

func TestWithDeadline_InnerExpiryRecoveredAtInner(t *testing.T) {
	var after bool
	err := Background().WithTimeout(time.Hour, func(outer Context) error {
		inner := outer.WithTimeout(time.Nanosecond, func(ctx Context) error {
			ctx.WaitExpiry(t)
			ctx.CheckAbort()
			return nil
		})
		require.Error(t, inner)

		// the outer budget is untouched, so execution continues here
		after = true
		outer.CheckAbort()
		return nil
	})
	require.NoError(t, err)
	require.True(t, after)
}

func TestWithCancel_CancelAborts(t *testing.T) {
	err := Background().WithCancel(func(ctx Context, cancel CancelFunc) error {
		cancel()
		ctx.WaitExpiry(t)
		ctx.CheckAbort()
		t.Fatal("unreachable")
		return nil
	})
	require.IsType(t, ContextExpiredError{}, err)
	require.Equal(t, context.Canceled, err.(ContextExpiredError).Err)
}

func TestClosureWithCancel_CancelBeforeRun(t *testing.T) {
	g, cancel := Background().ClosureWithCancel(func(ctx Context) error {
		ctx.CheckAbort()
		return nil
	})
	cancel()
	require.Error(t, g())
}

func TestCheckAbort_ZeroContextNeverExpires(t *testing.T) {
	require.NotPanics(t, func() {
		var ctx Context
		ctx.CheckAbort()
		Background().CheckAbort()
	})
}

func TestWithTimeout_ErrorsPassThrough(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Background().WithTimeout(time.Hour, func(ctx Context) error {
		return sentinel
	})
	require.Equal(t, sentinel, err)
}

func TestWithTimeout_ForeignPanicsPropagate(t *testing.T) {
	require.Panics(t, func() {
		Background().WithTimeout(time.Hour, func(ctx Context) error {
			panic("unrelated")
		})
	})
}
