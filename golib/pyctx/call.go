package pyctx

import (
	"fmt"
	"sync/atomic"
)

type callLimitPanic struct {
	limit int
}

// CallLimitError is returned when a computation exceeds its call budget
type CallLimitError struct {
	Limit int
}

// Error implements error
func (c CallLimitError) Error() string {
	return fmt.Sprintf("pyctx call limit of %d exceeded", c.Limit)
}

// IsCallLimit checks if the error indicates an exceeded call budget
func IsCallLimit(err error) bool {
	_, ok := err.(CallLimitError)
	return ok
}

// CallContext carries an abort condition together with a recursion budget.
// It is passed by value; each recursive step must derive a child via Call().
// A zero CallContext never aborts and has no budget, which makes it safe for
// tests of leaf functions.
type CallContext struct {
	parent Context
	depth  int
	limit  int
}

// WithCallLimit calls f with a CallContext that allows at most limit recursive Call
// derivations. If the budget is exceeded, the computation is unwound and a
// CallLimitError is returned. Expiry of ctx is surfaced as ContextExpiredError,
// exactly as for the other Context helpers.
func (ctx Context) WithCallLimit(limit int, f func(CallContext) error) (err error) {
	defer recoverAbort(ctx.CheckAbort, &err)

	err = f(CallContext{parent: ctx, limit: limit})
	return
}

// Call derives a CallContext one level deeper. It never aborts by itself; the
// eventual CheckAbort at the deeper level does, so that callers may test
// AtCallLimit first and degrade gracefully instead of unwinding.
func (ctx CallContext) Call() CallContext {
	ctx.depth++
	return ctx
}

// CheckAbort panics out of the computation if the parent Context has
// expired or the call budget is exhausted.
func (ctx CallContext) CheckAbort() {
	// duplicated in Context.CheckAbort; keep the two in sync
	if ctx.parent.expired != nil {
		errPtr := (*error)(atomic.LoadPointer(ctx.parent.expired))
		if errPtr != nil {
			abort(*errPtr)
		}
	}
	if ctx.limit > 0 && ctx.depth > ctx.limit {
		panic(callLimitPanic{ctx.limit})
	}
}

// AtCallLimit reports whether the next Call would exhaust the budget. Callers that
// can produce a degraded result should prefer checking this over relying on the
// CheckAbort unwind.
func (ctx CallContext) AtCallLimit() bool {
	return ctx.limit > 0 && ctx.depth >= ctx.limit
}

// Depth returns the number of Call derivations performed so far
func (ctx CallContext) Depth() int {
	return ctx.depth
}

// Remaining returns the number of Call derivations left before the budget is
// exhausted; it returns -1 when there is no budget.
func (ctx CallContext) Remaining() int {
	if ctx.limit <= 0 {
		return -1
	}
	if ctx.depth >= ctx.limit {
		return 0
	}
	return ctx.limit - ctx.depth
}

// Context returns the enclosing abort Context, for calling APIs that do not
// thread a call budget.
func (ctx CallContext) Context() Context {
	return ctx.parent
}
