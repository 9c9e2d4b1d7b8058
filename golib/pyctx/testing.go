package pyctx

import (
	"testing"
)

// WaitExpiry blocks until ctx's expired flag is raised. Expiry propagates
// asynchronously, so a test that cancels and then expects CheckAbort to
// fire has to wait here first.
func (ctx Context) WaitExpiry(_ testing.TB) {
	ctx.waitExpiry()
}
