package interp

import (
	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/typegraph"
)

// frame is one executing scope: the module body or a single function call.
// The current node is nil while the path is dead, between an unconditional
// jump or return and the next label.
type frame struct {
	name   string
	src    *Source
	module *abstract.Module

	// scope holds local names. It is nil for the module body, whose names
	// live in the module's member map instead.
	scope map[string]*typegraph.Variable

	stack []*typegraph.Variable
	node  *typegraph.Node
	ret   *typegraph.Variable

	// pending collects the predecessor arms waiting to join at each label.
	pending map[string][]*typegraph.Node

	// exits collects the nodes at which control left the frame.
	exits []*typegraph.Node

	// nodes, when set, reuses the control flow nodes an earlier pass over
	// the same body created for each op.
	nodes map[*Op]*typegraph.Node
}

func (fr *frame) push(v *typegraph.Variable) {
	fr.stack = append(fr.stack, v)
}

func (fr *frame) pop() (*typegraph.Variable, error) {
	if len(fr.stack) == 0 {
		return nil, errors.Errorf("interp: stack underflow in %s", fr.name)
	}
	v := fr.stack[len(fr.stack)-1]
	fr.stack = fr.stack[:len(fr.stack)-1]
	return v, nil
}

// popN pops n variables, returning them in push order.
func (fr *frame) popN(n int) ([]*typegraph.Variable, error) {
	if len(fr.stack) < n {
		return nil, errors.Errorf("interp: stack underflow in %s", fr.name)
	}
	out := make([]*typegraph.Variable, n)
	copy(out, fr.stack[len(fr.stack)-n:])
	fr.stack = fr.stack[:len(fr.stack)-n]
	return out, nil
}

// fork returns the control flow node belonging to op, creating it as a
// successor of from on first use.
func (fr *frame) fork(op *Op, from *typegraph.Node, name string) *typegraph.Node {
	if fr.nodes != nil {
		if n, ok := fr.nodes[op]; ok {
			from.ConnectTo(n)
			return n
		}
	}
	n := from.ConnectNew(name)
	if fr.nodes != nil {
		fr.nodes[op] = n
	}
	return n
}
