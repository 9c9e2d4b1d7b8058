package typegraph

import "fmt"

// Node is a point in the program's control flow history. Nodes are ordered by
// reachability along edges; they never merge, so a join point is a fresh node
// with two predecessors.
type Node struct {
	program  *Program
	id       int
	name     string
	incoming []*Node
	outgoing []*Node
}

// ID returns the creation index of the node within its program.
func (n *Node) ID() int { return n.id }

// Name returns the label the node was created with.
func (n *Node) Name() string { return n.name }

// Incoming returns the direct predecessors of the node.
func (n *Node) Incoming() []*Node { return n.incoming }

// Outgoing returns the direct successors of the node.
func (n *Node) Outgoing() []*Node { return n.outgoing }

func (n *Node) String() string {
	return fmt.Sprintf("n%d:%s", n.id, n.name)
}

// ConnectNew creates a new node with the receiver as sole predecessor.
func (n *Node) ConnectNew(name string) *Node {
	next := n.program.NewNode(name)
	n.ConnectTo(next)
	return next
}

// ConnectTo adds an edge from the receiver to other. Duplicate edges are
// dropped.
func (n *Node) ConnectTo(other *Node) {
	if n.program != other.program {
		panic("typegraph: ConnectTo across programs")
	}
	for _, succ := range n.outgoing {
		if succ == other {
			return
		}
	}
	n.outgoing = append(n.outgoing, other)
	other.incoming = append(other.incoming, n)
	n.program.touchGraph()
}

// CanHaveCombination is a cheap overapproximation of HasCombination. It
// returns false only if two of the given bindings belong to the same variable,
// or some binding has no origin node from which the receiver is reachable.
// A true result does not guarantee the combination is feasible.
func (n *Node) CanHaveCombination(bindings []*Binding) bool {
	seen := make(map[*Variable]*Binding, len(bindings))
	for _, b := range bindings {
		if prev, ok := seen[b.variable]; ok {
			if prev != b {
				return false
			}
			continue
		}
		seen[b.variable] = b
	}

	reach := n.program.reachability()
	for _, b := range bindings {
		visible := false
		for _, o := range b.origins {
			if reach.reachable(o.Where, n) {
				visible = true
				break
			}
		}
		if !visible {
			return false
		}
	}
	return true
}

// HasCombination reports whether all the given bindings can hold
// simultaneously at the receiver. It walks backwards from the receiver,
// discharging each goal binding at one of its origins and recursively
// discharging that origin's source set. Results are memoized until the graph
// changes.
func (n *Node) HasCombination(bindings []*Binding) bool {
	return n.program.getSolver().solve(bindings, n)
}
