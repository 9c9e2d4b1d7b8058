package views

import (
	"github.com/pythiaco/pythia/typegraph"
)

// View is one internally consistent joint assignment of bindings to the
// variables under enumeration. Lookups through Get are recorded so that the
// consumer can later declare the consulted sub-assignment exhausted.
type View struct {
	node       *typegraph.Node
	assignment map[*typegraph.Variable]*typegraph.Binding
	accessed   map[*typegraph.Variable]*typegraph.Binding
}

// Get returns the binding assigned to the given variable and records the
// access. It returns nil for variables outside the view.
func (v *View) Get(variable *typegraph.Variable) *typegraph.Binding {
	b, ok := v.assignment[variable]
	if !ok {
		return nil
	}
	v.accessed[variable] = b
	return b
}

// Node returns the program point the view was enumerated at.
func (v *View) Node() *typegraph.Node { return v.node }

// Accessed returns the sub-assignment consulted through Get so far. The
// returned map is shared with the view and must not be modified.
func (v *View) Accessed() map[*typegraph.Variable]*typegraph.Binding {
	return v.accessed
}

// Bindings returns the assigned bindings in enumeration variable order.
func (v *View) Bindings(variables []*typegraph.Variable) []*typegraph.Binding {
	out := make([]*typegraph.Binding, 0, len(variables))
	for _, variable := range variables {
		if b, ok := v.assignment[variable]; ok {
			out = append(out, b)
		}
	}
	return out
}
