package views

import (
	"github.com/pythiaco/pythia/typegraph"
)

// Opts controls view enumeration.
type Opts struct {
	// MaxProduct bounds the full Cartesian product size. Beyond it the
	// enumerator abandons precise enumeration and produces one view binding
	// every variable to a synthetic default binding carrying DefaultData.
	// Zero or negative means no bound.
	MaxProduct int
	// DefaultData is the payload of the synthetic default binding. Required
	// if MaxProduct can be exceeded.
	DefaultData typegraph.Data
}

// DefaultOpts are the options used by analysis unless quick mode lowers the
// product bound.
var DefaultOpts = Opts{MaxProduct: 1024}

// Enumerator lazily produces the feasible views over a sequence of variables
// at one program point, in product order with the last variable advancing
// fastest. The binding lists are snapshotted at construction, so bindings
// added during enumeration are not picked up.
type Enumerator struct {
	node      *typegraph.Node
	variables []*typegraph.Variable
	rows      [][]*typegraph.Binding
	opts      Opts

	idx        []int
	started    bool
	done       bool
	overflowed bool
	exhausted  []map[*typegraph.Variable]*typegraph.Binding
}

// NewEnumerator creates an enumerator over the given variables at node.
func NewEnumerator(variables []*typegraph.Variable, node *typegraph.Node, opts Opts) *Enumerator {
	e := &Enumerator{
		node:      node,
		variables: variables,
		rows:      make([][]*typegraph.Binding, len(variables)),
		opts:      opts,
		idx:       make([]int, len(variables)),
	}
	product := 1
	for i, v := range variables {
		bindings := v.Bindings()
		e.rows[i] = bindings
		if len(bindings) == 0 {
			e.done = true
			return e
		}
		product *= len(bindings)
		if opts.MaxProduct > 0 && product > opts.MaxProduct {
			e.overflowed = true
			return e
		}
	}
	return e
}

// Variables returns the variables under enumeration in order.
func (e *Enumerator) Variables() []*typegraph.Variable { return e.variables }

// Overflowed reports whether the product bound was exceeded and enumeration
// degraded to the single default view.
func (e *Enumerator) Overflowed() bool { return e.overflowed }

// Next returns the next feasible view. It reports false when enumeration is
// finished.
func (e *Enumerator) Next() (*View, bool) {
	if e.overflowed {
		return e.defaultView()
	}
	for {
		assignment, ok := e.advance()
		if !ok {
			return nil, false
		}
		if e.skipExhausted(assignment) {
			continue
		}
		bindings := make([]*typegraph.Binding, 0, len(e.variables))
		for _, v := range e.variables {
			bindings = append(bindings, assignment[v])
		}
		if !e.node.CanHaveCombination(bindings) {
			continue
		}
		return &View{
			node:       e.node,
			assignment: assignment,
			accessed:   make(map[*typegraph.Variable]*typegraph.Binding),
		}, true
	}
}

// MarkExhausted records the sub-assignment the consumer actually read from
// the view. Later candidates repeating that sub-assignment are skipped
// without a feasibility check. Marking a view with an empty accessed set ends
// enumeration, since every candidate repeats it.
func (e *Enumerator) MarkExhausted(view *View) {
	accessed := make(map[*typegraph.Variable]*typegraph.Binding, len(view.accessed))
	for v, b := range view.accessed {
		accessed[v] = b
	}
	e.exhausted = append(e.exhausted, accessed)
}

// advance moves the cursor to the next candidate assignment.
func (e *Enumerator) advance() (map[*typegraph.Variable]*typegraph.Binding, bool) {
	if e.done {
		return nil, false
	}
	if !e.started {
		e.started = true
	} else {
		i := len(e.idx) - 1
		for ; i >= 0; i-- {
			e.idx[i]++
			if e.idx[i] < len(e.rows[i]) {
				break
			}
			e.idx[i] = 0
		}
		if i < 0 {
			e.done = true
			return nil, false
		}
	}
	assignment := make(map[*typegraph.Variable]*typegraph.Binding, len(e.variables))
	for i, v := range e.variables {
		assignment[v] = e.rows[i][e.idx[i]]
	}
	return assignment, true
}

// skipExhausted reports whether the candidate contains a previously recorded
// exhausted sub-assignment.
func (e *Enumerator) skipExhausted(assignment map[*typegraph.Variable]*typegraph.Binding) bool {
	for _, sub := range e.exhausted {
		contained := true
		for v, b := range sub {
			if assignment[v] != b {
				contained = false
				break
			}
		}
		if contained {
			return true
		}
	}
	return false
}

// defaultView binds every variable to the synthetic default binding at the
// current node. The binding add is idempotent, so repeated overflows reuse
// one binding per variable.
func (e *Enumerator) defaultView() (*View, bool) {
	if e.done {
		return nil, false
	}
	e.done = true
	if e.opts.DefaultData == nil {
		panic("views: product overflow with no default data")
	}
	assignment := make(map[*typegraph.Variable]*typegraph.Binding, len(e.variables))
	for _, v := range e.variables {
		assignment[v] = v.AddBinding(e.opts.DefaultData, nil, e.node)
	}
	return &View{
		node:       e.node,
		assignment: assignment,
		accessed:   make(map[*typegraph.Variable]*typegraph.Binding),
	}, true
}
