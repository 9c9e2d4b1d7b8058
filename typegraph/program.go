package typegraph

// Data is the payload attached to a binding. The abstract layer passes
// pointer-shaped values, so interface equality doubles as identity.
type Data interface{}

// Program owns every node and variable created during one analysis run. The
// graph is append only: nodes and bindings are never removed, so cached
// solver state is valid until the next write.
type Program struct {
	nodes       []*Node
	variables   []*Variable
	numBindings int

	reach  *reachability
	solver *solver
}

// NewProgram creates an empty program graph.
func NewProgram() *Program {
	return &Program{}
}

// NewNode creates a node with no predecessors. Successive program points
// should be created with Node.ConnectNew instead.
func (p *Program) NewNode(name string) *Node {
	n := &Node{
		program: p,
		id:      len(p.nodes),
		name:    name,
	}
	p.nodes = append(p.nodes, n)
	p.touchGraph()
	return n
}

// NewVariable creates an empty variable.
func (p *Program) NewVariable(name string) *Variable {
	v := &Variable{
		program: p,
		id:      len(p.variables),
		name:    name,
		byData:  make(map[Data]*Binding),
	}
	p.variables = append(p.variables, v)
	return v
}

// NumNodes returns the number of nodes created so far.
func (p *Program) NumNodes() int { return len(p.nodes) }

// NumVariables returns the number of variables created so far.
func (p *Program) NumVariables() int { return len(p.variables) }

// NumBindings returns the number of bindings created so far across all
// variables.
func (p *Program) NumBindings() int { return p.numBindings }

// touchGraph drops caches that depend on the node/edge structure.
func (p *Program) touchGraph() {
	p.reach = nil
	p.solver = nil
}

// touchOrigins drops caches that depend on binding origins but not on the
// node/edge structure.
func (p *Program) touchOrigins() {
	p.solver = nil
}

func (p *Program) reachability() *reachability {
	if p.reach == nil {
		p.reach = newReachability(p.nodes)
	}
	return p.reach
}

func (p *Program) getSolver() *solver {
	if p.solver == nil {
		p.solver = newSolver(p)
	}
	return p.solver
}
