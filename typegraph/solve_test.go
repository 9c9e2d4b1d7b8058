package typegraph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// branch builds the usual diamond: root with two successors joined again, and
// a variable bound to a different value on each arm.
func branch(t *testing.T) (p *Program, join *Node, b1, b2 *Binding) {
	p = NewProgram()
	root := p.NewNode("root")
	left := root.ConnectNew("left")
	right := root.ConnectNew("right")
	join = left.ConnectNew("join")
	right.ConnectTo(join)

	v := p.NewVariable("x")
	b1 = v.AddBinding("int", nil, left)
	b2 = v.AddBinding("str", nil, right)
	return p, join, b1, b2
}

func TestIsVisible(t *testing.T) {
	_, join, b1, b2 := branch(t)
	left := b1.Origins()[0].Where
	right := b2.Origins()[0].Where

	assert.True(t, b1.IsVisible(left))
	assert.False(t, b1.IsVisible(right))
	assert.True(t, b1.IsVisible(join))
	assert.True(t, b2.IsVisible(join))
}

func TestHasCombination_SameVariableConflict(t *testing.T) {
	_, join, b1, b2 := branch(t)
	assert.False(t, join.HasCombination([]*Binding{b1, b2}))
	assert.False(t, join.CanHaveCombination([]*Binding{b1, b2}))

	// the same binding twice is not a conflict
	assert.True(t, join.HasCombination([]*Binding{b1, b1}))
}

func TestHasCombination_Empty(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	assert.True(t, root.HasCombination(nil))
	assert.True(t, root.CanHaveCombination(nil))
}

func TestHasCombination_SourceSets(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	n1 := root.ConnectNew("n1")
	n2 := root.ConnectNew("n2")
	n3 := n1.ConnectNew("n3")
	join := n3.ConnectNew("join")
	n2.ConnectTo(join)

	x := p.NewVariable("x")
	bx1 := x.AddBinding("one", nil, n1)
	bx2 := x.AddBinding("two", nil, n2)

	y := p.NewVariable("y")
	byA := y.AddBinding("A", []*Binding{bx1}, n3)

	require.True(t, join.HasCombination([]*Binding{byA}))

	// y=A requires x=one, which conflicts with the goal x=two
	assert.True(t, join.CanHaveCombination([]*Binding{byA, bx2}))
	assert.False(t, join.HasCombination([]*Binding{byA, bx2}))

	assert.True(t, join.HasCombination([]*Binding{byA, bx1}))
}

func TestHasCombination_NoOrigins(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	v := p.NewVariable("x")
	b := v.AddBinding("int", nil, nil)

	assert.False(t, root.CanHaveCombination([]*Binding{b}))
	assert.False(t, root.HasCombination([]*Binding{b}))
}

func TestCanHaveCombination_Unreachable(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	left := root.ConnectNew("left")
	right := root.ConnectNew("right")

	v := p.NewVariable("x")
	b := v.AddBinding("int", nil, left)

	assert.False(t, right.CanHaveCombination([]*Binding{b}))
	assert.False(t, right.HasCombination([]*Binding{b}))
}

func TestSolver_InvalidatedOnNewOrigin(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	a := root.ConnectNew("a")
	b := a.ConnectNew("b")

	v := p.NewVariable("x")
	bx := v.AddBinding("int", nil, b)
	require.False(t, bx.IsVisible(a))

	bx.AddOrigin(a, nil)
	assert.True(t, bx.IsVisible(a))
}

func TestSolver_InvalidatedOnNewEdge(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	side := p.NewNode("side")
	after := root.ConnectNew("after")

	v := p.NewVariable("x")
	bx := v.AddBinding("int", nil, side)
	require.False(t, bx.IsVisible(after))

	side.ConnectTo(after)
	assert.True(t, bx.IsVisible(after))
}

func TestHasCombination_Loop(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	head := root.ConnectNew("head")
	body := head.ConnectNew("body")
	body.ConnectTo(head) // back edge

	v := p.NewVariable("x")
	bx := v.AddBinding("int", nil, body)

	assert.True(t, bx.IsVisible(head))
	assert.False(t, bx.IsVisible(root))
}

func TestFeasibilityMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 30; trial++ {
		p := NewProgram()
		nodes := []*Node{p.NewNode("n0")}
		for i := 1; i < 8; i++ {
			parent := nodes[rng.Intn(len(nodes))]
			nodes = append(nodes, parent.ConnectNew(fmt.Sprintf("n%d", i)))
		}
		// extra forward edges keep the graph acyclic
		for i := 0; i < 4; i++ {
			a, b := rng.Intn(len(nodes)), rng.Intn(len(nodes))
			if nodes[a].ID() < nodes[b].ID() {
				nodes[a].ConnectTo(nodes[b])
			}
		}

		var all []*Binding
		for vi := 0; vi < 3; vi++ {
			v := p.NewVariable(fmt.Sprintf("v%d", vi))
			for bi := 0; bi < 3; bi++ {
				var sources []*Binding
				if len(all) > 0 && rng.Intn(2) == 0 {
					sources = []*Binding{all[rng.Intn(len(all))]}
				}
				where := nodes[rng.Intn(len(nodes))]
				all = append(all, v.AddBinding(fmt.Sprintf("d%d", bi), sources, where))
			}
		}

		for q := 0; q < 40; q++ {
			goals := make([]*Binding, 1+rng.Intn(3))
			for i := range goals {
				goals[i] = all[rng.Intn(len(all))]
			}
			at := nodes[rng.Intn(len(nodes))]
			can := at.CanHaveCombination(goals)
			has := at.HasCombination(goals)
			if !can {
				require.False(t, has,
					"trial %d query %d at %s: CanHaveCombination=false but HasCombination=true", trial, q, at)
			}
		}
	}
}
