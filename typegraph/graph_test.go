package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectNew(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	next := root.ConnectNew("next")

	require.Equal(t, []*Node{next}, root.Outgoing())
	require.Equal(t, []*Node{root}, next.Incoming())
	assert.Equal(t, 2, p.NumNodes())
}

func TestConnectTo_Join(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	left := root.ConnectNew("left")
	right := root.ConnectNew("right")
	join := left.ConnectNew("join")
	right.ConnectTo(join)

	assert.Len(t, join.Incoming(), 2)
	assert.Len(t, root.Outgoing(), 2)

	// duplicate edges are dropped
	right.ConnectTo(join)
	assert.Len(t, join.Incoming(), 2)
}

func TestAddBinding_Idempotent(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	next := root.ConnectNew("next")
	v := p.NewVariable("x")

	b1 := v.AddBinding("int", nil, root)
	b2 := v.AddBinding("int", nil, next)
	require.Same(t, b1, b2)
	require.Len(t, v.Bindings(), 1)
	assert.Len(t, b1.Origins(), 2)
	assert.Equal(t, 1, p.NumBindings())

	b3 := v.AddBinding("str", nil, root)
	require.NotSame(t, b1, b3)
	assert.Equal(t, []Data{"int", "str"}, v.Data())
}

func TestAddBinding_Monotonic(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	v := p.NewVariable("x")

	first := v.AddBinding("int", nil, root)
	for _, data := range []string{"str", "float", "int"} {
		v.AddBinding(data, nil, root)
	}
	require.Len(t, v.Bindings(), 3)
	assert.Same(t, first, v.Bindings()[0])
}

func TestAddOrigin_DedupesSourceSets(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	x := p.NewVariable("x")
	y := p.NewVariable("y")

	bx := x.AddBinding("int", nil, root)
	bz := x.AddBinding("str", nil, root)
	_ = bz

	by := y.AddBinding("list", []*Binding{bx}, root)
	by.AddOrigin(root, []*Binding{bx})
	require.Len(t, by.Origins(), 1)
	assert.Len(t, by.Origins()[0].SourceSets, 1)

	by.AddOrigin(root, nil)
	assert.Len(t, by.Origins()[0].SourceSets, 2)
}

func TestFilter(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	left := root.ConnectNew("left")
	right := root.ConnectNew("right")
	join := left.ConnectNew("join")
	right.ConnectTo(join)

	v := p.NewVariable("x")
	b1 := v.AddBinding("int", nil, left)
	b2 := v.AddBinding("str", nil, right)

	assert.Equal(t, []*Binding{b1}, v.Filter(left))
	assert.Equal(t, []*Binding{b2}, v.Filter(right))
	assert.Equal(t, []*Binding{b1, b2}, v.Filter(join))
	assert.Empty(t, v.Filter(root))

	assert.Equal(t, []Data{"int", "str"}, v.FilteredData(join))
}

func TestAssignToNewVariable(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	next := root.ConnectNew("next")

	v := p.NewVariable("x")
	b := v.AddBinding("int", nil, root)

	w := v.AssignToNewVariable(next)
	require.Len(t, w.Bindings(), 1)
	copied := w.Bindings()[0]
	assert.Equal(t, "int", copied.Data())
	require.Len(t, copied.Origins(), 1)
	assert.Same(t, next, copied.Origins()[0].Where)
	assert.Equal(t, [][]*Binding{{b}}, copied.Origins()[0].SourceSets)
	assert.True(t, copied.HasSource(b))
}

func TestPasteBinding_NilNodeCopiesOrigins(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	next := root.ConnectNew("next")

	v := p.NewVariable("x")
	b := v.AddBinding("int", nil, root)
	b.AddOrigin(next, nil)

	w := p.NewVariable("y")
	copied := w.PasteBinding(b, nil, nil)
	require.Len(t, copied.Origins(), 2)
	assert.Same(t, root, copied.Origins()[0].Where)
	assert.Same(t, next, copied.Origins()[1].Where)
}

func TestPasteVariable_ExtraSources(t *testing.T) {
	p := NewProgram()
	root := p.NewNode("root")
	next := root.ConnectNew("next")

	cond := p.NewVariable("cond")
	bc := cond.AddBinding("bool", nil, root)

	v := p.NewVariable("x")
	bx := v.AddBinding("int", nil, root)

	w := p.NewVariable("y")
	w.PasteVariable(v, next, []*Binding{bc})
	require.Len(t, w.Bindings(), 1)
	copied := w.Bindings()[0]
	assert.True(t, copied.HasSource(bx))
	assert.True(t, copied.HasSource(bc))
}
