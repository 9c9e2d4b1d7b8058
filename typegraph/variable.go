package typegraph

import "fmt"

// Variable is an abstract slot, such as a source variable, a temporary, or a
// type parameter instance. Over the course of a run it accumulates bindings,
// one per distinct data payload. The binding list is append only and keeps
// insertion order.
type Variable struct {
	program  *Program
	id       int
	name     string
	bindings []*Binding
	byData   map[Data]*Binding
}

// ID returns the creation index of the variable within its program.
func (v *Variable) ID() int { return v.id }

// Name returns the label the variable was created with.
func (v *Variable) Name() string { return v.name }

func (v *Variable) String() string {
	return fmt.Sprintf("v%d:%s", v.id, v.name)
}

// Bindings returns the variable's bindings in insertion order.
func (v *Variable) Bindings() []*Binding { return v.bindings }

// Data returns the data payloads of all bindings in insertion order.
func (v *Variable) Data() []Data {
	data := make([]Data, len(v.bindings))
	for i, b := range v.bindings {
		data[i] = b.data
	}
	return data
}

// AddBinding appends a binding for data, recording an origin at the given
// node caused by the given source bindings. Adding data equal to an existing
// binding's data is idempotent: the existing binding gains the new origin.
// A nil where records no origin, which leaves the binding invisible to the
// feasibility queries until an origin is added.
func (v *Variable) AddBinding(data Data, source []*Binding, where *Node) *Binding {
	if data == nil {
		panic("typegraph: AddBinding with nil data")
	}
	b, ok := v.byData[data]
	if !ok {
		b = &Binding{
			program:  v.program,
			id:       v.program.numBindings,
			variable: v,
			data:     data,
		}
		v.program.numBindings++
		v.byData[data] = b
		v.bindings = append(v.bindings, b)
	}
	if where != nil {
		b.AddOrigin(where, source)
	}
	return b
}

// Filter returns the bindings that are individually visible at the given
// node.
func (v *Variable) Filter(node *Node) []*Binding {
	var out []*Binding
	for _, b := range v.bindings {
		if b.IsVisible(node) {
			out = append(out, b)
		}
	}
	return out
}

// FilteredData returns the data payloads of the bindings individually visible
// at the given node.
func (v *Variable) FilteredData(node *Node) []Data {
	var out []Data
	for _, b := range v.bindings {
		if b.IsVisible(node) {
			out = append(out, b.data)
		}
	}
	return out
}

// AssignToNewVariable creates a new variable with a copy of each binding,
// originating at the given node from the copied binding.
func (v *Variable) AssignToNewVariable(where *Node) *Variable {
	out := v.program.NewVariable(v.name)
	out.PasteVariable(v, where, nil)
	return out
}

// PasteVariable copies all of other's bindings into the receiver. See
// PasteBinding.
func (v *Variable) PasteVariable(other *Variable, where *Node, extraSources []*Binding) {
	for _, b := range other.bindings {
		v.PasteBinding(b, where, extraSources)
	}
}

// PasteBinding copies a binding from another variable into the receiver. With
// a node, the copy originates there from the source binding plus any extra
// sources. With a nil node, the source binding's origins are copied verbatim.
func (v *Variable) PasteBinding(b *Binding, where *Node, extraSources []*Binding) *Binding {
	if where == nil {
		copied := v.AddBinding(b.data, nil, nil)
		for _, o := range b.origins {
			for _, ss := range o.SourceSets {
				copied.AddOrigin(o.Where, ss)
			}
		}
		return copied
	}
	sources := make([]*Binding, 0, len(extraSources)+1)
	sources = append(sources, b)
	sources = append(sources, extraSources...)
	return v.AddBinding(b.data, sources, where)
}

// Origin records that a binding holds at a node, caused by one of several
// alternative sets of other bindings. An empty source set means the binding
// holds at the node unconditionally.
type Origin struct {
	Where      *Node
	SourceSets [][]*Binding
}

// Binding associates a variable with one data payload plus the origins that
// caused the association. Bindings are append only.
type Binding struct {
	program  *Program
	id       int
	variable *Variable
	data     Data
	origins  []*Origin
	byNode   map[*Node]*Origin
}

// ID returns the creation index of the binding within its program.
func (b *Binding) ID() int { return b.id }

// Variable returns the variable the binding belongs to.
func (b *Binding) Variable() *Variable { return b.variable }

// Data returns the binding's payload.
func (b *Binding) Data() Data { return b.data }

// Origins returns the binding's origins in insertion order.
func (b *Binding) Origins() []*Origin { return b.origins }

func (b *Binding) String() string {
	return fmt.Sprintf("b%d:%v", b.id, b.data)
}

// AddOrigin records that the binding holds at the given node because all the
// source bindings hold. Identical source sets at the same node are deduped.
func (b *Binding) AddOrigin(where *Node, sources []*Binding) {
	if where == nil {
		panic("typegraph: AddOrigin with nil node")
	}
	if b.byNode == nil {
		b.byNode = make(map[*Node]*Origin)
	}
	o := b.byNode[where]
	if o == nil {
		o = &Origin{Where: where}
		b.byNode[where] = o
		b.origins = append(b.origins, o)
	}
	set := canonicalSourceSet(sources)
	for _, existing := range o.SourceSets {
		if equalSourceSets(existing, set) {
			return
		}
	}
	o.SourceSets = append(o.SourceSets, set)
	b.program.touchOrigins()
}

// IsVisible reports whether the binding on its own is feasible at the given
// node.
func (b *Binding) IsVisible(node *Node) bool {
	return node.HasCombination([]*Binding{b})
}

// HasSource reports whether other transitively appears in the binding's
// source sets.
func (b *Binding) HasSource(other *Binding) bool {
	if b == other {
		return true
	}
	seen := make(map[*Binding]bool)
	return b.hasSource(other, seen)
}

func (b *Binding) hasSource(other *Binding, seen map[*Binding]bool) bool {
	if seen[b] {
		return false
	}
	seen[b] = true
	for _, o := range b.origins {
		for _, ss := range o.SourceSets {
			for _, src := range ss {
				if src == other || src.hasSource(other, seen) {
					return true
				}
			}
		}
	}
	return false
}

// canonicalSourceSet sorts a source set by binding id and drops duplicates so
// that set equality is positional.
func canonicalSourceSet(sources []*Binding) []*Binding {
	if len(sources) == 0 {
		return nil
	}
	out := make([]*Binding, len(sources))
	copy(out, sources)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].id > out[j].id; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	dedup := out[:1]
	for _, b := range out[1:] {
		if b != dedup[len(dedup)-1] {
			dedup = append(dedup, b)
		}
	}
	return dedup
}

func equalSourceSets(a, b []*Binding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
