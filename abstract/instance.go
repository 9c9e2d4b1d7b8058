package abstract

import (
	"fmt"
	"math"

	"github.com/pythiaco/pythia/golib/collections"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// Instance is a plain instance of some class. Besides the attribute dict it
// carries one variable per type parameter of its class; those variables
// accumulate the widened element types as mutations land.
type Instance struct {
	ctx          *Context
	class        Value
	attrs        map[string]*typegraph.Variable
	params       map[string]*typegraph.Variable
	maybeMissing bool
}

// NewInstance creates an instance of the given class with an empty attribute
// dict.
func NewInstance(ctx *Context, class Value) *Instance {
	return &Instance{
		ctx:    ctx,
		class:  class,
		attrs:  make(map[string]*typegraph.Variable),
		params: make(map[string]*typegraph.Variable),
	}
}

// Name implements Value
func (v *Instance) Name() string {
	if v.class == nil {
		return "instance"
	}
	return v.class.Name() + " instance"
}

// Kind implements Value
func (v *Instance) Kind() Kind { return InstanceKind }

// Class implements Value
func (v *Instance) Class() Value {
	if v.class == nil {
		return v.ctx.unsolvable
	}
	return v.class
}

// Formal implements Value
func (v *Instance) Formal() bool { return false }

func (v *Instance) context() *Context { return v.ctx }

func (v *Instance) key(ctx pyctx.CallContext) uint64 {
	// instances are identity values; two distinct allocations never compare
	// equal, so the hash folds in the attribute and parameter state only
	h := rehashValues(ctx, rehash(saltInstance), v.class)
	for name, param := range v.params {
		h += rehashBytes(hashVariable(ctx, param), []byte(name))
	}
	return h
}

func (v *Instance) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*Instance)
	return ok && o == v
}

func (v *Instance) String() string { return v.Name() }

// TypeParamVar implements InstanceValue
func (v *Instance) TypeParamVar(name string) *typegraph.Variable {
	if p, ok := v.params[name]; ok {
		return p
	}
	p := v.ctx.Program.NewVariable(v.Name() + "." + name)
	v.params[name] = p
	return p
}

// TypeParams returns the instance's type parameter variables.
func (v *Instance) TypeParams() map[string]*typegraph.Variable { return v.params }

// Attrs implements InstanceValue
func (v *Instance) Attrs() map[string]*typegraph.Variable { return v.attrs }

// SetAttr records an instance attribute assignment at node.
func (v *Instance) SetAttr(name string, value *typegraph.Variable, node *typegraph.Node) {
	if existing, ok := v.attrs[name]; ok {
		existing.PasteVariable(value, node, nil)
		return
	}
	out := v.ctx.Program.NewVariable(v.Name() + "." + name)
	out.PasteVariable(value, node, nil)
	v.attrs[name] = out
}

// SetMaybeMissingAttrs implements InstanceValue
func (v *Instance) SetMaybeMissingAttrs() { v.maybeMissing = true }

// MaybeMissingAttrs implements InstanceValue
func (v *Instance) MaybeMissingAttrs() bool { return v.maybeMissing }

// ConstDict is the payload of a dict literal with statically known keys. Keys
// are Go constants; values are variables. Ambiguous marks dicts that also
// received a non-constant key, in which case key-missing can no longer be
// decided.
type ConstDict struct {
	Entries   collections.OrderedMap
	Ambiguous bool
}

// NewConstDict creates an empty constant dict payload.
func NewConstDict() *ConstDict {
	return &ConstDict{Entries: collections.NewOrderedMap(4)}
}

// ConcreteInstance is an instance with a statically known constant payload:
// a str/int/bool/float literal, or a list/tuple literal carrying its element
// variables, or a dict literal carrying a ConstDict.
type ConcreteInstance struct {
	Instance
	pyval interface{}
}

// NewConcreteInstance creates an instance of class carrying pyval.
func NewConcreteInstance(ctx *Context, class Value, pyval interface{}) *ConcreteInstance {
	return &ConcreteInstance{
		Instance: Instance{
			ctx:    ctx,
			class:  class,
			attrs:  make(map[string]*typegraph.Variable),
			params: make(map[string]*typegraph.Variable),
		},
		pyval: pyval,
	}
}

// Pyval returns the constant payload.
func (v *ConcreteInstance) Pyval() interface{} { return v.pyval }

// Elements returns the element variables of a list or tuple literal, or nil.
func (v *ConcreteInstance) Elements() []*typegraph.Variable {
	elts, _ := v.pyval.([]*typegraph.Variable)
	return elts
}

// Dict returns the constant dict payload, or nil.
func (v *ConcreteInstance) Dict() *ConstDict {
	d, _ := v.pyval.(*ConstDict)
	return d
}

// Name implements Value
func (v *ConcreteInstance) Name() string {
	switch t := v.pyval.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case int64, bool, float64:
		return fmt.Sprintf("%v", t)
	}
	return v.Instance.Name()
}

func (v *ConcreteInstance) key(ctx pyctx.CallContext) uint64 {
	h := rehashValues(ctx, rehash(saltConcrete), v.class)
	switch t := v.pyval.(type) {
	case string:
		return rehashBytes(rehash(h, saltStrConst), []byte(t))
	case int64:
		return rehash(h, saltIntConst, uint64(t))
	case bool:
		if t {
			return rehash(h, saltBoolConst, 1)
		}
		return rehash(h, saltBoolConst, 0)
	case float64:
		return rehash(h, saltFloatConst, math.Float64bits(t))
	case []*typegraph.Variable:
		for _, elt := range t {
			h = rehash(h, hashVariable(ctx, elt))
		}
		return h
	case *ConstDict:
		h = rehash(h, saltConstDict, uint64(t.Entries.Len()))
		return h
	}
	return h
}

func (v *ConcreteInstance) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*ConcreteInstance)
	if !ok {
		return false
	}
	if o == v {
		return true
	}
	// constant literals of the same class and payload are interchangeable
	switch t := v.pyval.(type) {
	case string, int64, bool, float64:
		return t == o.pyval && equal(ctx, v.class, o.class)
	}
	return false
}

// Module is an analyzed module: a named scope of member variables.
type Module struct {
	ctx     *Context
	name    string
	members map[string]*typegraph.Variable
}

// NewModule creates an empty module value.
func NewModule(ctx *Context, name string) *Module {
	return &Module{
		ctx:     ctx,
		name:    name,
		members: make(map[string]*typegraph.Variable),
	}
}

// Name implements Value
func (v *Module) Name() string { return v.name }

// Kind implements Value
func (v *Module) Kind() Kind { return ModuleKind }

// Class implements Value
func (v *Module) Class() Value { return v.ctx.unsolvable }

// Formal implements Value
func (v *Module) Formal() bool { return false }

func (v *Module) context() *Context { return v.ctx }

func (v *Module) key(ctx pyctx.CallContext) uint64 {
	return rehashBytes(rehash(saltModule), []byte(v.name))
}

func (v *Module) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*Module)
	return ok && o == v
}

func (v *Module) String() string { return v.name }

// Member returns a module member variable, or nil.
func (v *Module) Member(name string) *typegraph.Variable { return v.members[name] }

// SetMember sets a module member variable.
func (v *Module) SetMember(name string, value *typegraph.Variable) {
	v.members[name] = value
}

// Members returns the module's member map.
func (v *Module) Members() map[string]*typegraph.Variable { return v.members }

// GeneratorInstance is an instance of a generator, tracking the variable of
// its yielded values.
type GeneratorInstance struct {
	Instance
}

// NewGeneratorInstance creates a generator instance whose yields accumulate
// in the instance's T parameter.
func NewGeneratorInstance(ctx *Context, class Value) *GeneratorInstance {
	return &GeneratorInstance{
		Instance: Instance{
			ctx:    ctx,
			class:  class,
			attrs:  make(map[string]*typegraph.Variable),
			params: make(map[string]*typegraph.Variable),
		},
	}
}

// YieldVar returns the variable of the generator's yielded values.
func (v *GeneratorInstance) YieldVar() *typegraph.Variable {
	return v.TypeParamVar("T")
}

func (v *GeneratorInstance) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltGenerator, v.Instance.key(ctx))
}

func (v *GeneratorInstance) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*GeneratorInstance)
	return ok && o == v
}
