package abstract

import (
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// InterpreterClass is a class built by executing a class body. Its bases and
// members are variables, since flow analysis may find several candidates for
// each.
type InterpreterClass struct {
	ctx     *Context
	id      int
	name    string
	bases   []*typegraph.Variable
	members map[string]*typegraph.Variable
	dynamic bool
	classCache
}

// NewInterpreterClass creates a class from an executed class body. A class
// with no explicit bases inherits from object.
func NewInterpreterClass(ctx *Context, name string, bases []*typegraph.Variable, members map[string]*typegraph.Variable) *InterpreterClass {
	if len(bases) == 0 {
		if obj, err := ctx.LoadClass("builtins.object"); err == nil {
			bases = []*typegraph.Variable{ctx.SingleVar("object", obj, ctx.Root)}
		}
	}
	if members == nil {
		members = make(map[string]*typegraph.Variable)
	}
	return &InterpreterClass{
		ctx:     ctx,
		id:      ctx.nextID(),
		name:    name,
		bases:   bases,
		members: members,
	}
}

// Name implements Value
func (v *InterpreterClass) Name() string { return v.name }

// Kind implements Value
func (v *InterpreterClass) Kind() Kind { return ClassKind }

// Class implements Value
func (v *InterpreterClass) Class() Value {
	t, err := v.ctx.LoadClass("builtins.type")
	if err != nil {
		return v.ctx.unsolvable
	}
	return t
}

// Formal implements Value
func (v *InterpreterClass) Formal() bool { return false }

// Members returns the class dict. Callers must not mutate it directly;
// use SetMember.
func (v *InterpreterClass) Members() map[string]*typegraph.Variable { return v.members }

// Member returns the class dict entry for name, or nil.
func (v *InterpreterClass) Member(name string) *typegraph.Variable { return v.members[name] }

// SetMember adds or replaces a class dict entry.
func (v *InterpreterClass) SetMember(name string, member *typegraph.Variable) {
	v.members[name] = member
}

func (v *InterpreterClass) context() *Context { return v.ctx }

func (v *InterpreterClass) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltInterpClass, uint64(v.id))
}

func (v *InterpreterClass) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*InterpreterClass)
	return ok && o == v
}

func (v *InterpreterClass) String() string { return v.name }

// rawBaseValues collapses each base variable to a single value, keeping any
// parameterization of the Generic marker intact. Template parsing needs the
// parameter list the marker was subscripted with.
func (v *InterpreterClass) rawBaseValues(ctx pyctx.CallContext) []Value {
	out := make([]Value, 0, len(v.bases))
	for _, bv := range v.bases {
		var base Value
		data := bv.Data()
		switch len(data) {
		case 0:
			base = v.ctx.unsolvable
		case 1:
			base = data[0].(Value)
		default:
			vals := make([]Value, 0, len(data))
			for _, d := range data {
				vals = append(vals, d.(Value))
			}
			base = v.ctx.unite(ctx, 0, vals)
		}
		out = append(out, base)
	}
	return out
}

// BaseValues implements ClassValue. A base variable with several bindings
// collapses to the union of them; parameterizations of the Generic marker
// collapse to the bare marker.
func (v *InterpreterClass) BaseValues(ctx pyctx.CallContext) []Value {
	raw := v.rawBaseValues(ctx)
	out := make([]Value, len(raw))
	for i, b := range raw {
		out[i] = elideGenericMarker(ctx, b)
	}
	return out
}

// BaseVars returns the raw base variables in declaration order.
func (v *InterpreterClass) BaseVars() []*typegraph.Variable { return v.bases }

// MRO implements ClassValue
func (v *InterpreterClass) MRO(ctx pyctx.CallContext) ([]Value, error) {
	if !v.mroDone {
		v.mro, v.mroErr = computeMRO(ctx, v)
		v.mroDone = true
	}
	return v.mro, v.mroErr
}

// Template implements ClassValue
func (v *InterpreterClass) Template(ctx pyctx.CallContext) ([]*TypeParameter, error) {
	if !v.tplDone {
		v.tplDone = true
		v.template, v.formals, v.tplErr = parseTemplate(ctx, v)
	}
	return v.template, v.tplErr
}

// Formals returns the merged formal parameter assignments inherited from
// parameterized bases, keyed by qualified name such as builtins.list.T.
// Aliases to the class's own parameters stay as TypeParameter values.
func (v *InterpreterClass) Formals(ctx pyctx.CallContext) (map[string]Value, error) {
	if _, err := v.Template(ctx); err != nil {
		return nil, err
	}
	return v.formals, nil
}

// OwnAttr implements ClassValue. A member with several bindings collapses
// to the union of them.
func (v *InterpreterClass) OwnAttr(ctx pyctx.CallContext, name string) (Value, error) {
	m := v.members[name]
	if m == nil {
		return nil, nil
	}
	data := m.Data()
	switch len(data) {
	case 0:
		return nil, nil
	case 1:
		return data[0].(Value), nil
	}
	vals := make([]Value, 0, len(data))
	for _, d := range data {
		vals = append(vals, d.(Value))
	}
	return v.ctx.unite(ctx, 0, vals), nil
}

// OwnNew implements ClassValue
func (v *InterpreterClass) OwnNew(ctx pyctx.CallContext) (Value, error) {
	return v.OwnAttr(ctx, "__new__")
}

// IsAbstract implements ClassValue
func (v *InterpreterClass) IsAbstract() bool { return false }

// IsProtocol implements ClassValue
func (v *InterpreterClass) IsProtocol() bool { return false }

// HasDynamicAttrs implements ClassValue. True when the class defines
// __getattr__ or when base resolution was too ambiguous to trust lookups.
func (v *InterpreterClass) HasDynamicAttrs() bool {
	return v.dynamic || v.members["__getattr__"] != nil
}

// InterpreterFunction is a function defined by analyzed code. Body and
// Globals are opaque here; the interpreter that created the function knows
// how to execute them.
type InterpreterFunction struct {
	ctx     *Context
	id      int
	name    string
	sig     *Signature
	Body    interface{}
	Globals interface{}
}

// NewInterpreterFunction creates a function value for a definition site.
func NewInterpreterFunction(ctx *Context, name string, sig *Signature) *InterpreterFunction {
	return &InterpreterFunction{ctx: ctx, id: ctx.nextID(), name: name, sig: sig}
}

// Name implements Value
func (v *InterpreterFunction) Name() string { return v.name }

// Kind implements Value
func (v *InterpreterFunction) Kind() Kind { return FunctionKind }

// Class implements Value
func (v *InterpreterFunction) Class() Value { return v.ctx.unsolvable }

// Formal implements Value
func (v *InterpreterFunction) Formal() bool { return false }

// Signature returns the declared signature.
func (v *InterpreterFunction) Signature() *Signature { return v.sig }

func (v *InterpreterFunction) context() *Context { return v.ctx }

func (v *InterpreterFunction) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltInterpFunc, uint64(v.id))
}

func (v *InterpreterFunction) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*InterpreterFunction)
	return ok && o == v
}

func (v *InterpreterFunction) String() string { return v.name }

// BoundFunction pairs a function with the receiver it was looked up on.
type BoundFunction struct {
	ctx  *Context
	recv *typegraph.Variable
	fn   Value
}

// NewBoundFunction binds fn to the given receiver variable.
func NewBoundFunction(ctx *Context, recv *typegraph.Variable, fn Value) *BoundFunction {
	return &BoundFunction{ctx: ctx, recv: recv, fn: fn}
}

// Name implements Value
func (v *BoundFunction) Name() string { return v.fn.Name() }

// Kind implements Value
func (v *BoundFunction) Kind() Kind { return FunctionKind }

// Class implements Value
func (v *BoundFunction) Class() Value { return v.fn.Class() }

// Formal implements Value
func (v *BoundFunction) Formal() bool { return false }

// Underlying returns the unbound function.
func (v *BoundFunction) Underlying() Value { return v.fn }

// Receiver returns the bound receiver variable.
func (v *BoundFunction) Receiver() *typegraph.Variable { return v.recv }

func (v *BoundFunction) context() *Context { return v.ctx }

func (v *BoundFunction) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltBoundFunc, hash(ctx, v.fn), hashVariable(ctx, v.recv))
}

func (v *BoundFunction) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*BoundFunction)
	return ok && o.recv == v.recv && equal(ctx, v.fn, o.fn)
}

func (v *BoundFunction) String() string { return "bound " + v.fn.Name() }

// NativeFunction is a function implemented in Go, used for builtins whose
// behavior cannot be expressed as a declaration, such as isinstance.
type NativeFunction struct {
	ctx  *Context
	name string
	F    func(call pyctx.CallContext, node *typegraph.Node, args *Args) (*typegraph.Variable, error)
}

// NewNativeFunction wraps a Go function as a callable value.
func NewNativeFunction(ctx *Context, name string, f func(call pyctx.CallContext, node *typegraph.Node, args *Args) (*typegraph.Variable, error)) *NativeFunction {
	return &NativeFunction{ctx: ctx, name: name, F: f}
}

// Name implements Value
func (v *NativeFunction) Name() string { return v.name }

// Kind implements Value
func (v *NativeFunction) Kind() Kind { return FunctionKind }

// Class implements Value
func (v *NativeFunction) Class() Value { return v.ctx.unsolvable }

// Formal implements Value
func (v *NativeFunction) Formal() bool { return false }

func (v *NativeFunction) context() *Context { return v.ctx }

func (v *NativeFunction) key(ctx pyctx.CallContext) uint64 {
	return rehashBytes(rehash(saltNativeFunc), []byte(v.name))
}

func (v *NativeFunction) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*NativeFunction)
	return ok && o == v
}

func (v *NativeFunction) String() string { return v.name }
