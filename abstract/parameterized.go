package abstract

import (
	"fmt"
	"strings"

	"github.com/pythiaco/pythia/golib/pyctx"
)

// ParameterizedClass is a generic class with some or all of its type
// parameters filled in, e.g. list[int]. Values are interned per
// (base, parameter assignment) so repeated conversions of the same
// annotation share one value.
type ParameterizedClass struct {
	ctx    *Context
	base   Value
	params map[string]Value
	// order lists the parameter names in template order, for rendering and
	// for positional re-parameterization.
	order  []string
	formal bool
	classCache
}

// InternParameterized returns the canonical value for base parameterized
// with params, keyed by the base's template names. Names outside the
// template are an error. Template names missing from params are filled
// with unsolvable.
func (ctx *Context) InternParameterized(call pyctx.CallContext, base Value, params map[string]Value) (Value, error) {
	cls, ok := AsClass(base)
	if !ok {
		return ctx.unsolvable, nil
	}
	tpl, err := cls.Template(call)
	if err != nil {
		return nil, err
	}
	named := make(map[string]bool, len(tpl))
	for _, tp := range tpl {
		named[tp.name] = true
	}
	for name := range params {
		if !named[name] {
			return nil, &GenericTypeError{Class: base.Name(), Detail: fmt.Sprintf("no type parameter %s", name)}
		}
	}
	full := make(map[string]Value, len(tpl))
	order := make([]string, 0, len(tpl))
	for _, tp := range tpl {
		if p, ok := params[tp.name]; ok && p != nil {
			full[tp.name] = p
		} else {
			full[tp.name] = ctx.unsolvable
		}
		order = append(order, tp.name)
	}
	pc := &ParameterizedClass{ctx: ctx, base: base, params: full, order: order}
	for _, p := range full {
		if p.Formal() {
			pc.formal = true
			break
		}
	}
	if base.Formal() {
		pc.formal = true
	}
	h := pc.key(call)
	for _, existing := range ctx.parameterized[h] {
		if existing.equal(call, pc) {
			return existing, nil
		}
	}
	ctx.parameterized[h] = append(ctx.parameterized[h], pc)
	return pc, nil
}

// Name implements Value
func (v *ParameterizedClass) Name() string {
	parts := make([]string, 0, len(v.order))
	for _, name := range v.order {
		parts = append(parts, v.params[name].Name())
	}
	return fmt.Sprintf("%s[%s]", v.base.Name(), strings.Join(parts, ", "))
}

// Kind implements Value
func (v *ParameterizedClass) Kind() Kind { return ClassKind }

// Class implements Value
func (v *ParameterizedClass) Class() Value { return v.base.Class() }

// Formal implements Value
func (v *ParameterizedClass) Formal() bool { return v.formal }

// Base returns the generic class being parameterized.
func (v *ParameterizedClass) Base() Value { return v.base }

// TypeParam returns the value bound to the named parameter, or nil.
func (v *ParameterizedClass) TypeParam(name string) Value { return v.params[name] }

// Params returns the full parameter assignment keyed by template name.
func (v *ParameterizedClass) Params() map[string]Value { return v.params }

func (v *ParameterizedClass) context() *Context { return v.ctx }

func (v *ParameterizedClass) key(ctx pyctx.CallContext) uint64 {
	var sum uint64
	for name, p := range v.params {
		h := rehashBytes(rehash(saltTypeParam), []byte(name))
		sum += rehash(h, hash(ctx, p))
	}
	return rehash(saltParameterized, hash(ctx, v.base), sum)
}

func (v *ParameterizedClass) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*ParameterizedClass)
	if !ok || !equal(ctx, v.base, o.base) || len(v.params) != len(o.params) {
		return false
	}
	for name, p := range v.params {
		op, ok := o.params[name]
		if !ok || !equal(ctx, p, op) {
			return false
		}
	}
	return true
}

func (v *ParameterizedClass) String() string { return v.Name() }

// BaseValues implements ClassValue
func (v *ParameterizedClass) BaseValues(ctx pyctx.CallContext) []Value {
	cls, ok := AsClass(v.base)
	if !ok {
		return nil
	}
	return cls.BaseValues(ctx)
}

// MRO implements ClassValue
func (v *ParameterizedClass) MRO(ctx pyctx.CallContext) ([]Value, error) {
	if !v.mroDone {
		v.mro, v.mroErr = computeMRO(ctx, v)
		v.mroDone = true
	}
	return v.mro, v.mroErr
}

// Template implements ClassValue
func (v *ParameterizedClass) Template(ctx pyctx.CallContext) ([]*TypeParameter, error) {
	cls, ok := AsClass(v.base)
	if !ok {
		return nil, nil
	}
	return cls.Template(ctx)
}

// OwnAttr implements ClassValue. Methods live on the generic base.
func (v *ParameterizedClass) OwnAttr(ctx pyctx.CallContext, name string) (Value, error) {
	cls, ok := AsClass(v.base)
	if !ok {
		return nil, nil
	}
	return cls.OwnAttr(ctx, name)
}

// OwnNew implements ClassValue
func (v *ParameterizedClass) OwnNew(ctx pyctx.CallContext) (Value, error) {
	cls, ok := AsClass(v.base)
	if !ok {
		return nil, nil
	}
	return cls.OwnNew(ctx)
}

// IsAbstract implements ClassValue
func (v *ParameterizedClass) IsAbstract() bool {
	cls, ok := AsClass(v.base)
	return ok && cls.IsAbstract()
}

// IsProtocol implements ClassValue
func (v *ParameterizedClass) IsProtocol() bool {
	cls, ok := AsClass(v.base)
	return ok && cls.IsProtocol()
}

// HasDynamicAttrs implements ClassValue
func (v *ParameterizedClass) HasDynamicAttrs() bool {
	cls, ok := AsClass(v.base)
	return ok && cls.HasDynamicAttrs()
}

// TupleClass is a heterogeneous tuple type, e.g. Tuple[int, str]. The
// element at each index is tracked separately.
type TupleClass struct {
	ctx      *Context
	elements []Value
	classCache
}

// NewTupleClass creates a heterogeneous tuple type with the given
// per-index element types.
func NewTupleClass(ctx *Context, elements []Value) *TupleClass {
	return &TupleClass{ctx: ctx, elements: elements}
}

// Name implements Value
func (v *TupleClass) Name() string {
	parts := make([]string, 0, len(v.elements))
	for _, e := range v.elements {
		parts = append(parts, e.Name())
	}
	return fmt.Sprintf("Tuple[%s]", strings.Join(parts, ", "))
}

// Kind implements Value
func (v *TupleClass) Kind() Kind { return ClassKind }

// Class implements Value
func (v *TupleClass) Class() Value {
	t, err := v.ctx.LoadClass("builtins.type")
	if err != nil {
		return v.ctx.unsolvable
	}
	return t
}

// Formal implements Value
func (v *TupleClass) Formal() bool {
	for _, e := range v.elements {
		if e.Formal() {
			return true
		}
	}
	return false
}

// Elements returns the per-index element types.
func (v *TupleClass) Elements() []Value { return v.elements }

func (v *TupleClass) context() *Context { return v.ctx }

func (v *TupleClass) key(ctx pyctx.CallContext) uint64 {
	return rehashValues(ctx, rehash(saltTupleClass), v.elements...)
}

func (v *TupleClass) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*TupleClass)
	if !ok || len(v.elements) != len(o.elements) {
		return false
	}
	for i, e := range v.elements {
		if !equal(ctx, e, o.elements[i]) {
			return false
		}
	}
	return true
}

func (v *TupleClass) String() string { return v.Name() }

// BaseValues implements ClassValue
func (v *TupleClass) BaseValues(ctx pyctx.CallContext) []Value {
	t, err := v.ctx.LoadClass("builtins.tuple")
	if err != nil {
		return nil
	}
	return []Value{t}
}

// MRO implements ClassValue
func (v *TupleClass) MRO(ctx pyctx.CallContext) ([]Value, error) {
	if !v.mroDone {
		v.mro, v.mroErr = computeMRO(ctx, v)
		v.mroDone = true
	}
	return v.mro, v.mroErr
}

// Template implements ClassValue
func (v *TupleClass) Template(ctx pyctx.CallContext) ([]*TypeParameter, error) {
	return nil, nil
}

// OwnAttr implements ClassValue. Tuple methods come from builtins.tuple
// further down the MRO.
func (v *TupleClass) OwnAttr(ctx pyctx.CallContext, name string) (Value, error) {
	return nil, nil
}

// OwnNew implements ClassValue
func (v *TupleClass) OwnNew(ctx pyctx.CallContext) (Value, error) { return nil, nil }

// IsAbstract implements ClassValue
func (v *TupleClass) IsAbstract() bool { return false }

// IsProtocol implements ClassValue
func (v *TupleClass) IsProtocol() bool { return false }

// HasDynamicAttrs implements ClassValue
func (v *TupleClass) HasDynamicAttrs() bool { return false }

// CallableClass is the type of callables with a known argument list and
// return type. A nil argument list means the arguments are unspecified.
type CallableClass struct {
	ctx  *Context
	args []Value
	ret  Value
	classCache
}

// NewCallableClass creates a callable type. args lists the positional
// argument types in order and may be nil for an unspecified signature.
func NewCallableClass(ctx *Context, args []Value, ret Value) *CallableClass {
	if ret == nil {
		ret = ctx.unsolvable
	}
	return &CallableClass{ctx: ctx, args: args, ret: ret}
}

// Name implements Value
func (v *CallableClass) Name() string {
	parts := make([]string, 0, len(v.args))
	for _, a := range v.args {
		parts = append(parts, a.Name())
	}
	return fmt.Sprintf("Callable[[%s], %s]", strings.Join(parts, ", "), v.ret.Name())
}

// Kind implements Value
func (v *CallableClass) Kind() Kind { return ClassKind }

// Class implements Value
func (v *CallableClass) Class() Value {
	t, err := v.ctx.LoadClass("builtins.type")
	if err != nil {
		return v.ctx.unsolvable
	}
	return t
}

// Formal implements Value
func (v *CallableClass) Formal() bool {
	for _, a := range v.args {
		if a.Formal() {
			return true
		}
	}
	return v.ret.Formal()
}

// Args returns the positional argument types, nil when unspecified.
func (v *CallableClass) Args() []Value { return v.args }

// Return returns the return type.
func (v *CallableClass) Return() Value { return v.ret }

func (v *CallableClass) context() *Context { return v.ctx }

func (v *CallableClass) key(ctx pyctx.CallContext) uint64 {
	h := rehashValues(ctx, rehash(saltCallableClass), v.args...)
	return rehashValues(ctx, h, v.ret)
}

func (v *CallableClass) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*CallableClass)
	if !ok || len(v.args) != len(o.args) || !equal(ctx, v.ret, o.ret) {
		return false
	}
	for i, a := range v.args {
		if !equal(ctx, a, o.args[i]) {
			return false
		}
	}
	return true
}

func (v *CallableClass) String() string { return v.Name() }

// BaseValues implements ClassValue
func (v *CallableClass) BaseValues(ctx pyctx.CallContext) []Value {
	obj, err := v.ctx.LoadClass("builtins.object")
	if err != nil {
		return nil
	}
	return []Value{obj}
}

// MRO implements ClassValue
func (v *CallableClass) MRO(ctx pyctx.CallContext) ([]Value, error) {
	if !v.mroDone {
		v.mro, v.mroErr = computeMRO(ctx, v)
		v.mroDone = true
	}
	return v.mro, v.mroErr
}

// Template implements ClassValue
func (v *CallableClass) Template(ctx pyctx.CallContext) ([]*TypeParameter, error) {
	return nil, nil
}

// OwnAttr implements ClassValue
func (v *CallableClass) OwnAttr(ctx pyctx.CallContext, name string) (Value, error) {
	return nil, nil
}

// OwnNew implements ClassValue
func (v *CallableClass) OwnNew(ctx pyctx.CallContext) (Value, error) { return nil, nil }

// IsAbstract implements ClassValue
func (v *CallableClass) IsAbstract() bool { return false }

// IsProtocol implements ClassValue
func (v *CallableClass) IsProtocol() bool { return false }

// HasDynamicAttrs implements ClassValue
func (v *CallableClass) HasDynamicAttrs() bool { return false }
