package abstract

import (
	"github.com/pythiaco/pythia/golib/pyctx"
)

// TypeParameter is a formal type parameter, the abstract value of a TypeVar.
// Two type parameters are interchangeable only if name, constraints, bound,
// variance and originating module all match.
type TypeParameter struct {
	ctx           *Context
	name          string
	module        string
	constraints   []Value
	bound         Value
	covariant     bool
	contravariant bool
}

// NewTypeParameter creates a type parameter value.
func NewTypeParameter(ctx *Context, name, module string, constraints []Value, bound Value, covariant, contravariant bool) *TypeParameter {
	return &TypeParameter{
		ctx:           ctx,
		name:          name,
		module:        module,
		constraints:   constraints,
		bound:         bound,
		covariant:     covariant,
		contravariant: contravariant,
	}
}

// Name implements Value
func (v *TypeParameter) Name() string { return v.name }

// Kind implements Value
func (v *TypeParameter) Kind() Kind { return TypeParamKind }

// Class implements Value
func (v *TypeParameter) Class() Value { return v.ctx.unsolvable }

// Formal implements Value. A bare type parameter is always formal.
func (v *TypeParameter) Formal() bool { return true }

// Module returns the module the parameter was declared in.
func (v *TypeParameter) Module() string { return v.module }

// Constraints returns the constraint values, if any.
func (v *TypeParameter) Constraints() []Value { return v.constraints }

// Bound returns the upper bound, or nil.
func (v *TypeParameter) Bound() Value { return v.bound }

// Covariant reports declared covariance.
func (v *TypeParameter) Covariant() bool { return v.covariant }

// Contravariant reports declared contravariance.
func (v *TypeParameter) Contravariant() bool { return v.contravariant }

func (v *TypeParameter) context() *Context { return v.ctx }

func (v *TypeParameter) key(ctx pyctx.CallContext) uint64 {
	h := rehashBytes(saltTypeParam, []byte(v.name+"."+v.module))
	h = rehashValues(ctx, h, v.constraints...)
	h = rehashValues(ctx, h, v.bound)
	if v.covariant {
		h = rehash(h, 1)
	}
	if v.contravariant {
		h = rehash(h, 2)
	}
	return h
}

func (v *TypeParameter) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*TypeParameter)
	if !ok {
		return false
	}
	if v.name != o.name || v.module != o.module ||
		v.covariant != o.covariant || v.contravariant != o.contravariant {
		return false
	}
	if len(v.constraints) != len(o.constraints) {
		return false
	}
	for i := range v.constraints {
		if !equal(ctx, v.constraints[i], o.constraints[i]) {
			return false
		}
	}
	return equal(ctx, v.bound, o.bound)
}

func (v *TypeParameter) String() string { return v.name }

// TypeParameterInstance is a type parameter observed through a concrete
// instance: looking up list[T].__getitem__ on an instance yields T bound to
// that instance's element variable.
type TypeParameterInstance struct {
	ctx      *Context
	param    *TypeParameter
	instance *Instance
}

// NewTypeParameterInstance binds a type parameter to an instance.
func NewTypeParameterInstance(ctx *Context, param *TypeParameter, instance *Instance) *TypeParameterInstance {
	return &TypeParameterInstance{ctx: ctx, param: param, instance: instance}
}

// Name implements Value
func (v *TypeParameterInstance) Name() string { return v.param.name }

// Kind implements Value
func (v *TypeParameterInstance) Kind() Kind { return TypeParamKind }

// Class implements Value
func (v *TypeParameterInstance) Class() Value { return v.ctx.unsolvable }

// Formal implements Value. The parameter is already anchored to an instance,
// so it resolves without substitution.
func (v *TypeParameterInstance) Formal() bool { return false }

// Param returns the underlying type parameter.
func (v *TypeParameterInstance) Param() *TypeParameter { return v.param }

// Instance returns the instance the parameter is anchored to.
func (v *TypeParameterInstance) Instance() *Instance { return v.instance }

func (v *TypeParameterInstance) context() *Context { return v.ctx }

func (v *TypeParameterInstance) key(ctx pyctx.CallContext) uint64 {
	return rehashValues(ctx, rehash(saltTypeParamInst), v.param, v.instance)
}

func (v *TypeParameterInstance) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*TypeParameterInstance)
	if !ok {
		return false
	}
	return v.instance == o.instance && equal(ctx, v.param, o.param)
}

func (v *TypeParameterInstance) String() string { return v.param.name + "'" }
