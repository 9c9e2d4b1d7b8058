package abstract

import (
	"strings"

	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/golib/pyctx"
)

// DeclClass is a class backed by a stub declaration. Instances are interned
// per fully qualified name, so interface equality is class identity.
type DeclClass struct {
	ctx  *Context
	decl *decl.Class
	classCache

	basesDone bool
	bases     []Value
}

// Name implements Value
func (v *DeclClass) Name() string { return v.decl.Name }

// Kind implements Value
func (v *DeclClass) Kind() Kind { return ClassKind }

// Class implements Value
func (v *DeclClass) Class() Value {
	t, err := v.ctx.LoadClass("builtins.type")
	if err != nil {
		return v.ctx.unsolvable
	}
	return t
}

// Formal implements Value
func (v *DeclClass) Formal() bool { return false }

// Decl returns the backing declaration.
func (v *DeclClass) Decl() *decl.Class { return v.decl }

func (v *DeclClass) context() *Context { return v.ctx }

func (v *DeclClass) key(ctx pyctx.CallContext) uint64 {
	return rehashBytes(rehash(saltDeclClass), []byte(v.decl.Name))
}

func (v *DeclClass) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*DeclClass)
	return ok && o == v
}

func (v *DeclClass) String() string { return v.decl.Name }

// BaseValues implements ClassValue
func (v *DeclClass) BaseValues(ctx pyctx.CallContext) []Value {
	if v.basesDone {
		return v.bases
	}
	v.basesDone = true
	if len(v.decl.Bases) == 0 {
		if v.decl.Name != "builtins.object" {
			if obj, err := v.ctx.LoadClass("builtins.object"); err == nil {
				v.bases = []Value{obj}
			}
		}
		return v.bases
	}
	scope := scopeOf(ctx, v.ctx, v.decl.TypeParams, moduleOf(v.decl.Name))
	for _, b := range v.decl.Bases {
		val, err := typeFromDecl(ctx, v.ctx, b, scope)
		if err != nil {
			val = v.ctx.unsolvable
		}
		v.bases = append(v.bases, elideGenericMarker(ctx, val))
	}
	return v.bases
}

// MRO implements ClassValue
func (v *DeclClass) MRO(ctx pyctx.CallContext) ([]Value, error) {
	if !v.mroDone {
		v.mro, v.mroErr = computeMRO(ctx, v)
		v.mroDone = true
	}
	return v.mro, v.mroErr
}

// Template implements ClassValue
func (v *DeclClass) Template(ctx pyctx.CallContext) ([]*TypeParameter, error) {
	if !v.tplDone {
		v.tplDone = true
		v.template = typeParamsFromDecl(ctx, v.ctx, v.decl.TypeParams, moduleOf(v.decl.Name))
	}
	return v.template, v.tplErr
}

// OwnAttr implements ClassValue. Declared classes only carry methods.
func (v *DeclClass) OwnAttr(ctx pyctx.CallContext, name string) (Value, error) {
	m := v.decl.Method(name)
	if m == nil {
		return nil, nil
	}
	return v.ctx.FunctionValue(m), nil
}

// OwnNew implements ClassValue. The builtins table declares no default
// __new__ on object, so any hit here is an override.
func (v *DeclClass) OwnNew(ctx pyctx.CallContext) (Value, error) {
	return v.OwnAttr(ctx, "__new__")
}

// IsAbstract implements ClassValue
func (v *DeclClass) IsAbstract() bool { return v.decl.Abstract }

// IsProtocol implements ClassValue
func (v *DeclClass) IsProtocol() bool { return v.decl.Protocol }

// HasDynamicAttrs implements ClassValue
func (v *DeclClass) HasDynamicAttrs() bool { return v.decl.HasDynamicAttrs }

// moduleOf splits the module part off a fully qualified dotted name.
func moduleOf(fq string) string {
	if i := strings.LastIndex(fq, "."); i >= 0 {
		return fq[:i]
	}
	return ""
}

// DeclFunction is a function backed by stub signatures, possibly overloaded.
// Instances are interned per declaration.
type DeclFunction struct {
	ctx  *Context
	decl *decl.Function

	sigsDone bool
	sigs     []*Signature
	sigsErr  error
}

// Name implements Value
func (v *DeclFunction) Name() string { return v.decl.Name }

// Kind implements Value
func (v *DeclFunction) Kind() Kind { return FunctionKind }

// Class implements Value
func (v *DeclFunction) Class() Value { return v.ctx.unsolvable }

// Formal implements Value
func (v *DeclFunction) Formal() bool { return false }

// Decl returns the backing declaration.
func (v *DeclFunction) Decl() *decl.Function { return v.decl }

// IsMethod reports whether the function binds a receiver when looked up on
// an instance.
func (v *DeclFunction) IsMethod() bool { return v.decl.Kind == decl.Method }

// Signatures returns the converted overload signatures in declared order.
func (v *DeclFunction) Signatures(ctx pyctx.CallContext) ([]*Signature, error) {
	if !v.sigsDone {
		v.sigsDone = true
		for _, ds := range v.decl.Signatures {
			sig, err := SignatureFromDecl(ctx, v.ctx, v.decl.Name, ds)
			if err != nil {
				v.sigsErr = err
				break
			}
			v.sigs = append(v.sigs, sig)
		}
	}
	return v.sigs, v.sigsErr
}

func (v *DeclFunction) context() *Context { return v.ctx }

func (v *DeclFunction) key(ctx pyctx.CallContext) uint64 {
	return rehashBytes(rehash(saltDeclFunc), []byte(v.decl.Name))
}

func (v *DeclFunction) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*DeclFunction)
	return ok && o == v
}

func (v *DeclFunction) String() string { return v.decl.Name }
