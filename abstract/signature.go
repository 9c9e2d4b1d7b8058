package abstract

import (
	"fmt"
	"strings"

	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// Signature is the callable shape the matcher binds arguments against.
// Params lists all named parameters in declared order; those at index
// KwOnlyStart and beyond can only be passed by keyword. Vararg and Kwarg
// are the *args and **kwargs names, empty when absent, and their
// Annotations entries describe the element type, not the container.
type Signature struct {
	Name        string
	Params      []string
	KwOnlyStart int
	Vararg      string
	Kwarg       string
	Defaults    map[string]*typegraph.Variable
	Annotations map[string]Value
	Return      Value
	TypeParams  []*TypeParameter
	// Outer names type parameters already bound by an enclosing scope, such
	// as the class template for a method. Reusing one as a fresh parameter
	// is illegal.
	Outer     []string
	Mutations map[string]Value
}

// HasParam reports whether name is a declared named parameter.
func (s *Signature) HasParam(name string) bool {
	for _, p := range s.Params {
		if p == name {
			return true
		}
	}
	return false
}

// HasDefault reports whether the named parameter may be omitted.
func (s *Signature) HasDefault(name string) bool {
	_, ok := s.Defaults[name]
	return ok
}

// KwOnly reports whether the named parameter is keyword-only.
func (s *Signature) KwOnly(name string) bool {
	for i, p := range s.Params {
		if p == name {
			return i >= s.KwOnlyStart
		}
	}
	return false
}

// VariadicCount counts the *args and **kwargs formals, used by the failure
// ordering to prefer errors from less permissive signatures.
func (s *Signature) VariadicCount() int {
	n := 0
	if s.Vararg != "" {
		n++
	}
	if s.Kwarg != "" {
		n++
	}
	return n
}

// IsGeneric reports whether matching this signature requires enumerating
// views: any formal annotation mentioning a type parameter does.
func (s *Signature) IsGeneric() bool {
	if len(s.TypeParams) > 0 {
		return true
	}
	for _, a := range s.Annotations {
		if a != nil && a.Formal() {
			return true
		}
	}
	return s.Return != nil && s.Return.Formal()
}

func (s *Signature) String() string {
	var parts []string
	for i, p := range s.Params {
		part := p
		if a := s.Annotations[p]; a != nil {
			part += ": " + a.Name()
		}
		if s.HasDefault(p) {
			part += " = ..."
		}
		if i == s.KwOnlyStart && s.Vararg == "" {
			part = "*, " + part
		}
		parts = append(parts, part)
	}
	if s.Vararg != "" {
		va := "*" + s.Vararg
		if a := s.Annotations[s.Vararg]; a != nil {
			va += ": " + a.Name()
		}
		// re-slot so keyword-only params come after *args
		head := append([]string{}, parts[:s.KwOnlyStart]...)
		tail := parts[s.KwOnlyStart:]
		parts = append(append(head, va), tail...)
	}
	if s.Kwarg != "" {
		ka := "**" + s.Kwarg
		if a := s.Annotations[s.Kwarg]; a != nil {
			ka += ": " + a.Name()
		}
		parts = append(parts, ka)
	}
	out := fmt.Sprintf("%s(%s)", s.Name, strings.Join(parts, ", "))
	if s.Return != nil {
		out += " -> " + s.Return.Name()
	}
	return out
}

// Equal compares two signatures field by field. Defaults compare by key
// presence only, since equal declarations produce distinct default
// variables.
func (s *Signature) Equal(ctx pyctx.CallContext, other *Signature) bool {
	if s.Name != other.Name || s.KwOnlyStart != other.KwOnlyStart ||
		s.Vararg != other.Vararg || s.Kwarg != other.Kwarg {
		return false
	}
	if len(s.Params) != len(other.Params) {
		return false
	}
	for i, p := range s.Params {
		if other.Params[i] != p {
			return false
		}
	}
	if len(s.Defaults) != len(other.Defaults) {
		return false
	}
	for name := range s.Defaults {
		if _, ok := other.Defaults[name]; !ok {
			return false
		}
	}
	if !annotationsEqual(ctx, s.Annotations, other.Annotations) {
		return false
	}
	if !valuesEqual(ctx, s.Return, other.Return) {
		return false
	}
	if len(s.TypeParams) != len(other.TypeParams) {
		return false
	}
	for i, tp := range s.TypeParams {
		if !equal(ctx, tp, other.TypeParams[i]) {
			return false
		}
	}
	if len(s.Outer) != len(other.Outer) {
		return false
	}
	for i, o := range s.Outer {
		if other.Outer[i] != o {
			return false
		}
	}
	return annotationsEqual(ctx, s.Mutations, other.Mutations)
}

func annotationsEqual(ctx pyctx.CallContext, a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for name, av := range a {
		bv, ok := b[name]
		if !ok || !valuesEqual(ctx, av, bv) {
			return false
		}
	}
	return true
}

func valuesEqual(ctx pyctx.CallContext, a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return equal(ctx, a, b)
}

func (s *Signature) key(ctx pyctx.CallContext) uint64 {
	h := rehashBytes(rehash(saltSignature), []byte(s.Name))
	for i, p := range s.Params {
		h = rehashBytes(rehash(h, uint64(i)), []byte(p))
	}
	h = rehash(h, uint64(s.KwOnlyStart))
	h = rehashBytes(h, []byte(s.Vararg))
	h = rehashBytes(h, []byte(s.Kwarg))
	var dsum uint64
	for name := range s.Defaults {
		dsum += rehashBytes(rehash(0), []byte(name))
	}
	h = rehash(h, dsum)
	var asum uint64
	for name, a := range s.Annotations {
		asum += rehash(rehashBytes(rehash(0), []byte(name)), hash(ctx, a))
	}
	h = rehash(h, asum)
	if s.Return != nil {
		h = rehash(h, hash(ctx, s.Return))
	}
	return h
}

// SignatureFromDecl converts a declared signature. For a method of a
// generic class, the class template parameters come into scope and are
// recorded as outer names.
func SignatureFromDecl(ctx pyctx.CallContext, actx *Context, name string, ds *decl.Signature) (*Signature, error) {
	sig := &Signature{
		Name:        name,
		Defaults:    make(map[string]*typegraph.Variable),
		Annotations: make(map[string]Value),
		Mutations:   make(map[string]Value),
	}
	scope := make(map[string]*TypeParameter)
	module := moduleOf(name)
	if strings.Contains(module, ".") {
		// a dotted prefix means the signature belongs to a method, so the
		// owning class's template parameters come into scope
		if oc, err := actx.Loader.LookupClass(module); err == nil {
			for _, tp := range typeParamsFromDecl(ctx, actx, oc.TypeParams, moduleOf(oc.Name)) {
				scope[tp.name] = tp
				sig.Outer = append(sig.Outer, tp.name)
			}
		}
	}
	for _, tp := range typeParamsFromDecl(ctx, actx, ds.TypeParams, module) {
		scope[tp.name] = tp
		sig.TypeParams = append(sig.TypeParams, tp)
	}

	sig.KwOnlyStart = len(ds.Params)
	for i, p := range ds.Params {
		sig.Params = append(sig.Params, p.Name)
		if p.KwOnly && i < sig.KwOnlyStart {
			sig.KwOnlyStart = i
		}
		if p.Type != nil {
			a, err := typeFromDecl(ctx, actx, p.Type, scope)
			if err != nil {
				return nil, err
			}
			sig.Annotations[p.Name] = a
		}
		if p.Optional {
			sig.Defaults[p.Name] = defaultVar(ctx, actx, p.Name, sig.Annotations[p.Name])
		}
		if p.Mutated != nil {
			m, err := typeFromDecl(ctx, actx, p.Mutated, scope)
			if err != nil {
				return nil, err
			}
			sig.Mutations[p.Name] = m
		}
	}
	if ds.Vararg != nil {
		sig.Vararg = ds.Vararg.Name
		if ds.Vararg.Type != nil {
			a, err := typeFromDecl(ctx, actx, ds.Vararg.Type, scope)
			if err != nil {
				return nil, err
			}
			sig.Annotations[sig.Vararg] = a
		}
	}
	if ds.Kwarg != nil {
		sig.Kwarg = ds.Kwarg.Name
		if ds.Kwarg.Type != nil {
			a, err := typeFromDecl(ctx, actx, ds.Kwarg.Type, scope)
			if err != nil {
				return nil, err
			}
			sig.Annotations[sig.Kwarg] = a
		}
	}
	if ds.Return != nil {
		r, err := typeFromDecl(ctx, actx, ds.Return, scope)
		if err != nil {
			return nil, err
		}
		sig.Return = r
	}
	return sig, nil
}

func defaultVar(ctx pyctx.CallContext, actx *Context, name string, ann Value) *typegraph.Variable {
	if ann == nil {
		return actx.UnsolvableVar(name, actx.Root)
	}
	return actx.SingleVar(name, InstanceOf(ctx, ann, actx.Root), actx.Root)
}

// ToDecl converts the signature back to its declaration form. Default
// values degrade to optional flags and outer scope names are dropped, both
// of which FromDecl reconstructs.
func (s *Signature) ToDecl(ctx pyctx.CallContext) (*decl.Signature, error) {
	ds := &decl.Signature{}
	for i, p := range s.Params {
		dp := decl.Parameter{Name: p, KwOnly: i >= s.KwOnlyStart}
		if a := s.Annotations[p]; a != nil {
			t, err := valueToDecl(ctx, a)
			if err != nil {
				return nil, err
			}
			dp.Type = t
		}
		if s.HasDefault(p) {
			dp.Optional = true
		}
		if m := s.Mutations[p]; m != nil {
			t, err := valueToDecl(ctx, m)
			if err != nil {
				return nil, err
			}
			dp.Mutated = t
		}
		ds.Params = append(ds.Params, dp)
	}
	if s.Vararg != "" {
		dp := &decl.Parameter{Name: s.Vararg}
		if a := s.Annotations[s.Vararg]; a != nil {
			t, err := valueToDecl(ctx, a)
			if err != nil {
				return nil, err
			}
			dp.Type = t
		}
		ds.Vararg = dp
	}
	if s.Kwarg != "" {
		dp := &decl.Parameter{Name: s.Kwarg}
		if a := s.Annotations[s.Kwarg]; a != nil {
			t, err := valueToDecl(ctx, a)
			if err != nil {
				return nil, err
			}
			dp.Type = t
		}
		ds.Kwarg = dp
	}
	if s.Return != nil {
		t, err := valueToDecl(ctx, s.Return)
		if err != nil {
			return nil, err
		}
		ds.Return = t
	}
	for _, tp := range s.TypeParams {
		dtp := decl.TypeParam{
			Name:          tp.name,
			Covariant:     tp.covariant,
			Contravariant: tp.contravariant,
		}
		for _, c := range tp.constraints {
			t, err := valueToDecl(ctx, c)
			if err != nil {
				return nil, err
			}
			dtp.Constraints = append(dtp.Constraints, t)
		}
		if tp.bound != nil {
			t, err := valueToDecl(ctx, tp.bound)
			if err != nil {
				return nil, err
			}
			dtp.Bound = t
		}
		ds.TypeParams = append(ds.TypeParams, dtp)
	}
	return ds, nil
}

// valueToDecl renders an annotation value as a declared type expression.
func valueToDecl(ctx pyctx.CallContext, v Value) (decl.Type, error) {
	switch t := v.(type) {
	case *DeclClass:
		return decl.Named{Name: t.decl.Name}, nil
	case *InterpreterClass:
		return decl.Named{Name: t.name}, nil
	case *TypeParameter:
		return decl.Param{Name: t.name}, nil
	case *ParameterizedClass:
		base, err := valueToDecl(ctx, t.base)
		if err != nil {
			return nil, err
		}
		var params []decl.Type
		for _, name := range t.order {
			p, err := valueToDecl(ctx, t.params[name])
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
		return decl.Parameterized{Base: base, Params: params}, nil
	case *Union:
		var opts []decl.Type
		for _, o := range t.options {
			ot, err := valueToDecl(ctx, o)
			if err != nil {
				return nil, err
			}
			opts = append(opts, ot)
		}
		return decl.Union{Options: opts}, nil
	case *TupleClass:
		var elts []decl.Type
		for _, e := range t.elements {
			et, err := valueToDecl(ctx, e)
			if err != nil {
				return nil, err
			}
			elts = append(elts, et)
		}
		return decl.Tuple{Elements: elts}, nil
	case *CallableClass:
		var args []decl.Type
		for _, a := range t.args {
			at, err := valueToDecl(ctx, a)
			if err != nil {
				return nil, err
			}
			args = append(args, at)
		}
		ret, err := valueToDecl(ctx, t.ret)
		if err != nil {
			return nil, err
		}
		return decl.Callable{Args: args, Return: ret}, nil
	case *ConcreteInstance:
		if t.pyval != nil {
			return decl.Literal{Value: t.pyval}, nil
		}
	case *Unsolvable, *Unknown:
		return decl.Any{}, nil
	case *Empty:
		return decl.Nothing{}, nil
	}
	if _, ok := AsInstance(v); ok {
		return valueToDecl(ctx, v.Class())
	}
	return nil, errors.Errorf("no declaration form for %s", v.Name())
}
