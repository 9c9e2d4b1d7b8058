package abstract

import (
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// Attr resolves the named attribute on one binding of an object variable.
// The result is a variable whose bindings carry the object binding as a
// source, so feasibility queries see the dependency. A nil result with a
// nil error means the attribute does not exist; the caller decides whether
// that degrades to unsolvable or surfaces a diagnostic.
func Attr(ctx pyctx.CallContext, obj *typegraph.Binding, name string, node *typegraph.Node) (*typegraph.Variable, error) {
	ctx.CheckAbort()
	val := obj.Data().(Value)
	return attrOf(ctx, val, obj, name, node)
}

func attrOf(ctx pyctx.CallContext, val Value, obj *typegraph.Binding, name string, node *typegraph.Node) (*typegraph.Variable, error) {
	actx := val.context()
	switch v := val.(type) {
	case *Unsolvable, *Empty:
		return actx.UnsolvableVar(name, node), nil
	case *Unknown:
		return v.Attr(name, node), nil
	case *Union:
		out := actx.Program.NewVariable(name)
		for _, opt := range v.options {
			res, err := attrOf(ctx, opt, obj, name, node)
			if err != nil {
				return nil, err
			}
			if res != nil {
				out.PasteVariable(res, node, []*typegraph.Binding{obj})
			}
		}
		if len(out.Bindings()) == 0 {
			return nil, nil
		}
		return out, nil
	case *Module:
		return v.Member(name), nil
	case *TypeParameter:
		return actx.UnsolvableVar(name, node), nil
	}
	if inst, ok := AsInstance(val); ok {
		return instanceAttr(ctx, val, inst, obj, name, node)
	}
	if cls, ok := AsClass(val); ok {
		return classAttr(ctx, val, cls, obj, name, node)
	}
	return nil, nil
}

// instanceAttr looks in the instance dict first, then walks the class MRO
// binding any functions it finds to the receiver.
func instanceAttr(ctx pyctx.CallContext, val Value, inst InstanceValue, obj *typegraph.Binding, name string, node *typegraph.Node) (*typegraph.Variable, error) {
	actx := val.context()
	if av := inst.Attrs()[name]; av != nil {
		return av, nil
	}
	clsVal := val.Class()
	if cls, ok := AsClass(clsVal); ok {
		mro, err := cls.MRO(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range mro {
			cc, ok := AsClass(c)
			if !ok {
				if IsAmbiguous(c) {
					return actx.UnsolvableVar(name, node), nil
				}
				continue
			}
			own, err := cc.OwnAttr(ctx, name)
			if err != nil {
				return nil, err
			}
			if own == nil {
				continue
			}
			return bindToReceiver(actx, own, obj, name, node), nil
		}
		if cls.HasDynamicAttrs() {
			return actx.UnsolvableVar(name, node), nil
		}
	}
	if inst.MaybeMissingAttrs() {
		return actx.UnsolvableVar(name, node), nil
	}
	return nil, nil
}

// classAttr resolves an attribute on the class object itself. Functions
// stay unbound.
func classAttr(ctx pyctx.CallContext, val Value, cls ClassValue, obj *typegraph.Binding, name string, node *typegraph.Node) (*typegraph.Variable, error) {
	actx := val.context()
	mro, err := cls.MRO(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range mro {
		cc, ok := AsClass(c)
		if !ok {
			if IsAmbiguous(c) {
				return actx.UnsolvableVar(name, node), nil
			}
			continue
		}
		own, err := cc.OwnAttr(ctx, name)
		if err != nil {
			return nil, err
		}
		if own == nil {
			continue
		}
		out := actx.Program.NewVariable(name)
		out.AddBinding(own, []*typegraph.Binding{obj}, node)
		return out, nil
	}
	if cls.HasDynamicAttrs() {
		return actx.UnsolvableVar(name, node), nil
	}
	return nil, nil
}

// bindToReceiver wraps function values found on the class in bound methods.
// The receiver variable is a fresh one holding just the object binding, so
// the bound method stays tied to this interpretation of the object.
func bindToReceiver(actx *Context, own Value, obj *typegraph.Binding, name string, node *typegraph.Node) *typegraph.Variable {
	out := actx.Program.NewVariable(name)
	if !isFunctionLike(own) {
		out.AddBinding(own, []*typegraph.Binding{obj}, node)
		return out
	}
	recv := actx.Program.NewVariable(obj.Variable().Name())
	recv.PasteBinding(obj, node, nil)
	out.AddBinding(NewBoundFunction(actx, recv, own), []*typegraph.Binding{obj}, node)
	return out
}

func isFunctionLike(v Value) bool {
	switch t := v.(type) {
	case *InterpreterFunction, *NativeFunction:
		return true
	case *DeclFunction:
		return t.IsMethod()
	case *Union:
		for _, o := range t.options {
			if isFunctionLike(o) {
				return true
			}
		}
	}
	return false
}
