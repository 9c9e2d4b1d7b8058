package interp

import (
	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// binaryMethod maps an operator to the dunder implementing it. Subscript is
// spelled [] so literal dict and list lookups go through __getitem__ like
// any other binary operation.
var binaryMethod = map[string]string{
	"+":  "__add__",
	"-":  "__sub__",
	"*":  "__mul__",
	"/":  "__truediv__",
	"//": "__floordiv__",
	"%":  "__mod__",
	"**": "__pow__",
	"[]": "__getitem__",
	"&":  "__and__",
	"|":  "__or__",
	"^":  "__xor__",
	"<<": "__lshift__",
	">>": "__rshift__",
	"==": "__eq__",
	"!=": "__ne__",
	"<":  "__lt__",
	"<=": "__le__",
	">":  "__gt__",
	">=": "__ge__",
}

// execBody executes ops in fr. Ops on a dead path are skipped until the next
// label, which revives the path if any arm reached it.
func (i *Interpreter) execBody(ctx pyctx.CallContext, fr *frame, ops []Op) error {
	for pc := range ops {
		op := &ops[pc]
		ctx.CheckAbort()
		if fr.node == nil && op.Code != OpLabel {
			continue
		}
		if err := i.execOp(ctx, fr, op); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execOp(ctx pyctx.CallContext, fr *frame, op *Op) error {
	i.trace("%s: %s %s", fr.name, op.Code, op.Name)
	if op.Line > 0 {
		i.pos = diag.Pos{Line: op.Line, Col: op.Col}
		i.m.SetPos(i.pos)
	}
	switch op.Code {
	case OpLoadConst:
		return i.execLoadConst(fr, op)
	case OpLoadName:
		fr.push(i.resolveName(fr, op.Name))
		return nil
	case OpStoreName:
		return i.execStoreName(fr, op)
	case OpLoadAttr:
		return i.execLoadAttr(ctx, fr, op)
	case OpStoreAttr:
		return i.execStoreAttr(fr, op)
	case OpBuildList:
		return i.execBuildSeq(fr, op, "builtins.list")
	case OpBuildTuple:
		return i.execBuildSeq(fr, op, "builtins.tuple")
	case OpBuildMap:
		return i.execBuildMap(fr, op)
	case OpBinaryOp:
		return i.execBinary(ctx, fr, op)
	case OpCallFunction:
		return i.execCall(ctx, fr, op)
	case OpMakeFunction:
		return i.execMakeFunction(ctx, fr, op)
	case OpMakeClass:
		return i.execMakeClass(ctx, fr, op)
	case OpBranch:
		return i.execBranch(fr, op)
	case OpJump:
		return i.execJump(fr, op)
	case OpLabel:
		return i.execLabel(fr, op)
	case OpReturn:
		return i.execReturn(fr, op)
	}
	return errors.Errorf("interp: unknown opcode %q", op.Code)
}

// execLoadConst pushes the variable of a literal constant. The variable is
// created once per op with its binding at the root, so constants keep their
// identity across passes and are visible on every path.
func (i *Interpreter) execLoadConst(fr *frame, op *Op) error {
	v, ok := i.consts[op]
	if !ok {
		val, err := i.constValue(op.Const)
		if err != nil {
			return err
		}
		v = i.actx.SingleVar(val.Name(), val, i.actx.Root)
		i.consts[op] = v
	}
	fr.push(v)
	return nil
}

// constValue builds the abstract value of a literal. YAML decodes integers
// as int, so both int and int64 are accepted.
func (i *Interpreter) constValue(c interface{}) (abstract.Value, error) {
	var clsName string
	switch t := c.(type) {
	case nil:
		cls, err := i.actx.LoadClass("builtins.NoneType")
		if err != nil {
			return nil, err
		}
		// None is a singleton
		return i.actx.CachedInstance(cls, 0), nil
	case bool:
		clsName = "builtins.bool"
	case int:
		c = int64(t)
		clsName = "builtins.int"
	case int64:
		clsName = "builtins.int"
	case float64:
		clsName = "builtins.float"
	case string:
		clsName = "builtins.str"
	default:
		return nil, errors.Errorf("interp: unsupported constant %T", c)
	}
	cls, err := i.actx.LoadClass(clsName)
	if err != nil {
		return nil, err
	}
	return abstract.NewConcreteInstance(i.actx, cls, c), nil
}

// resolveName looks a name up through the local scope, the enclosing module
// and builtins. Unresolved names degrade to unsolvable; the core reports no
// name errors.
func (i *Interpreter) resolveName(fr *frame, name string) *typegraph.Variable {
	if fr.scope != nil {
		if v, ok := fr.scope[name]; ok {
			return v
		}
	}
	if fr.module != nil {
		if v := fr.module.Member(name); v != nil {
			return v
		}
	}
	if v := i.builtinVar(name); v != nil {
		return v
	}
	return i.actx.UnsolvableVar(name, fr.node)
}

// builtinVar resolves a bare name against builtins, caching the variable so
// every use site shares bindings.
func (i *Interpreter) builtinVar(name string) *typegraph.Variable {
	if v, ok := i.builtins[name]; ok {
		return v
	}
	var val abstract.Value
	if cls, err := i.actx.LoadClass("builtins." + name); err == nil {
		val = cls
	} else if fn, err := i.actx.LoadFunction("builtins." + name); err == nil {
		val = fn
	} else {
		return nil
	}
	v := i.actx.SingleVar(name, val, i.actx.Root)
	i.builtins[name] = v
	return v
}

func (i *Interpreter) execStoreName(fr *frame, op *Op) error {
	val, err := fr.pop()
	if err != nil {
		return err
	}
	if fr.scope != nil {
		target, ok := fr.scope[op.Name]
		if !ok {
			target = i.actx.Program.NewVariable(op.Name)
			fr.scope[op.Name] = target
		}
		target.PasteVariable(val, fr.node, nil)
		return nil
	}
	target := fr.module.Member(op.Name)
	if target == nil {
		target = i.actx.Program.NewVariable(fr.name + "." + op.Name)
		fr.module.SetMember(op.Name, target)
	}
	target.PasteVariable(val, fr.node, nil)
	return nil
}

func (i *Interpreter) execLoadAttr(ctx pyctx.CallContext, fr *frame, op *Op) error {
	obj, err := fr.pop()
	if err != nil {
		return err
	}
	out := i.actx.Program.NewVariable(op.Name)
	for _, b := range obj.Bindings() {
		av, err := abstract.Attr(ctx, b, op.Name, fr.node)
		if err != nil || av == nil {
			// class resolution failures and absent attributes both degrade
			out.AddBinding(i.actx.Unsolvable(), []*typegraph.Binding{b}, fr.node)
			continue
		}
		out.PasteVariable(av, fr.node, []*typegraph.Binding{b})
	}
	if len(out.Bindings()) == 0 {
		out = i.actx.UnsolvableVar(op.Name, fr.node)
	}
	fr.push(out)
	return nil
}

// execStoreAttr pops the object, then the assigned value beneath it, and
// records the assignment on every interpretation that can hold attributes.
func (i *Interpreter) execStoreAttr(fr *frame, op *Op) error {
	obj, err := fr.pop()
	if err != nil {
		return err
	}
	val, err := fr.pop()
	if err != nil {
		return err
	}
	for _, b := range obj.Bindings() {
		v, ok := b.Data().(abstract.Value)
		if !ok {
			continue
		}
		if inst, ok := abstract.AsInstance(v); ok {
			inst.SetAttr(op.Name, val, fr.node)
			continue
		}
		if mod, ok := v.(*abstract.Module); ok {
			target := mod.Member(op.Name)
			if target == nil {
				target = i.actx.Program.NewVariable(mod.Name() + "." + op.Name)
				mod.SetMember(op.Name, target)
			}
			target.PasteVariable(val, fr.node, nil)
		}
	}
	return nil
}

func (i *Interpreter) execBuildSeq(fr *frame, op *Op, clsName string) error {
	elts, err := fr.popN(op.Count)
	if err != nil {
		return err
	}
	if fr.nodes != nil {
		// module frames reuse the literal built on the first pass and
		// only re-seed its element parameter
		if v, ok := i.literals[op]; ok {
			if ci, ok := v.Data()[0].(*abstract.ConcreteInstance); ok {
				tvar := ci.TypeParamVar("T")
				for _, e := range elts {
					tvar.PasteVariable(e, fr.node, nil)
				}
			}
			fr.push(v)
			return nil
		}
	}
	cls, err := i.actx.LoadClass(clsName)
	if err != nil {
		return err
	}
	ci := abstract.NewConcreteInstance(i.actx, cls, elts)
	tvar := ci.TypeParamVar("T")
	for _, e := range elts {
		tvar.PasteVariable(e, fr.node, nil)
	}
	v := i.actx.SingleVar(ci.Name(), ci, fr.node)
	if fr.nodes != nil {
		i.literals[op] = v
	}
	fr.push(v)
	return nil
}

func (i *Interpreter) execBuildMap(fr *frame, op *Op) error {
	flat, err := fr.popN(2 * op.Count)
	if err != nil {
		return err
	}
	v, ok := i.literals[op]
	if !ok || fr.nodes == nil {
		cls, err := i.actx.LoadClass("builtins.dict")
		if err != nil {
			return err
		}
		ci := abstract.NewConcreteInstance(i.actx, cls, abstract.NewConstDict())
		v = i.actx.SingleVar(ci.Name(), ci, fr.node)
		if fr.nodes != nil {
			i.literals[op] = v
		}
	}
	ci := v.Data()[0].(*abstract.ConcreteInstance)
	d := ci.Pyval().(*abstract.ConstDict)
	kvar := ci.TypeParamVar("K")
	vvar := ci.TypeParamVar("V")
	for j := 0; j < op.Count; j++ {
		key, val := flat[2*j], flat[2*j+1]
		kvar.PasteVariable(key, fr.node, nil)
		vvar.PasteVariable(val, fr.node, nil)
		if k, ok := constKey(key); ok {
			d.Entries.Set(k, val)
		} else {
			d.Ambiguous = true
		}
	}
	fr.push(v)
	return nil
}

// constKey extracts a hashable constant from a single-valued key.
func constKey(v *typegraph.Variable) (interface{}, bool) {
	data := v.Data()
	if len(data) != 1 {
		return nil, false
	}
	ci, ok := data[0].(*abstract.ConcreteInstance)
	if !ok {
		return nil, false
	}
	switch k := ci.Pyval().(type) {
	case string, int64, bool, float64:
		return k, true
	}
	return nil, false
}

func (i *Interpreter) execBinary(ctx pyctx.CallContext, fr *frame, op *Op) error {
	right, err := fr.pop()
	if err != nil {
		return err
	}
	left, err := fr.pop()
	if err != nil {
		return err
	}
	method, ok := binaryMethod[op.Name]
	if !ok {
		return errors.Errorf("interp: unknown operator %q", op.Name)
	}
	out := i.actx.Program.NewVariable(method)
	node := fr.node
	for _, b := range left.Bindings() {
		av, err := abstract.Attr(ctx, b, method, node)
		if err != nil || av == nil {
			out.AddBinding(i.actx.Unsolvable(), []*typegraph.Binding{b}, node)
			continue
		}
		args := &abstract.Args{Positional: []*typegraph.Variable{right}}
		for _, mb := range av.Bindings() {
			res, err := i.m.Call(ctx, node, mb, args)
			if err != nil {
				return err
			}
			node = res.Node
			if res.Return != nil {
				out.PasteVariable(res.Return, node, nil)
			}
		}
	}
	fr.node = node
	if len(out.Bindings()) == 0 {
		out = i.actx.UnsolvableVar(method, node)
	}
	fr.push(out)
	return nil
}

func (i *Interpreter) execCall(ctx pyctx.CallContext, fr *frame, op *Op) error {
	args := &abstract.Args{}
	var err error
	if op.StarStar {
		if args.Starstarargs, err = fr.pop(); err != nil {
			return err
		}
	}
	if op.Star {
		if args.Starargs, err = fr.pop(); err != nil {
			return err
		}
	}
	if n := len(op.Keywords); n > 0 {
		vals, err := fr.popN(n)
		if err != nil {
			return err
		}
		args.Keywords = make([]abstract.KeywordArg, n)
		for j, name := range op.Keywords {
			args.Keywords[j] = abstract.KeywordArg{Name: name, Value: vals[j]}
		}
	}
	if args.Positional, err = fr.popN(op.Count); err != nil {
		return err
	}
	callee, err := fr.pop()
	if err != nil {
		return err
	}

	out := i.actx.Program.NewVariable(callee.Name() + "()")
	node := fr.node
	for _, b := range callee.Bindings() {
		res, err := i.m.Call(ctx, node, b, args)
		if err != nil {
			return err
		}
		node = res.Node
		if res.Return != nil {
			out.PasteVariable(res.Return, node, nil)
		}
	}
	fr.node = node
	if len(out.Bindings()) == 0 {
		out = i.actx.UnsolvableVar(callee.Name()+"()", node)
	}
	fr.push(out)
	return nil
}

func (i *Interpreter) execMakeFunction(ctx pyctx.CallContext, fr *frame, op *Op) error {
	def := fr.src.Function(op.Name)
	if def == nil {
		return errors.Errorf("interp: no function definition %q", op.Name)
	}
	fn, err := i.function(ctx, fr, def, fr.name+"."+def.Name)
	if err != nil {
		return err
	}
	v, ok := i.literals[op]
	if !ok || fr.nodes == nil {
		v = i.actx.SingleVar(def.Name, fn, fr.node)
		if fr.nodes != nil {
			i.literals[op] = v
		}
	}
	fr.push(v)
	return nil
}

func (i *Interpreter) execMakeClass(ctx pyctx.CallContext, fr *frame, op *Op) error {
	def := fr.src.Class(op.Name)
	if def == nil {
		return errors.Errorf("interp: no class definition %q", op.Name)
	}
	cls, err := i.class(ctx, fr, def)
	if err != nil {
		return err
	}
	v, ok := i.literals[op]
	if !ok || fr.nodes == nil {
		v = i.actx.SingleVar(def.Name, cls, fr.node)
		if fr.nodes != nil {
			i.literals[op] = v
		}
	}
	fr.push(v)
	return nil
}

// execBranch forks control flow: one arm falls through on a fresh node
// while a pending arm targets the label. Condition values carry no
// decidable truth, so both arms stay live.
func (i *Interpreter) execBranch(fr *frame, op *Op) error {
	if _, err := fr.pop(); err != nil {
		return err
	}
	fr.pending[op.Name] = append(fr.pending[op.Name], fr.node)
	fr.node = fr.fork(op, fr.node, "branch")
	return nil
}

func (i *Interpreter) execJump(fr *frame, op *Op) error {
	fr.pending[op.Name] = append(fr.pending[op.Name], fr.node)
	fr.node = nil
	return nil
}

// execLabel joins every arm that targeted the label with the fall-through
// path. Bindings added on any arm become visible from the join on.
func (i *Interpreter) execLabel(fr *frame, op *Op) error {
	arms := fr.pending[op.Name]
	delete(fr.pending, op.Name)
	if fr.node != nil {
		arms = append(arms, fr.node)
	}
	if len(arms) == 0 {
		fr.node = nil
		return nil
	}
	join := fr.fork(op, arms[0], op.Name)
	for _, a := range arms[1:] {
		a.ConnectTo(join)
	}
	fr.node = join
	return nil
}

func (i *Interpreter) execReturn(fr *frame, op *Op) error {
	val, err := fr.pop()
	if err != nil {
		return err
	}
	fr.ret.PasteVariable(val, fr.node, nil)
	fr.exits = append(fr.exits, fr.node)
	fr.node = nil
	return nil
}
