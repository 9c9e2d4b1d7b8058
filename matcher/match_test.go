package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/decl"
	"github.com/pythiaco/pythia/diag"
	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

func listOf(elem decl.Type) decl.Type {
	return decl.Parameterized{Base: decl.Named{Name: "builtins.list"}, Params: []decl.Type{elem}}
}

// seededList builds a list instance tracking the given element values.
func seededList(t *testing.T, actx *abstract.Context, elems ...abstract.Value) *abstract.Instance {
	t.Helper()
	inst := instOf(t, actx, "builtins.list")
	pv := inst.TypeParamVar("T")
	for _, e := range elems {
		pv.AddBinding(e, nil, actx.Root)
	}
	return inst
}

func optionClasses(u *abstract.Union) map[string]bool {
	names := make(map[string]bool)
	for _, o := range u.Options() {
		names[o.Class().Name()] = true
	}
	return names
}

func TestMatch_OverloadFirstMatch(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f",
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.list"))}, Return: named("builtins.int")},
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.object"))}, Return: named("builtins.str")},
	)
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", seededList(t, actx))},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)

	// the second overload also accepts a list, but declaration order decides
	assert.Equal(t, "builtins.int", singleValue(t, out.Return).Class().Name())
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_AmbiguousArgumentUnitesOverloads(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f",
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.list"))}, Return: named("builtins.int")},
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.object"))}, Return: named("builtins.str")},
	)
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", actx.Unsolvable())},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)

	// every overload that could apply contributes, in a single binding
	require.Len(t, out.Return.Bindings(), 1)
	u, ok := singleValue(t, out.Return).(*abstract.Union)
	require.True(t, ok)
	names := optionClasses(u)
	assert.True(t, names["builtins.int"])
	assert.True(t, names["builtins.str"])
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_TypeMismatchOutranksArity(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	gB := declFn(actx, "test.g",
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.str"))}},
		&decl.Signature{Params: []decl.Parameter{{Name: "x"}, {Name: "y"}}},
	)
	out, err := m.Call(call, actx.Root, gB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", constOf(t, actx, "builtins.int", int64(3)))},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)

	require.Equal(t, 1, actx.Diag.Len())
	ev := actx.Diag.Events()[0]
	assert.Equal(t, diag.WrongArgTypes, ev.Kind)
	assert.Equal(t, "x", ev.BadParam)
	assert.Equal(t, "test.g", ev.Callee)
}

func TestMatch_PrefersFewerVariadicsOnTie(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	hB := declFn(actx, "test.h",
		&decl.Signature{
			Params: []decl.Parameter{param("x", named("builtins.str"))},
			Vararg: &decl.Parameter{Name: "args"},
		},
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.str"))}},
	)
	out, err := m.Call(call, actx.Root, hB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", constOf(t, actx, "builtins.int", int64(3)))},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)

	// both overloads fail the same way; the one without *args is surfaced
	require.Equal(t, 1, actx.Diag.Len())
	ev := actx.Diag.Events()[0]
	assert.Equal(t, diag.WrongArgTypes, ev.Kind)
	assert.NotContains(t, ev.Sig, "*")
}

func TestMatch_StarArgsTupleLiteral(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{
			param("a", named("builtins.int")),
			param("b", named("builtins.int")),
			param("c", named("builtins.int")),
		},
		Return: named("builtins.str"),
	})
	tupleCls := loadClass(t, actx, "builtins.tuple")
	elem := func() *typegraph.Variable {
		return varOf(actx, "e", constOf(t, actx, "builtins.int", int64(1)))
	}

	lit := abstract.NewConcreteInstance(actx, tupleCls, []*typegraph.Variable{elem(), elem(), elem()})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Starargs: varOf(actx, "sa", lit)})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, "builtins.str", singleValue(t, out.Return).Class().Name())
	assert.Zero(t, actx.Diag.Len())

	// a two element literal leaves c unfilled, and that is decidable
	short := abstract.NewConcreteInstance(actx, tupleCls, []*typegraph.Variable{elem(), elem()})
	out, err = m.Call(call, actx.Root, fB, &abstract.Args{Starargs: varOf(actx, "sa", short)})
	require.NoError(t, err)
	assert.False(t, out.Matched)

	require.Equal(t, 1, actx.Diag.Len())
	ev := actx.Diag.Events()[0]
	assert.Equal(t, diag.MissingParameter, ev.Kind)
	assert.Equal(t, "c", ev.BadParam)
}

func TestMatch_StarArgsUnknownLength(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("a", named("builtins.int")), param("b", named("builtins.int"))},
		Return: named("builtins.str"),
	})
	lst := seededList(t, actx, constOf(t, actx, "builtins.int", int64(1)))

	// the list's length is unknown, so its element type covers both formals
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Starargs: varOf(actx, "sa", lst)})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_GenericUnitesRelatedArguments(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params:     []decl.Parameter{param("x", decl.Param{Name: "T"}), param("y", decl.Param{Name: "T"})},
		Return:     decl.Param{Name: "T"},
		TypeParams: []decl.TypeParam{{Name: "T"}},
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{
		varOf(actx, "x", constOf(t, actx, "builtins.int", int64(3))),
		varOf(actx, "y", constOf(t, actx, "builtins.bool", true)),
	}})
	require.NoError(t, err)
	assert.True(t, out.Matched)

	// bool and int stay related through inheritance, so T unites them
	u, ok := singleValue(t, out.Return).(*abstract.Union)
	require.True(t, ok)
	names := optionClasses(u)
	assert.True(t, names["builtins.int"])
	assert.True(t, names["builtins.bool"])
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_GenericRejectsConflict(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params:     []decl.Parameter{param("x", decl.Param{Name: "T"}), param("y", decl.Param{Name: "T"})},
		Return:     decl.Param{Name: "T"},
		TypeParams: []decl.TypeParam{{Name: "T"}},
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{
		varOf(actx, "x", constOf(t, actx, "builtins.int", int64(3))),
		varOf(actx, "y", constOf(t, actx, "builtins.str", "s")),
	}})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.True(t, abstract.IsAmbiguous(singleValue(t, out.Return)))

	require.Equal(t, 1, actx.Diag.Len())
	ev := actx.Diag.Events()[0]
	assert.Equal(t, diag.WrongArgTypes, ev.Kind)
	assert.Equal(t, "y", ev.BadParam)
}

func TestMatch_ViewsSplitPerBinding(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.ident", &decl.Signature{
		Params:     []decl.Parameter{param("x", decl.Param{Name: "T"})},
		Return:     decl.Param{Name: "T"},
		TypeParams: []decl.TypeParam{{Name: "T"}},
	})
	x := varOf(actx, "x", instOf(t, actx, "builtins.int"), instOf(t, actx, "builtins.str"))
	xb := x.Bindings()

	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{x}})
	require.NoError(t, err)
	assert.True(t, out.Matched)

	// one return binding per view, each tied to the argument binding it used
	bindings := out.Return.Bindings()
	require.Len(t, bindings, 2)
	for _, b := range bindings {
		val := b.Data().(abstract.Value)
		switch val.Class().Name() {
		case "builtins.int":
			assert.True(t, b.HasSource(xb[0]))
			assert.False(t, b.HasSource(xb[1]))
		case "builtins.str":
			assert.True(t, b.HasSource(xb[1]))
			assert.False(t, b.HasSource(xb[0]))
		default:
			t.Fatalf("unexpected return value %s", val.Name())
		}
	}
}

func TestMatch_LiteralOverloadBarsConstant(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.open",
		&decl.Signature{
			Params: []decl.Parameter{
				param("mode", decl.Literal{Value: "a"}),
				param("extra", named("builtins.int")),
			},
			Return: named("builtins.int"),
		},
		&decl.Signature{
			Params: []decl.Parameter{
				param("mode", named("builtins.str")),
				param("extra", named("builtins.object")),
			},
			Return: named("builtins.str"),
		},
	)

	// the ambiguous extra makes every overload a candidate, but "a" is
	// claimed by the literal overload and no longer matches the broad one
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{
		varOf(actx, "mode", constOf(t, actx, "builtins.str", "a")),
		varOf(actx, "extra", actx.Unsolvable()),
	}})
	require.NoError(t, err)
	assert.True(t, out.Matched)

	require.Len(t, out.Return.Bindings(), 1)
	assert.Equal(t, "builtins.int", singleValue(t, out.Return).Class().Name())
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_TypeParameterAsArgument(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("x", named("builtins.int"))},
	})
	tp := abstract.NewTypeParameter(actx, "T", "test", nil, nil, false, false)
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", tp)},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.TypeVarAsValue])
}

func TestMatch_MutationsLandOnOneNode(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	widened := func(tp string) decl.Type {
		return listOf(decl.Union{Options: []decl.Type{decl.Param{Name: tp}, decl.Named{Name: "builtins.int"}}})
	}
	fB := declFn(actx, "test.fill", &decl.Signature{
		Params: []decl.Parameter{
			{Name: "a", Type: listOf(decl.Param{Name: "T1"}), Mutated: widened("T1")},
			{Name: "b", Type: listOf(decl.Param{Name: "T2"}), Mutated: widened("T2")},
			{Name: "c", Type: listOf(decl.Param{Name: "T3"}), Mutated: widened("T3")},
		},
		Return:     named("builtins.NoneType"),
		TypeParams: []decl.TypeParam{{Name: "T1"}, {Name: "T2"}, {Name: "T3"}},
	})
	insts := []*abstract.Instance{
		seededList(t, actx, constOf(t, actx, "builtins.str", "a")),
		seededList(t, actx, constOf(t, actx, "builtins.str", "b")),
		seededList(t, actx, constOf(t, actx, "builtins.str", "c")),
	}
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{
		varOf(actx, "a", insts[0]),
		varOf(actx, "b", insts[1]),
		varOf(actx, "c", insts[2]),
	}})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, "builtins.NoneType", singleValue(t, out.Return).Class().Name())

	// all three widenings land on a single successor node
	require.Len(t, actx.Root.Outgoing(), 1)
	after := actx.Root.Outgoing()[0]
	assert.Same(t, after, out.Node)
	assert.Equal(t, "after test.fill", after.Name())
	for _, inst := range insts {
		assert.Len(t, inst.TypeParamVar("T").Bindings(), 2)
	}
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_ListAppendWidensElement(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	lst := seededList(t, actx, constOf(t, actx, "builtins.str", "hi"))
	appendFn, err := actx.LoadFunction("builtins.list.append")
	require.NoError(t, err)
	bf := abstract.NewBoundFunction(actx, varOf(actx, "lst", lst), appendFn)

	out, err := m.Call(call, actx.Root, calleeOf(actx, "lst.append", bf), &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "v", constOf(t, actx, "builtins.int", int64(5)))},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, "builtins.NoneType", singleValue(t, out.Return).Class().Name())
	assert.NotSame(t, actx.Root, out.Node)

	elems := lst.TypeParamVar("T")
	require.Len(t, elems.Bindings(), 2)
	widened, ok := elems.Bindings()[1].Data().(abstract.Value).(*abstract.Union)
	require.True(t, ok)
	names := optionClasses(widened)
	assert.True(t, names["builtins.str"])
	assert.True(t, names["builtins.int"])
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_StrictReportsEveryOverload(t *testing.T) {
	actx := abstract.NewContext(decl.StdLoader(), diag.NewLog())
	opts := DefaultOptions()
	opts.StrictParameterChecks = true
	m := New(actx, opts)
	var call pyctx.CallContext

	gB := declFn(actx, "test.g",
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.str"))}},
		&decl.Signature{Params: []decl.Parameter{param("x", named("builtins.int")), param("y", named("builtins.int"))}},
	)
	out, err := m.Call(call, actx.Root, gB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", constOf(t, actx, "builtins.float", 3.5))},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)

	assert.Equal(t, 2, actx.Diag.Len())
	counts := actx.Diag.CountByKind()
	assert.Equal(t, 1, counts[diag.WrongArgTypes])
	assert.Equal(t, 1, counts[diag.MissingParameter])
}

func TestMatch_ContainerMutationChecked(t *testing.T) {
	actx := abstract.NewContext(decl.StdLoader(), diag.NewLog())
	opts := DefaultOptions()
	opts.CheckContainerMutations = true
	m := New(actx, opts)
	var call pyctx.CallContext

	lst := seededList(t, actx, constOf(t, actx, "builtins.str", "hi"))
	appendFn, err := actx.LoadFunction("builtins.list.append")
	require.NoError(t, err)
	bf := abstract.NewBoundFunction(actx, varOf(actx, "lst", lst), appendFn)

	out, err := m.Call(call, actx.Root, calleeOf(actx, "lst.append", bf), &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "v", constOf(t, actx, "builtins.int", int64(5)))},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)

	require.Equal(t, 1, actx.Diag.Len())
	ev := actx.Diag.Events()[0]
	assert.Equal(t, diag.WrongArgTypes, ev.Kind)
	assert.Contains(t, ev.Detail, "widened with unrelated")
	// the widening is recorded regardless
	assert.Len(t, lst.TypeParamVar("T").Bindings(), 2)
}

func TestMatch_KeywordBinding(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("a", named("builtins.int")), param("b", named("builtins.str"))},
		Return: named("builtins.str"),
	})
	one := func() *typegraph.Variable { return varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1))) }
	s := func() *typegraph.Variable { return varOf(actx, "b", constOf(t, actx, "builtins.str", "x")) }

	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{one()},
		Keywords:   []abstract.KeywordArg{{Name: "b", Value: s()}},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	// a passed both positionally and by keyword
	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{one(), s()},
		Keywords:   []abstract.KeywordArg{{Name: "a", Value: one()}},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.DuplicateKeyword])

	// an unknown keyword with no **kwargs to absorb it
	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{one(), s()},
		Keywords:   []abstract.KeywordArg{{Name: "z", Value: one()}},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongKeywordArgs])
}

func TestMatch_VariadicFormalsAbsorb(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("a", named("builtins.int"))},
		Kwarg:  &decl.Parameter{Name: "kw", Type: named("builtins.str")},
		Return: named("builtins.str"),
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1)))},
		Keywords:   []abstract.KeywordArg{{Name: "z", Value: varOf(actx, "z", constOf(t, actx, "builtins.str", "x"))}},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	// a surviving symbolic **kwargs may still cover a missing parameter
	gB := declFn(actx, "test.g", &decl.Signature{
		Params: []decl.Parameter{param("a", named("builtins.int")), param("b", named("builtins.int"))},
		Return: named("builtins.str"),
	})
	out, err = m.Call(call, actx.Root, gB, &abstract.Args{
		Positional:   []*typegraph.Variable{varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1)))},
		Starstarargs: varOf(actx, "kw", instOf(t, actx, "builtins.dict")),
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_TooManyPositionals(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("a", named("builtins.int"))},
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{
		varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1))),
		varOf(actx, "b", constOf(t, actx, "builtins.int", int64(2))),
	}})
	require.NoError(t, err)
	assert.False(t, out.Matched)

	require.Equal(t, 1, actx.Diag.Len())
	assert.Equal(t, diag.WrongArgCount, actx.Diag.Events()[0].Kind)
}

func TestMatch_OptionalParameterSkipped(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{
			param("a", named("builtins.int")),
			{Name: "b", Type: named("builtins.str"), Optional: true},
		},
		Return: named("builtins.str"),
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1)))},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())
}

func TestMatch_KeywordOnlyParameter(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{
			param("a", named("builtins.int")),
			{Name: "flag", Type: named("builtins.str"), KwOnly: true},
		},
		Return: named("builtins.str"),
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1)))},
		Keywords:   []abstract.KeywordArg{{Name: "flag", Value: varOf(actx, "flag", constOf(t, actx, "builtins.str", "x"))}},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	// keyword-only parameters cannot be filled positionally
	out, err = m.Call(call, actx.Root, fB, &abstract.Args{Positional: []*typegraph.Variable{
		varOf(actx, "a", constOf(t, actx, "builtins.int", int64(1))),
		varOf(actx, "flag", constOf(t, actx, "builtins.str", "x")),
	}})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongArgCount])
}

func TestMatch_ParameterizedAnnotation(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("x", listOf(named("builtins.int")))},
		Return: named("builtins.str"),
	})
	ints := seededList(t, actx, constOf(t, actx, "builtins.int", int64(1)))
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", ints)},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	// the container class fits but its tracked elements do not
	strs := seededList(t, actx, constOf(t, actx, "builtins.str", "a"))
	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", strs)},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongArgTypes])
}

func TestMatch_UnionAnnotation(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("x", decl.Union{Options: []decl.Type{named("builtins.int"), named("builtins.str")}})},
		Return: named("builtins.str"),
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", constOf(t, actx, "builtins.str", "ok"))},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", constOf(t, actx, "builtins.float", 1.5))},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongArgTypes])
}

func TestMatch_UnionArgumentNeedsEveryOption(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("x", named("builtins.int"))},
		Return: named("builtins.str"),
	})
	fits := actx.Unite(call.Context(),
		constOf(t, actx, "builtins.int", int64(1)),
		constOf(t, actx, "builtins.bool", true),
	)
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", fits)},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	mixed := actx.Unite(call.Context(),
		constOf(t, actx, "builtins.int", int64(1)),
		constOf(t, actx, "builtins.str", "s"),
	)
	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", mixed)},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongArgTypes])
}

func TestMatch_CallableAnnotationMatchesReturn(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.apply", &decl.Signature{
		Params: []decl.Parameter{param("fn", decl.Callable{
			Args:   []decl.Type{named("builtins.int")},
			Return: named("builtins.str"),
		})},
		Return: named("builtins.str"),
	})
	render := actx.FunctionValue(&decl.Function{Name: "test.render", Signatures: []*decl.Signature{
		{Return: named("builtins.str")},
	}})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "fn", render)},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "fn", instOf(t, actx, "builtins.int"))},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongArgTypes])
}

func TestMatch_TupleAnnotation(t *testing.T) {
	actx, m, call := newTestMatcher(t)

	fB := declFn(actx, "test.f", &decl.Signature{
		Params: []decl.Parameter{param("x", decl.Tuple{Elements: []decl.Type{named("builtins.int"), named("builtins.str")}})},
		Return: named("builtins.str"),
	})
	out, err := m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", instOf(t, actx, "builtins.tuple"))},
	})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Zero(t, actx.Diag.Len())

	out, err = m.Call(call, actx.Root, fB, &abstract.Args{
		Positional: []*typegraph.Variable{varOf(actx, "x", seededList(t, actx))},
	})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, 1, actx.Diag.CountByKind()[diag.WrongArgTypes])
}
