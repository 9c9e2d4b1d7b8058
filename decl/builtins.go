package decl

func named(n string) Named { return Named{Name: n} }

func generic(base string, args ...Type) Parameterized {
	return Parameterized{Base: named(base), Params: args}
}

func union(opts ...Type) Union { return Union{Options: opts} }

func self(t Type) Parameter { return Parameter{Name: "self", Type: t} }

func arg(name string, t Type) Parameter { return Parameter{Name: name, Type: t} }

func method(name string, sigs ...*Signature) *Function {
	return &Function{Name: name, Signatures: sigs, Kind: Method}
}

// Builtins returns the builtins-lite module: the smallest set of builtin
// declarations the analysis needs to bootstrap. A real run swaps in a full
// stub table through the same Loader interface.
func Builtins() *Module {
	objectT := named("builtins.object")
	noneT := named("builtins.NoneType")
	intT := named("builtins.int")
	boolT := named("builtins.bool")
	floatT := named("builtins.float")
	strT := named("builtins.str")
	typeT := named("builtins.type")

	T := Param{Name: "T"}
	T2 := Param{Name: "T2"}
	K := Param{Name: "K"}
	V := Param{Name: "V"}
	K2 := Param{Name: "K2"}
	V2 := Param{Name: "V2"}

	object := &Class{
		Name: "builtins.object",
		Methods: []*Function{
			method("builtins.object.__init__", &Signature{
				Params: []Parameter{self(objectT)},
				Return: noneT,
			}),
		},
	}

	classes := []*Class{
		object,
		{Name: "builtins.type", Bases: []Type{objectT}},
		{
			Name:  "builtins.int",
			Bases: []Type{objectT},
			Methods: []*Function{
				method("builtins.int.__add__", &Signature{
					Params: []Parameter{self(intT), arg("other", intT)},
					Return: intT,
				}),
			},
		},
		{Name: "builtins.bool", Bases: []Type{intT}},
		{
			Name:  "builtins.float",
			Bases: []Type{objectT},
			Methods: []*Function{
				method("builtins.float.__add__", &Signature{
					Params: []Parameter{self(floatT), arg("other", union(intT, floatT))},
					Return: floatT,
				}),
			},
		},
		{Name: "builtins.complex", Bases: []Type{objectT}},
		{
			Name:  "builtins.str",
			Bases: []Type{objectT},
			Methods: []*Function{
				method("builtins.str.__add__", &Signature{
					Params: []Parameter{self(strT), arg("other", strT)},
					Return: strT,
				}),
				method("builtins.str.upper", &Signature{
					Params: []Parameter{self(strT)},
					Return: strT,
				}),
				method("builtins.str.join", &Signature{
					Params: []Parameter{self(strT), arg("iterable", generic("builtins.list", strT))},
					Return: strT,
				}),
			},
		},
		{Name: "builtins.bytes", Bases: []Type{objectT}},
		{
			Name:       "builtins.list",
			Bases:      []Type{objectT},
			TypeParams: []TypeParam{{Name: "T"}},
			Methods: []*Function{
				method("builtins.list.append", &Signature{
					Params: []Parameter{
						{Name: "self", Type: generic("builtins.list", T), Mutated: generic("builtins.list", union(T, T2))},
						arg("object", T2),
					},
					Return:     noneT,
					TypeParams: []TypeParam{{Name: "T2"}},
				}),
				method("builtins.list.extend", &Signature{
					Params: []Parameter{
						{Name: "self", Type: generic("builtins.list", T), Mutated: generic("builtins.list", union(T, T2))},
						arg("iterable", generic("builtins.list", T2)),
					},
					Return:     noneT,
					TypeParams: []TypeParam{{Name: "T2"}},
				}),
				method("builtins.list.__getitem__", &Signature{
					Params: []Parameter{self(generic("builtins.list", T)), arg("index", intT)},
					Return: T,
				}),
			},
		},
		{
			Name:       "builtins.dict",
			Bases:      []Type{objectT},
			TypeParams: []TypeParam{{Name: "K"}, {Name: "V"}},
			Methods: []*Function{
				method("builtins.dict.__getitem__", &Signature{
					Params: []Parameter{self(generic("builtins.dict", K, V)), arg("k", K)},
					Return: V,
				}),
				method("builtins.dict.__setitem__", &Signature{
					Params: []Parameter{
						{Name: "self", Type: generic("builtins.dict", K, V), Mutated: generic("builtins.dict", union(K, K2), union(V, V2))},
						arg("k", K2),
						arg("v", V2),
					},
					Return:     noneT,
					TypeParams: []TypeParam{{Name: "K2"}, {Name: "V2"}},
				}),
				method("builtins.dict.get", &Signature{
					Params: []Parameter{
						self(generic("builtins.dict", K, V)),
						arg("k", K),
						{Name: "default", Type: V, Optional: true},
					},
					Return: V,
				}),
			},
		},
		{
			Name:       "builtins.tuple",
			Bases:      []Type{objectT},
			TypeParams: []TypeParam{{Name: "T"}},
			Methods: []*Function{
				method("builtins.tuple.__getitem__", &Signature{
					Params: []Parameter{self(generic("builtins.tuple", T)), arg("index", intT)},
					Return: T,
				}),
			},
		},
		{
			Name:       "builtins.set",
			Bases:      []Type{objectT},
			TypeParams: []TypeParam{{Name: "T"}},
			Methods: []*Function{
				method("builtins.set.add", &Signature{
					Params: []Parameter{
						{Name: "self", Type: generic("builtins.set", T), Mutated: generic("builtins.set", union(T, T2))},
						arg("element", T2),
					},
					Return:     noneT,
					TypeParams: []TypeParam{{Name: "T2"}},
				}),
			},
		},
		{
			Name:       "builtins.frozenset",
			Bases:      []Type{objectT},
			TypeParams: []TypeParam{{Name: "T"}},
		},
		{Name: "builtins.NoneType", Bases: []Type{objectT}},
		{Name: "builtins.slice", Bases: []Type{objectT}},
		{Name: "builtins.super", Bases: []Type{objectT}},
		{
			Name:       "builtins.generator",
			Bases:      []Type{objectT},
			TypeParams: []TypeParam{{Name: "T"}},
			Methods: []*Function{
				method("builtins.generator.__next__", &Signature{
					Params: []Parameter{self(generic("builtins.generator", T))},
					Return: T,
				}),
			},
		},
	}

	functions := []*Function{
		{
			Name: "builtins.len",
			Signatures: []*Signature{{
				Params: []Parameter{arg("object", objectT)},
				Return: intT,
			}},
		},
		{
			Name: "builtins.isinstance",
			Signatures: []*Signature{{
				Params: []Parameter{arg("object", objectT), arg("classinfo", typeT)},
				Return: boolT,
			}},
		},
	}

	return &Module{
		Name:      "builtins",
		Classes:   classes,
		Functions: functions,
	}
}

// Typing returns the typing module: the Generic marker generic classes
// inherit from to declare their parameter list, and the TypeVar factory.
func Typing() *Module {
	return &Module{
		Name: "typing",
		Classes: []*Class{
			{Name: "typing.Generic", Bases: []Type{named("builtins.object")}},
			{Name: "typing.TypeVar", Bases: []Type{named("builtins.object")}},
		},
	}
}

// StdLoader returns a TableLoader preloaded with Builtins and Typing.
func StdLoader() *TableLoader {
	return NewTableLoader(Builtins(), Typing())
}
