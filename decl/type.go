package decl

import (
	"fmt"
	"strings"
)

// Type is a declared type expression from a stub. The concrete variants are
// Named, Param, Parameterized, Union, Callable, Tuple, Literal, Any and
// Nothing.
type Type interface {
	isType()
	String() string
}

// Named refers to a class by fully qualified dotted name.
type Named struct {
	Name string
}

func (Named) isType() {}

func (t Named) String() string {
	return strings.TrimPrefix(t.Name, "builtins.")
}

// Param refers to a type parameter by name, e.g. the T of a generic class or
// function.
type Param struct {
	Name string
}

func (Param) isType() {}

func (t Param) String() string { return t.Name }

// Parameterized applies type arguments to a generic base, e.g. list[int].
type Parameterized struct {
	Base   Type
	Params []Type
}

func (Parameterized) isType() {}

func (t Parameterized) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s[%s]", t.Base, strings.Join(parts, ", "))
}

// Union is a set of alternative types.
type Union struct {
	Options []Type
}

func (Union) isType() {}

func (t Union) String() string {
	parts := make([]string, len(t.Options))
	for i, o := range t.Options {
		parts[i] = o.String()
	}
	return fmt.Sprintf("Union[%s]", strings.Join(parts, ", "))
}

// Callable is a function type with positional argument types and a return
// type.
type Callable struct {
	Args   []Type
	Return Type
}

func (Callable) isType() {}

func (t Callable) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("Callable[[%s], %s]", strings.Join(parts, ", "), t.Return)
}

// Tuple is a fixed-length heterogeneous tuple type.
type Tuple struct {
	Elements []Type
}

func (Tuple) isType() {}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("tuple[%s]", strings.Join(parts, ", "))
}

// Literal is a literal value type, e.g. Literal["r"].
type Literal struct {
	Value interface{}
}

func (Literal) isType() {}

func (t Literal) String() string {
	if s, ok := t.Value.(string); ok {
		return fmt.Sprintf("Literal[%q]", s)
	}
	return fmt.Sprintf("Literal[%v]", t.Value)
}

// Any matches every type.
type Any struct{}

func (Any) isType() {}

func (Any) String() string { return "Any" }

// Nothing is the empty type. No value inhabits it.
type Nothing struct{}

func (Nothing) isType() {}

func (Nothing) String() string { return "Nothing" }
