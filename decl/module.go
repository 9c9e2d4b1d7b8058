package decl

// TypeParam declares a formal type parameter. Two parameters are
// interchangeable only if every field matches.
type TypeParam struct {
	Name          string
	Constraints   []Type
	Bound         Type
	Covariant     bool
	Contravariant bool
}

// Parameter declares one formal parameter of a signature. A non-nil Mutated
// is a post-call annotation: calling the function changes the parameter's
// value to the given type, which is how container element widening is
// declared, e.g. list.append declaring self becomes list[Union[T, T2]].
type Parameter struct {
	Name     string
	Type     Type
	Optional bool
	KwOnly   bool
	Mutated  Type
}

// Signature declares one callable shape. Params holds positional and
// keyword-only parameters in declared order; Vararg and Kwarg are the *args
// and **kwargs formals, typed by element.
type Signature struct {
	Params     []Parameter
	Vararg     *Parameter
	Kwarg      *Parameter
	Return     Type
	TypeParams []TypeParam
}

// FunctionKind distinguishes how a declared function binds when looked up on
// a class.
type FunctionKind int

const (
	// PlainFunction is a module level function
	PlainFunction FunctionKind = iota
	// Method binds its first parameter to the instance
	Method
	// StaticMethod does not bind
	StaticMethod
	// ClassMethod binds its first parameter to the class
	ClassMethod
)

// Function declares a possibly overloaded function. Signatures keeps the
// declared overload order, which call matching relies on.
type Function struct {
	Name       string
	Signatures []*Signature
	Kind       FunctionKind
}

// Class declares a class: bases, introduced type parameters and methods.
type Class struct {
	Name            string
	Bases           []Type
	TypeParams      []TypeParam
	Methods         []*Function
	Abstract        bool
	Protocol        bool
	HasDynamicAttrs bool
}

// Method returns the declared method with the given short name, or nil.
func (c *Class) Method(name string) *Function {
	want := c.Name + "." + name
	for _, m := range c.Methods {
		if m.Name == want || m.Name == name {
			return m
		}
	}
	return nil
}

// Constant declares a module level constant and its type.
type Constant struct {
	Name string
	Type Type
}

// Module is one declared module: the unit of loading.
type Module struct {
	Name      string
	Classes   []*Class
	Functions []*Function
	Constants []*Constant
}

// Class returns the declared class with the given short or fully qualified
// name, or nil.
func (m *Module) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name || c.Name == m.Name+"."+name {
			return c
		}
	}
	return nil
}

// Function returns the declared function with the given short or fully
// qualified name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name || f.Name == m.Name+"."+name {
			return f
		}
	}
	return nil
}
