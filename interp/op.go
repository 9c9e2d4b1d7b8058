package interp

// Opcode identifies one instruction of an op stream. The set is small: just
// enough to express constants, names, attributes, container literals, binary
// operators, calls, definitions and structured control flow.
type Opcode string

const (
	// OpLoadConst pushes the literal in Const. A missing Const is None.
	OpLoadConst Opcode = "load_const"

	// OpLoadName pushes the variable bound to Name, resolved through the
	// local scope, the enclosing module and builtins in that order.
	OpLoadName Opcode = "load_name"

	// OpStoreName pops a value and binds it to Name at the current node.
	OpStoreName Opcode = "store_name"

	// OpLoadAttr pops an object and pushes its attribute Name.
	OpLoadAttr Opcode = "load_attr"

	// OpStoreAttr pops an object, then the value beneath it, and records the
	// attribute assignment on every instance interpretation of the object.
	OpStoreAttr Opcode = "store_attr"

	// OpBuildList pops Count elements and pushes a list literal.
	OpBuildList Opcode = "build_list"

	// OpBuildTuple pops Count elements and pushes a tuple literal.
	OpBuildTuple Opcode = "build_tuple"

	// OpBuildMap pops Count key/value pairs, key pushed before value, and
	// pushes a dict literal. Non-constant keys make the literal ambiguous.
	OpBuildMap Opcode = "build_map"

	// OpBinaryOp pops the right then the left operand and pushes the result
	// of the operator Name, dispatched through the left operand's dunder.
	// Subscript is spelled [].
	OpBinaryOp Opcode = "binary_op"

	// OpCallFunction calls a callee pushed before its arguments: Count
	// positionals, then one value per Keywords entry, then the *args tuple
	// if Star, then the **kwargs dict if StarStar. Pushes the return.
	OpCallFunction Opcode = "call_function"

	// OpMakeFunction pushes a function value for the definition Name.
	OpMakeFunction Opcode = "make_function"

	// OpMakeClass pushes a class value for the definition Name, with its
	// bases resolved in the current scope and its methods as members.
	OpMakeClass Opcode = "make_class"

	// OpBranch pops a condition and forks control flow: execution falls
	// through on a fresh node while a pending arm targets the label Name.
	OpBranch Opcode = "branch"

	// OpJump unconditionally targets the label Name; the fall-through path
	// dies until the next label.
	OpJump Opcode = "jump"

	// OpLabel joins every pending arm targeting Name with the fall-through
	// path at a fresh node.
	OpLabel Opcode = "label"

	// OpReturn pops the return value and ends the current path.
	OpReturn Opcode = "return"
)

// Op is one instruction. Which operand fields are meaningful depends on the
// opcode.
type Op struct {
	Code Opcode `yaml:"op"`

	// Line and Col locate the source construct the op was compiled from.
	Line int `yaml:"line,omitempty"`
	Col  int `yaml:"col,omitempty"`

	// Name is the identifier operand: the name loaded or stored, the
	// attribute, the operator of a binary op, the label of a jump, or the
	// definition a make op refers to.
	Name string `yaml:"name,omitempty"`

	// Const is the literal operand of load_const.
	Const interface{} `yaml:"const,omitempty"`

	// Count is the element count of the build ops and the positional
	// argument count of call_function.
	Count int `yaml:"count,omitempty"`

	// Keywords names the keyword arguments of a call_function, in the order
	// their values were pushed.
	Keywords []string `yaml:"keywords,omitempty"`

	// Star and StarStar mark a call_function passing *args and **kwargs.
	Star     bool `yaml:"star,omitempty"`
	StarStar bool `yaml:"starstar,omitempty"`
}
