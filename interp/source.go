package interp

import (
	"github.com/pythiaco/pythia/golib/errors"
)

// Source is a program fixture: one module as op streams plus the function
// and class definitions its make ops refer to. The YAML tags match the
// fixture files the CLI loads.
type Source struct {
	Name      string      `yaml:"module"`
	Functions []*FuncDef  `yaml:"functions,omitempty"`
	Classes   []*ClassDef `yaml:"classes,omitempty"`
	Body      []Op        `yaml:"body"`
}

// FuncDef declares one function: its parameter shapes and the ops of its
// body. Annotations are class names; empty means unannotated.
type FuncDef struct {
	Name    string     `yaml:"name"`
	Params  []ParamDef `yaml:"params,omitempty"`
	Vararg  string     `yaml:"vararg,omitempty"`
	Kwarg   string     `yaml:"kwarg,omitempty"`
	Returns string     `yaml:"returns,omitempty"`
	Body    []Op       `yaml:"body"`
}

// ParamDef declares one parameter.
type ParamDef struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
}

// ClassDef declares one class body: base names resolved in the defining
// scope and the methods defined in the body.
type ClassDef struct {
	Name    string     `yaml:"name"`
	Bases   []string   `yaml:"bases,omitempty"`
	Methods []*FuncDef `yaml:"methods,omitempty"`
}

// Function returns the top level function definition with the given name,
// or nil.
func (s *Source) Function(name string) *FuncDef {
	for _, f := range s.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Class returns the class definition with the given name, or nil.
func (s *Source) Class(name string) *ClassDef {
	for _, c := range s.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Validate checks the fixture for mistakes execution cannot paper over:
// opcodes the interpreter does not know, make ops referring to definitions
// that do not exist, branches to labels never declared in the same stream,
// and definition names the make ops could not tell apart. It returns nil
// for a well formed fixture; otherwise every problem found is reported,
// not just the first.
func (s *Source) Validate() error {
	var errs errors.Errors
	defined := make(map[string]bool, len(s.Functions)+len(s.Classes))
	for _, f := range s.Functions {
		if defined[f.Name] {
			errs = errors.Append(errs, errors.Errorf("duplicate definition of %q", f.Name))
		}
		defined[f.Name] = true
		errs = errors.Append(errs, s.validateOps("function "+f.Name, f.Body))
	}
	for _, c := range s.Classes {
		if defined[c.Name] {
			errs = errors.Append(errs, errors.Errorf("duplicate definition of %q", c.Name))
		}
		defined[c.Name] = true
		for _, m := range c.Methods {
			errs = errors.Append(errs, s.validateOps(c.Name+"."+m.Name, m.Body))
		}
	}
	errs = errors.Append(errs, s.validateOps("module body", s.Body))
	return errs
}

// validateOps lints one op stream. Branch targets resolve within the
// stream they appear in, so the labels are collected up front.
func (s *Source) validateOps(where string, ops []Op) error {
	labels := make(map[string]bool)
	for _, op := range ops {
		if op.Code == OpLabel {
			labels[op.Name] = true
		}
	}

	var errs errors.Errors
	for i, op := range ops {
		switch op.Code {
		case OpLoadConst, OpReturn:
		case OpLoadName, OpStoreName, OpLoadAttr, OpStoreAttr, OpBinaryOp, OpLabel:
			if op.Name == "" {
				errs = errors.Append(errs, errors.Errorf("%s, op %d: %s needs a name", where, i, op.Code))
			}
		case OpBuildList, OpBuildTuple, OpBuildMap, OpCallFunction:
			if op.Count < 0 {
				errs = errors.Append(errs, errors.Errorf("%s, op %d: %s with count %d", where, i, op.Code, op.Count))
			}
		case OpMakeFunction:
			if s.Function(op.Name) == nil {
				errs = errors.Append(errs, errors.Errorf("%s, op %d: no function definition named %q", where, i, op.Name))
			}
		case OpMakeClass:
			if s.Class(op.Name) == nil {
				errs = errors.Append(errs, errors.Errorf("%s, op %d: no class definition named %q", where, i, op.Name))
			}
		case OpBranch, OpJump:
			if !labels[op.Name] {
				errs = errors.Append(errs, errors.Errorf("%s, op %d: %s to undeclared label %q", where, i, op.Code, op.Name))
			}
		default:
			errs = errors.Append(errs, errors.Errorf("%s, op %d: unknown opcode %q", where, i, op.Code))
		}
	}
	return errs
}
