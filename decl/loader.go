package decl

import (
	"github.com/pythiaco/pythia/golib/errors"
)

// ErrNotFound is returned by loaders for names with no declaration.
var ErrNotFound = errors.New("declaration not found")

// Loader resolves fully qualified dotted names to declarations. The stub file
// parser behind it is external; the analysis only sees this interface.
type Loader interface {
	LookupModule(name string) (*Module, error)
	LookupClass(name string) (*Class, error)
	LookupFunction(name string) (*Function, error)
}

// TableLoader is an in-memory Loader over a fixed set of modules.
type TableLoader struct {
	modules   map[string]*Module
	classes   map[string]*Class
	functions map[string]*Function
}

// NewTableLoader creates a loader over the given modules.
func NewTableLoader(modules ...*Module) *TableLoader {
	l := &TableLoader{
		modules:   make(map[string]*Module),
		classes:   make(map[string]*Class),
		functions: make(map[string]*Function),
	}
	for _, m := range modules {
		l.AddModule(m)
	}
	return l
}

// AddModule indexes a module and its members by fully qualified name. Later
// additions shadow earlier ones.
func (l *TableLoader) AddModule(m *Module) {
	l.modules[m.Name] = m
	for _, c := range m.Classes {
		l.classes[c.Name] = c
		for _, f := range c.Methods {
			l.functions[f.Name] = f
		}
	}
	for _, f := range m.Functions {
		l.functions[f.Name] = f
	}
}

// LookupModule implements Loader.
func (l *TableLoader) LookupModule(name string) (*Module, error) {
	if m, ok := l.modules[name]; ok {
		return m, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "module %s", name)
}

// LookupClass implements Loader.
func (l *TableLoader) LookupClass(name string) (*Class, error) {
	if c, ok := l.classes[name]; ok {
		return c, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "class %s", name)
}

// LookupFunction implements Loader.
func (l *TableLoader) LookupFunction(name string) (*Function, error) {
	if f, ok := l.functions[name]; ok {
		return f, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "function %s", name)
}
