package abstract

import (
	"fmt"

	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// Unsolvable is the single maximally imprecise value of a context. The
// analysis produces it when it gives up, and unlike Unknown it keeps no
// history of how it is used.
type Unsolvable struct {
	ctx *Context
}

// Name implements Value
func (v *Unsolvable) Name() string { return "unsolvable" }

// Kind implements Value
func (v *Unsolvable) Kind() Kind { return UnsolvableKind }

// Class implements Value
func (v *Unsolvable) Class() Value { return v }

// Formal implements Value
func (v *Unsolvable) Formal() bool { return false }

func (v *Unsolvable) context() *Context { return v.ctx }

func (v *Unsolvable) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltUnsolvable)
}

func (v *Unsolvable) equal(ctx pyctx.CallContext, other Value) bool {
	_, ok := other.(*Unsolvable)
	return ok
}

func (v *Unsolvable) String() string { return "unsolvable" }

// Empty is the uninhabited bottom value, produced for code paths that can
// produce no value at all, such as iterating an empty container.
type Empty struct {
	ctx *Context
}

// Name implements Value
func (v *Empty) Name() string { return "empty" }

// Kind implements Value
func (v *Empty) Kind() Kind { return EmptyKind }

// Class implements Value
func (v *Empty) Class() Value { return v }

// Formal implements Value
func (v *Empty) Formal() bool { return false }

func (v *Empty) context() *Context { return v.ctx }

func (v *Empty) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltEmpty)
}

func (v *Empty) equal(ctx pyctx.CallContext, other Value) bool {
	_, ok := other.(*Empty)
	return ok
}

func (v *Empty) String() string { return "empty" }

// Unknown is a value the analysis knows nothing about, except that it records
// every attribute access and call so that a structural type can be
// reconstructed later.
type Unknown struct {
	ctx   *Context
	id    int
	attrs map[string]*typegraph.Variable
	calls []RecordedCall
}

// RecordedCall is one observed call of an unknown value.
type RecordedCall struct {
	Args   *Args
	Return *typegraph.Variable
}

// Name implements Value
func (v *Unknown) Name() string { return fmt.Sprintf("~unknown%d", v.id) }

// Kind implements Value
func (v *Unknown) Kind() Kind { return UnknownKind }

// Class implements Value
func (v *Unknown) Class() Value { return v }

// Formal implements Value
func (v *Unknown) Formal() bool { return false }

func (v *Unknown) context() *Context { return v.ctx }

func (v *Unknown) key(ctx pyctx.CallContext) uint64 {
	return rehash(saltUnknown, uint64(v.id))
}

func (v *Unknown) equal(ctx pyctx.CallContext, other Value) bool {
	o, ok := other.(*Unknown)
	return ok && o == v
}

func (v *Unknown) String() string { return v.Name() }

// Attr returns the variable recorded for an attribute of the unknown,
// creating it on first access. The new attribute value is itself a fresh
// unknown originating at node.
func (v *Unknown) Attr(name string, node *typegraph.Node) *typegraph.Variable {
	if v.attrs == nil {
		v.attrs = make(map[string]*typegraph.Variable)
	}
	if attr, ok := v.attrs[name]; ok {
		return attr
	}
	attr := v.ctx.SingleVar(v.Name()+"."+name, v.ctx.NewUnknown(), node)
	v.attrs[name] = attr
	return attr
}

// Attrs returns the recorded attribute usage.
func (v *Unknown) Attrs() map[string]*typegraph.Variable { return v.attrs }

// RecordCall records a call of the unknown and returns its result variable, a
// fresh unknown originating at node.
func (v *Unknown) RecordCall(args *Args, node *typegraph.Node) *typegraph.Variable {
	ret := v.ctx.SingleVar(v.Name()+"()", v.ctx.NewUnknown(), node)
	v.calls = append(v.calls, RecordedCall{Args: args, Return: ret})
	return ret
}

// Calls returns the recorded call usage.
func (v *Unknown) Calls() []RecordedCall { return v.calls }
