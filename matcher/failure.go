package matcher

import (
	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/diag"
)

// failure is one ruled-out interpretation of a call: a signature that did not
// accept the arguments, under one joint argument assignment. Failures are
// collected while alternatives remain and compared afterwards, so that a call
// with any matching interpretation reports nothing and a fully failed call
// reports only its most informative rejection.
type failure struct {
	kind   diag.Kind
	callee string
	sig    *abstract.Signature
	param  string
	detail string
	passed []string
}

// rank orders failure kinds by how much they say about the call. A type
// mismatch implies the argument shape already lined up, so it outranks the
// shape failures; a type parameter passed as a value rules the call out
// under every signature.
func rank(k diag.Kind) int {
	switch k {
	case diag.WrongArgCount, diag.DuplicateKeyword, diag.WrongKeywordArgs, diag.MissingParameter:
		return 1
	case diag.WrongArgTypes, diag.KeyMissing:
		return 2
	case diag.TypeVarAsValue:
		return 3
	}
	return 0
}

// beats reports whether f should be surfaced in preference to g. Between
// failures of equal rank the signature with fewer variadic formals wins,
// since a variadic signature yields the vaguer diagnostic.
func (f *failure) beats(g *failure) bool {
	if g == nil {
		return true
	}
	fr, gr := rank(f.kind), rank(g.kind)
	if fr != gr {
		return fr > gr
	}
	return f.variadics() < g.variadics()
}

func (f *failure) variadics() int {
	if f.sig == nil {
		return 0
	}
	return f.sig.VariadicCount()
}

// event converts the failure to its diagnostics form.
func (f *failure) event(pos diag.Pos) diag.Event {
	e := diag.Event{
		Kind:     f.kind,
		Pos:      pos,
		Callee:   f.callee,
		Passed:   f.passed,
		BadParam: f.param,
		Detail:   f.detail,
	}
	if f.sig != nil {
		e.Sig = f.sig.String()
	}
	return e
}
