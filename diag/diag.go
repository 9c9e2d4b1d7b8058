package diag

// Kind tags the failure categories the analysis can report. All of them are
// sub-kinds of a failed function call except GenericTypeError, which reports
// a self-contradictory generic class declaration.
type Kind int

const (
	// WrongArgCount indicates too many or too few positional arguments with
	// no variadic escape
	WrongArgCount Kind = iota
	// DuplicateKeyword indicates a parameter bound both positionally and by
	// keyword
	DuplicateKeyword
	// WrongKeywordArgs indicates a keyword absent from the signature with no
	// **kwargs formal
	WrongKeywordArgs
	// MissingParameter indicates a required formal with no actual and no
	// variadic fallback
	MissingParameter
	// WrongArgTypes indicates an actual whose type cannot match the formal's
	// annotation
	WrongArgTypes
	// NotCallable indicates a receiver with no usable call behavior
	NotCallable
	// KeyMissing indicates a constant dict lookup with a statically known,
	// absent key
	KeyMissing
	// GenericTypeError indicates a self-contradictory generic declaration
	GenericTypeError
	// TypeVarAsValue indicates a bare type parameter passed as an argument
	TypeVarAsValue
	// RecursionLimit indicates a call abandoned due to the recursion budget
	RecursionLimit
)

func (k Kind) String() string {
	switch k {
	case WrongArgCount:
		return "wrong-arg-count"
	case DuplicateKeyword:
		return "duplicate-keyword-argument"
	case WrongKeywordArgs:
		return "wrong-keyword-args"
	case MissingParameter:
		return "missing-parameter"
	case WrongArgTypes:
		return "wrong-arg-types"
	case NotCallable:
		return "not-callable"
	case KeyMissing:
		return "key-missing"
	case GenericTypeError:
		return "invalid-annotation"
	case TypeVarAsValue:
		return "typevar-as-value"
	case RecursionLimit:
		return "recursion-limit"
	default:
		return "unknown"
	}
}

// Pos is a source position from the decoded operation stream.
type Pos struct {
	Line int
	Col  int
}

// Event is one structured failure report. Fields carry names and renderings
// of the values involved; turning an event into a user-facing message is the
// caller's concern.
type Event struct {
	Kind     Kind
	Pos      Pos
	Callee   string
	Sig      string
	Passed   []string
	BadParam string
	Detail   string
}

// Log collects events during one analysis run.
type Log struct {
	events []Event
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Add appends an event. An event identical to an already recorded one is
// dropped, so re-analysis of the same call site reports once.
func (l *Log) Add(e Event) {
	for _, prev := range l.events {
		if sameEvent(prev, e) {
			return
		}
	}
	l.events = append(l.events, e)
}

func sameEvent(a, b Event) bool {
	if a.Kind != b.Kind || a.Pos != b.Pos || a.Callee != b.Callee ||
		a.Sig != b.Sig || a.BadParam != b.BadParam || a.Detail != b.Detail {
		return false
	}
	if len(a.Passed) != len(b.Passed) {
		return false
	}
	for i := range a.Passed {
		if a.Passed[i] != b.Passed[i] {
			return false
		}
	}
	return true
}

// Events returns all events in report order.
func (l *Log) Events() []Event {
	return l.events
}

// Len returns the number of events reported so far.
func (l *Log) Len() int {
	return len(l.events)
}

// CountByKind tallies events per kind.
func (l *Log) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for _, e := range l.events {
		out[e.Kind]++
	}
	return out
}
