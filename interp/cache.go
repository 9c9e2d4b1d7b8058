package interp

import (
	"encoding/binary"
	"sort"

	"github.com/dgraph-io/ristretto"
	spooky "github.com/dgryski/go-spooky"

	"github.com/pythiaco/pythia/abstract"
	"github.com/pythiaco/pythia/golib/errors"
	"github.com/pythiaco/pythia/typegraph"
)

// callEntry is one memoized call outcome together with the recursion budget
// that was left when it was recorded. An entry recorded near the limit may
// hold degraded results, so it only serves lookups that have at most as much
// budget themselves.
type callEntry struct {
	ret       *typegraph.Variable
	matched   bool
	remaining int
}

// callCache memoizes interpreted calls. Keys fingerprint the callee, the
// call site and the argument bindings; bindings only accumulate, so a
// widened argument produces a fresh key and stale entries simply stop being
// referenced.
type callCache struct {
	c *ristretto.Cache
}

func newCallCache() (*callCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100000,
		MaxCost:     10000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "interp: creating call cache")
	}
	return &callCache{c: c}, nil
}

func (cc *callCache) lookup(key uint64, remaining int) (callEntry, bool) {
	v, ok := cc.c.Get(key)
	if !ok {
		return callEntry{}, false
	}
	e := v.(callEntry)
	if !servable(e.remaining, remaining) {
		return callEntry{}, false
	}
	return e, true
}

func (cc *callCache) store(key uint64, e callEntry) {
	cc.c.Set(key, e, 1)
}

// servable reports whether an entry recorded with entryRem budget left may
// serve a lookup with curRem left. More budget now than at record time means
// a fresh run could be more precise than the recorded outcome, so the entry
// is ignored. A negative remaining means no budget at all.
func servable(entryRem, curRem int) bool {
	if entryRem < 0 {
		return true
	}
	if curRem < 0 {
		return false
	}
	return entryRem >= curRem
}

// Salts keep the key spaces of unrelated fingerprint components apart. The
// numbers are randomly generated.
const (
	saltCallKey  = 7064853401286
	saltStarArg  = 3098571384656
	saltStarStar = 8612090855634
)

// mix folds x into the running hash h.
func mix(h, x uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return spooky.Hash64Seed(b[:], h)
}

// callKey fingerprints one call: which function, at which program point,
// with which argument bindings and how much mutable state of instance
// arguments is visible.
func (i *Interpreter) callKey(fn *abstract.InterpreterFunction, node *typegraph.Node, args *abstract.Args) uint64 {
	h := mix(saltCallKey, i.fnID(fn))
	h = mix(h, uint64(node.ID()))
	for _, v := range args.Positional {
		h = hashArg(h, v)
	}
	for _, kw := range args.Keywords {
		h = spooky.Hash64Seed([]byte(kw.Name), h)
		h = hashArg(h, kw.Value)
	}
	if args.Starargs != nil {
		h = hashArg(mix(h, saltStarArg), args.Starargs)
	}
	if args.Starstarargs != nil {
		h = hashArg(mix(h, saltStarStar), args.Starstarargs)
	}
	return h
}

// fnID hands out a stable identity per function value.
func (i *Interpreter) fnID(fn *abstract.InterpreterFunction) uint64 {
	if id, ok := i.fnIDs[fn]; ok {
		return id
	}
	id := uint64(len(i.fnIDs) + 1)
	i.fnIDs[fn] = id
	return id
}

func hashArg(h uint64, v *typegraph.Variable) uint64 {
	h = mix(h, uint64(v.ID()))
	for _, b := range v.Bindings() {
		h = mix(h, uint64(b.ID()))
		if inst, ok := b.Data().(abstract.InstanceValue); ok {
			h = mix(h, stateFingerprint(inst))
		}
	}
	return h
}

// stateFingerprint folds in how many bindings each tracked type parameter
// and attribute of an instance holds. The counts only grow, so a widened
// container or a newly assigned attribute changes the fingerprint.
func stateFingerprint(inst abstract.InstanceValue) uint64 {
	var h uint64
	h = hashVarMap(h, inst.Attrs())
	if pt, ok := inst.(interface {
		TypeParams() map[string]*typegraph.Variable
	}); ok {
		h = hashVarMap(h, pt.TypeParams())
	}
	return h
}

func hashVarMap(h uint64, m map[string]*typegraph.Variable) uint64 {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h = spooky.Hash64Seed([]byte(name), h)
		h = mix(h, uint64(len(m[name].Bindings())))
	}
	return h
}
