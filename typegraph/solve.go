package typegraph

import (
	"sort"
	"strconv"
)

// solver answers exact feasibility queries by walking backwards from the
// query node, discharging each goal binding at one of its origins and
// recursively discharging the origin's source set. Query results are memoized
// until the graph changes.
type solver struct {
	program *Program
	cache   map[string]bool
}

func newSolver(p *Program) *solver {
	return &solver{
		program: p,
		cache:   make(map[string]bool),
	}
}

func (s *solver) solve(goals []*Binding, pos *Node) bool {
	set, ok := newGoalSet(goals)
	if !ok {
		return false
	}
	return s.run(pos, set)
}

func (s *solver) run(pos *Node, goals goalSet) bool {
	if len(goals) == 0 {
		return true
	}
	key := goals.key(pos)
	if res, ok := s.cache[key]; ok {
		return res
	}
	// In-progress queries count as unsolved so that graph cycles and
	// self-referential source sets terminate.
	s.cache[key] = false
	res := s.feasible(pos, goals) && s.expand(pos, goals)
	s.cache[key] = res
	return res
}

// feasible prunes states where some goal has no origin node from which pos is
// reachable. Such a goal can never be discharged on a backwards walk.
func (s *solver) feasible(pos *Node, goals goalSet) bool {
	reach := s.program.reachability()
	for _, g := range goals {
		ok := false
		for _, o := range g.origins {
			if reach.reachable(o.Where, pos) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *solver) expand(pos *Node, goals goalSet) bool {
	// Discharge one goal at an origin on the current node, replacing it with
	// one of the origin's source sets.
	for _, g := range goals {
		for _, o := range g.origins {
			if o.Where != pos {
				continue
			}
			rest := goals.without(g)
			for _, ss := range o.SourceSets {
				next, ok := rest.with(ss)
				if !ok {
					continue
				}
				if s.run(pos, next) {
					return true
				}
			}
		}
	}
	// Otherwise look for the goals before the current node.
	for _, pred := range pos.incoming {
		if s.run(pred, goals) {
			return true
		}
	}
	return false
}

// goalSet is a set of bindings kept sorted by id, holding at most one binding
// per variable.
type goalSet []*Binding

func newGoalSet(goals []*Binding) (goalSet, bool) {
	var out goalSet
	var ok bool
	out, ok = out.with(goals)
	return out, ok
}

// with returns the union of the set and the given bindings. It reports false
// if two different bindings of the same variable would end up in the set.
func (g goalSet) with(bindings []*Binding) (goalSet, bool) {
	out := g
	for _, b := range bindings {
		var ok bool
		out, ok = out.add(b)
		if !ok {
			return nil, false
		}
	}
	return out, true
}

func (g goalSet) add(b *Binding) (goalSet, bool) {
	i := sort.Search(len(g), func(i int) bool { return g[i].id >= b.id })
	if i < len(g) && g[i] == b {
		return g, true
	}
	for _, other := range g {
		if other.variable == b.variable {
			return nil, false
		}
	}
	out := make(goalSet, 0, len(g)+1)
	out = append(out, g[:i]...)
	out = append(out, b)
	out = append(out, g[i:]...)
	return out, true
}

func (g goalSet) without(b *Binding) goalSet {
	out := make(goalSet, 0, len(g))
	for _, x := range g {
		if x != b {
			out = append(out, x)
		}
	}
	return out
}

func (g goalSet) key(pos *Node) string {
	buf := make([]byte, 0, 8+len(g)*8)
	buf = strconv.AppendInt(buf, int64(pos.id), 10)
	for _, b := range g {
		buf = append(buf, '.')
		buf = strconv.AppendInt(buf, int64(b.id), 10)
	}
	return string(buf)
}
