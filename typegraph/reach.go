package typegraph

// reachability caches, per node, the bitset of nodes reachable from it along
// outgoing edges. It is rebuilt from scratch whenever the node or edge set
// grows, which is cheap at the graph sizes one analysis run produces.
type reachability struct {
	words int
	sets  [][]uint64
}

func newReachability(nodes []*Node) *reachability {
	words := (len(nodes) + 63) / 64
	r := &reachability{
		words: words,
		sets:  make([][]uint64, len(nodes)),
	}
	for _, n := range nodes {
		set := make([]uint64, words)
		set[n.id/64] |= 1 << uint(n.id%64)
		r.sets[n.id] = set
	}
	// Propagate successor sets to a fixpoint. Edges can form cycles via loop
	// back edges, so a single pass in id order is not enough.
	for changed := true; changed; {
		changed = false
		for _, n := range nodes {
			set := r.sets[n.id]
			for _, succ := range n.outgoing {
				if r.union(set, r.sets[succ.id]) {
					changed = true
				}
			}
		}
	}
	return r
}

// union ors src into dst and reports whether dst changed.
func (r *reachability) union(dst, src []uint64) bool {
	changed := false
	for i, w := range src {
		if dst[i]|w != dst[i] {
			dst[i] |= w
			changed = true
		}
	}
	return changed
}

// reachable reports whether to can be reached from from along outgoing edges.
// Every node reaches itself.
func (r *reachability) reachable(from, to *Node) bool {
	return r.sets[from.id][to.id/64]&(1<<uint(to.id%64)) != 0
}
