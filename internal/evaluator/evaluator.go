// Package evaluator implements the per-frame dirtiness pass: it marks
// every node cacheable or non-cacheable using the current heavy-hitter
// set and clears each node's dirty flag.
//
// Grounded on original_source/src/solution/caching.cc's
// evaluate_tree_dirtiness: a BFS order is pushed onto a stack so that
// popping it visits leaves before their ancestors (post-order),
// replacing the original's random placeholder mark with the real
// heavy-hitter rule.
package evaluator

import "hmitree/internal/graph"

// Hitters is the read-only view the evaluator needs from the tracker.
type Hitters interface {
	IsHitter(id uint64) bool
}

// Evaluate visits every node in the graph in post-order (children
// before parents, per spec §4.D's rationale that the planner consults
// a node's children's marks before deciding about the parent) and
// marks it cacheable unless its id is a current heavy hitter, in which
// case it is marked non-cacheable ("very dirty"). The root is always
// forced non-cacheable regardless of its id's hitter status. Every
// visited node's dirty flag is cleared.
func Evaluate(g *graph.Graph, hitters Hitters) {
	// Push the BFS order onto a stack: popping it (LIFO) begins at the
	// tree's leaves and ends at the root, i.e. post-order.
	var stack []graph.NodeID
	for n := range g.TraverseBFS() {
		stack = append(stack, n.ID())
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id == graph.RootID || hitters.IsHitter(uint64(id)) {
			_ = g.MarkNonCacheable(id)
		} else {
			_ = g.MarkCacheable(id)
		}
	}
}
