package evaluator

import (
	"testing"

	"hmitree/internal/graph"
)

type fakeHitters map[uint64]struct{}

func (f fakeHitters) IsHitter(id uint64) bool {
	_, ok := f[id]
	return ok
}

func buildSample(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	if err := g.AddNode(graph.RootID, graph.KindWidget, 1, ""); err != nil {
		t.Fatalf("AddNode(1): %v", err)
	}
	if err := g.AddNode(1, graph.KindText, 2, "a"); err != nil {
		t.Fatalf("AddNode(2): %v", err)
	}
	return g
}

// TestEvaluateContract checks property 5: after Evaluate, every node's
// dirty flag is false, and VeryDirty is true iff the id is a hitter or
// the node is the root.
func TestEvaluateContract(t *testing.T) {
	g := buildSample(t)
	g.Update(2, []string{"b"})

	hitters := fakeHitters{2: {}}
	Evaluate(g, hitters)

	for n := range g.TraverseBFS() {
		id := n.ID()
		if n.Dirty() {
			t.Fatalf("node %d still dirty after Evaluate", id)
		}
		wantVeryDirty := id == graph.RootID || hitters.IsHitter(uint64(id))
		if n.VeryDirty() != wantVeryDirty {
			t.Fatalf("node %d: VeryDirty=%v, want %v", id, n.VeryDirty(), wantVeryDirty)
		}
	}
}

func TestEvaluateRootAlwaysNonCacheable(t *testing.T) {
	g := buildSample(t)
	Evaluate(g, fakeHitters{})

	root, _ := g.Get(graph.RootID)
	if !root.VeryDirty() {
		t.Fatalf("root must always be marked non-cacheable")
	}
}
