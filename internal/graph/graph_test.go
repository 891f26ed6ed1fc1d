package graph

import (
	"errors"
	"testing"
)

func buildSample(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	if err := g.AddNode(RootID, KindWidget, 1, ""); err != nil {
		t.Fatalf("AddNode(1): %v", err)
	}
	if err := g.AddNode(1, KindText, 2, "a"); err != nil {
		t.Fatalf("AddNode(2): %v", err)
	}
	return g
}

func TestAddNodeUnknownParent(t *testing.T) {
	g := NewGraph()
	err := g.AddNode(99, KindText, 7, "x")
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("graph must be unchanged on failure, got %d nodes", g.NodeCount())
	}
}

func TestAddNodeDuplicateID(t *testing.T) {
	g := buildSample(t)
	if err := g.AddNode(RootID, KindWidget, 1, ""); !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestLeaseIDReturnsPreferredWhenFree(t *testing.T) {
	g := buildSample(t)
	if got := g.LeaseID(42); got != 42 {
		t.Fatalf("expected LeaseID to return the unused preferred id 42, got %d", got)
	}
}

func TestLeaseIDReturnsAlternativeWhenPreferredTaken(t *testing.T) {
	g := buildSample(t)
	got := g.LeaseID(1)
	if got == 1 {
		t.Fatal("expected LeaseID to avoid the already-taken id 1")
	}
	if _, ok := g.nodes[got]; ok {
		t.Fatalf("expected LeaseID to return an id not already in the graph, got %d", got)
	}
}

func TestParentChildConsistency(t *testing.T) {
	g := buildSample(t)

	for _, id := range []NodeID{RootID, 1, 2} {
		n, err := g.Get(id)
		if err != nil {
			t.Fatalf("Get(%d): %v", id, err)
		}
		for _, cid := range n.ChildIDs() {
			child, err := g.Get(cid)
			if err != nil {
				t.Fatalf("Get(child %d): %v", cid, err)
			}
			found := false
			for _, pid := range child.ParentIDs() {
				if pid == id {
					found = true
				}
			}
			if !found {
				t.Fatalf("child %d does not list %d as a parent", cid, id)
			}
		}
	}
}

func TestRemoveParentEdgeDestroysOrphan(t *testing.T) {
	g := buildSample(t)

	if err := g.RemoveParentEdge(1, RootID); err != nil {
		t.Fatalf("RemoveParentEdge: %v", err)
	}

	if _, err := g.Get(1); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected node 1 to be destroyed, got err=%v", err)
	}
	if _, err := g.Get(2); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected orphaned child 2 to be destroyed, got err=%v", err)
	}
}

func TestSharedChildSurvivesOneParentRemoval(t *testing.T) {
	g := buildSample(t)
	if err := g.AddNode(RootID, KindWidget, 3, ""); err != nil {
		t.Fatalf("AddNode(3): %v", err)
	}
	if err := g.AddParentEdge(2, 3); err != nil {
		t.Fatalf("AddParentEdge: %v", err)
	}

	if err := g.RemoveParentEdge(2, 1); err != nil {
		t.Fatalf("RemoveParentEdge: %v", err)
	}
	if _, err := g.Get(2); err != nil {
		t.Fatalf("node 2 should survive via its remaining parent, got %v", err)
	}
}

func TestRootCannotBeRemoved(t *testing.T) {
	g := NewGraph()
	if err := g.RemoveParentEdge(RootID, RootID); !errors.Is(err, ErrRootImmutable) {
		t.Fatalf("expected ErrRootImmutable, got %v", err)
	}
}

func TestUpdateTransitionSemantics(t *testing.T) {
	g := buildSample(t)

	transitioned, err := g.Update(2, []string{"b"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !transitioned {
		t.Fatalf("expected clean-to-dirty transition on first update")
	}

	transitioned, err = g.Update(2, []string{"c"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if transitioned {
		t.Fatalf("expected no transition when already dirty")
	}

	n, _ := g.Get(2)
	if n.Content() != "c" {
		t.Fatalf("expected content 'c', got %q", n.Content())
	}
}

func TestUpdateUnknownNode(t *testing.T) {
	g := NewGraph()
	if _, err := g.Update(42, nil); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestTraversalVisitsEveryNodeOnce(t *testing.T) {
	g := buildSample(t)

	var bfs, dfs []NodeID
	for n := range g.TraverseBFS() {
		bfs = append(bfs, n.ID())
	}
	for n := range g.TraverseDFS() {
		dfs = append(dfs, n.ID())
	}

	if len(bfs) != 3 || len(dfs) != 3 {
		t.Fatalf("expected 3 nodes in each traversal, got bfs=%d dfs=%d", len(bfs), len(dfs))
	}
	if bfs[0] != RootID || dfs[0] != RootID {
		t.Fatalf("expected both traversals to start at the root")
	}
}

func TestTraverseBFSIsRestartable(t *testing.T) {
	g := buildSample(t)

	var first, second []NodeID
	for n := range g.TraverseBFS() {
		first = append(first, n.ID())
	}
	for n := range g.TraverseBFS() {
		second = append(second, n.ID())
	}

	if len(first) != len(second) {
		t.Fatalf("expected two independent traversals of equal length, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected repeated traversal to visit nodes in the same order, got %v then %v", first, second)
		}
	}
}

func TestTraverseBFSStopsEarlyOnFalseYield(t *testing.T) {
	g := buildSample(t)

	var visited []NodeID
	for n := range g.TraverseBFS() {
		visited = append(visited, n.ID())
		break
	}

	if len(visited) != 1 || visited[0] != RootID {
		t.Fatalf("expected an early break to stop after the root, got %v", visited)
	}
}

func TestCacheEntryRoundTrip(t *testing.T) {
	g := buildSample(t)
	n, _ := g.Get(2)

	entry := n.ToCacheEntry()
	if entry.Content != "a" {
		t.Fatalf("expected captured content 'a', got %q", entry.Content)
	}

	n.applyUpdate([]string{"changed"})
	n.ApplyCacheEntry(entry)
	if n.Content() != "a" {
		t.Fatalf("expected restored content 'a', got %q", n.Content())
	}
}

func TestApplyCacheEntryKindMismatchPanics(t *testing.T) {
	g := buildSample(t)
	widget, _ := g.Get(1)
	text, _ := g.Get(2)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on kind mismatch")
		}
	}()
	widget.ApplyCacheEntry(text.ToCacheEntry())
}
