package hmicli

import (
	"bytes"
	"strings"
	"testing"

	"hmitree/internal/graph"
	"hmitree/internal/planner"
)

func newTestEngine(t *testing.T) (*Engine, *recordingRenderer) {
	t.Helper()
	renderer := &recordingRenderer{}
	eng, err := NewEngine(2, 0.1, 0.5, renderer)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, renderer
}

type recordingRenderer struct {
	calls []graph.NodeID
}

func (r *recordingRenderer) Render(id graph.NodeID) {
	r.calls = append(r.calls, id)
}

var _ planner.Renderer = (*recordingRenderer)(nil)

func TestRunDefinesNodesAndRefreshes(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.Join([]string{
		"2",
		"0,W,1",
		"1,T,2,hello",
		"refresh",
		"end",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if eng.Frame() != 1 {
		t.Fatalf("expected 1 frame processed, got %d", eng.Frame())
	}
	if eng.Planner.CacheTableSize() != 0 {
		t.Fatalf("expected cache table cleared by end, got size %d", eng.Planner.CacheTableSize())
	}
}

func TestRunAppliesUpdatesBeforeRefresh(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.Join([]string{
		"2",
		"0,W,1",
		"1,T,2,hello",
		"2,world",
		"refresh",
		"end",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err != nil {
		t.Fatalf("Run: %v", err)
	}

	n, err := eng.Graph.Get(2)
	if err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	if n.Content() != "world" {
		t.Fatalf("expected content 'world', got %q", n.Content())
	}
}

func TestRunPrintProducesOutput(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.Join([]string{
		"1",
		"0,W,1",
		"print",
		"end",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected print to produce output")
	}
}

func TestRunRejectsMalformedNodeDefinition(t *testing.T) {
	eng, _ := newTestEngine(t)
	input := "1\nnot-a-valid-line\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err == nil {
		t.Fatal("expected an error for a malformed node definition")
	}
}

func TestRunRejectsUnknownNodeKind(t *testing.T) {
	eng, _ := newTestEngine(t)
	input := "1\n0,Q,1\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err == nil {
		t.Fatal("expected an error for an unknown node kind")
	}
}

func TestRunSkipsMalformedUpdateLineAndContinues(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.Join([]string{
		"1",
		"0,T,1,hello",
		"not-a-node-id,x",
		"1,world",
		"refresh",
		"end",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err != nil {
		t.Fatalf("expected malformed update line to be skipped, got error: %v", err)
	}

	n, err := eng.Graph.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if n.Content() != "world" {
		t.Fatalf("expected the valid update after the malformed line to still apply, got %q", n.Content())
	}
	if eng.Frame() != 1 {
		t.Fatalf("expected the command stream to continue past the malformed line to refresh, got %d frames", eng.Frame())
	}
}

func TestRunFailsOnUnknownNodeUpdate(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.Join([]string{
		"1",
		"0,T,1,hello",
		"99,world",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(strings.NewReader(input), &out, eng); err == nil {
		t.Fatal("expected an update referring to an unknown node id to be fatal")
	}
}

func TestHandleUpdateObservesOnlyOnTransition(t *testing.T) {
	eng, _ := newTestEngine(t)
	if err := eng.DefineNode(graph.RootID, graph.KindText, 1, "a"); err != nil {
		t.Fatalf("DefineNode: %v", err)
	}

	if err := eng.HandleUpdate(1, []string{"b"}); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	if eng.Tracker.StreamSize() != 1 {
		t.Fatalf("expected one observation after first dirtying update, got %d", eng.Tracker.StreamSize())
	}

	if err := eng.HandleUpdate(1, []string{"c"}); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	if eng.Tracker.StreamSize() != 1 {
		t.Fatalf("expected no additional observation while already dirty, got stream size %d", eng.Tracker.StreamSize())
	}
}
