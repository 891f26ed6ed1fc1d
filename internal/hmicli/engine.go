// Package hmicli implements the command protocol and event loop that
// drives a scene graph, heavy-hitters tracker, and refresh planner
// from a stream of node-definition and update commands.
package hmicli

import (
	"fmt"

	"hmitree/internal/evaluator"
	"hmitree/internal/graph"
	"hmitree/internal/heavyhitters"
	"hmitree/internal/planner"
)

// ErrUnknownNodeKind is returned when a node-definition line names a
// type other than "V", "W", or "T".
var ErrUnknownNodeKind = fmt.Errorf("unknown node kind")

// Engine bundles the scene graph, heavy-hitters tracker, and refresh
// planner into the single stateful unit both the stdin loop
// (internal/hmicli) and the NATS-fed loop (internal/feed) drive.
type Engine struct {
	Graph   *graph.Graph
	Tracker *heavyhitters.Tracker
	Planner *planner.Planner

	frame int
}

// NewEngine constructs an Engine with a fresh graph and a tracker
// parameterized by k, delta, and leeway (spec §4.B).
func NewEngine(k int, delta, leeway float64, renderer planner.Renderer) (*Engine, error) {
	tracker, err := heavyhitters.NewTracker(k, delta, leeway)
	if err != nil {
		return nil, fmt.Errorf("construct tracker: %w", err)
	}
	return &Engine{
		Graph:   graph.NewGraph(),
		Tracker: tracker,
		Planner: planner.New(renderer),
	}, nil
}

// KindFromCode maps the protocol's single-letter type code to a
// graph.Kind, per spec §6's node-definition grammar.
func KindFromCode(code string) (graph.Kind, error) {
	switch code {
	case "V":
		return graph.KindView, nil
	case "W":
		return graph.KindWidget, nil
	case "T":
		return graph.KindText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNodeKind, code)
	}
}

// DefineNode adds a node to the graph as specified by a node-definition
// line's already-split fields.
func (e *Engine) DefineNode(parentID graph.NodeID, kind graph.Kind, id graph.NodeID, content string) error {
	return e.Graph.AddNode(parentID, kind, id, content)
}

// HandleUpdate applies args to node id, observing the update in the
// heavy-hitters tracker exactly once per clean-to-dirty transition
// (spec §4.B's contract, resolved in DESIGN.md's "observe-then-update
// ordering" note: Update runs first because it is the only component
// that already knows the prior dirty state, and the transitioned
// return value drives the single Observe call).
func (e *Engine) HandleUpdate(id graph.NodeID, args []string) error {
	transitioned, err := e.Graph.Update(id, args)
	if err != nil {
		return err
	}
	if transitioned {
		e.Tracker.Observe(uint64(id))
	}
	return nil
}

// HandleRefresh runs one frame: dirtiness evaluation followed by the
// refresh planner, and returns the ids rendered this frame.
func (e *Engine) HandleRefresh() []graph.NodeID {
	e.frame++
	evaluator.Evaluate(e.Graph, e.Tracker)
	return e.Planner.Run(e.Graph)
}

// HandleEnd releases the cache table, matching spec §4.F's shutdown
// step and §5's memory-ownership rule.
func (e *Engine) HandleEnd() {
	e.Planner.ClearCache()
}

// Frame returns the number of refreshes processed so far.
func (e *Engine) Frame() int { return e.frame }
