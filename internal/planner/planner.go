// Package planner implements the cache-aware refresh planner: per
// frame it walks the scene graph, decides per node whether to render,
// cache, or reuse, and owns the persistent cache table keyed by node
// identifier.
//
// Grounded on original_source/src/solution/caching.cc's
// refresh_screen and clear_cache. The BFS traversal is a direct queue
// (rather than the original's DFS-order-pushed-into-a-queue trick,
// which exists only to approximate BFS adjacency in C++ iterators);
// Go's container/list gives a genuine BFS queue directly, which is a
// clearer realization of the same "highest cacheable ancestor wins"
// property spec §4.E and §8 property 7 require.
package planner

import (
	"container/list"

	"hmitree/internal/graph"
)

// Renderer is the opaque "render this node" effect the planner
// invokes. Rendering is out of scope for this repository's core (spec
// §1); production wiring plugs in the actual drawing primitive here.
type Renderer interface {
	Render(id graph.NodeID)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(id graph.NodeID)

// Render calls f(id).
func (f RenderFunc) Render(id graph.NodeID) { f(id) }

// Planner owns the cache table and the render side effect. The cache
// table is an unexported field — never a process-wide singleton, per
// spec §9.
type Planner struct {
	renderer   Renderer
	cacheTable map[graph.NodeID]*graph.CacheEntry
}

// New constructs a planner that invokes renderer for every render
// side effect.
func New(renderer Renderer) *Planner {
	return &Planner{
		renderer:   renderer,
		cacheTable: make(map[graph.NodeID]*graph.CacheEntry),
	}
}

// CacheTableSize returns the number of entries currently cached.
func (p *Planner) CacheTableSize() int { return len(p.cacheTable) }

// CachedIDs returns a snapshot of the ids currently present in the
// cache table.
func (p *Planner) CachedIDs() []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(p.cacheTable))
	for id := range p.cacheTable {
		ids = append(ids, id)
	}
	return ids
}

// Run executes one frame of the refresh algorithm from spec §4.E and
// returns the ids rendered during this frame, in the order rendered.
// evaluate must have already been run against g this frame so every
// node's VeryDirty mark reflects the current heavy-hitter set.
func (p *Planner) Run(g *graph.Graph) []graph.NodeID {
	var rendered []graph.NodeID
	cachedThisFrame := make(map[graph.NodeID]struct{})

	queue := list.New()
	queue.PushBack(g.Root())

	for queue.Len() > 0 {
		front := queue.Remove(queue.Front()).(*graph.Node)
		id := front.ID()

		if !front.VeryDirty() {
			if p.planCacheable(g, front, cachedThisFrame) {
				rendered = append(rendered, id)
			}
			// Do not enqueue children: front's cache entry subsumes them.
			continue
		}

		// Non-cacheable: drop any stale cache entry and render.
		if _, ok := p.cacheTable[id]; ok {
			delete(p.cacheTable, id)
		}
		p.renderer.Render(id)
		rendered = append(rendered, id)

		for _, cid := range front.ChildIDs() {
			child, err := g.Get(cid)
			if err != nil {
				continue
			}
			queue.PushBack(child)
		}
	}

	p.garbageCollect(cachedThisFrame)
	return rendered
}

// planCacheable applies the three-way cacheable-node rule of spec
// §4.E.1 and reports whether it rendered.
func (p *Planner) planCacheable(g *graph.Graph, n *graph.Node, cachedThisFrame map[graph.NodeID]struct{}) bool {
	id := n.ID()
	cachedThisFrame[id] = struct{}{}

	entry, exists := p.cacheTable[id]
	switch {
	case !exists:
		p.renderer.Render(id)
		p.cacheTable[id] = n.ToCacheEntry()
		return true
	case p.anyChildWasNonCacheable(g, n):
		p.renderer.Render(id)
		p.cacheTable[id] = n.ToCacheEntry()
		return true
	default:
		n.ApplyCacheEntry(entry)
		return false
	}
}

// anyChildWasNonCacheable resolves spec §9's open question: it checks
// each direct child's VeryDirty mark as the evaluator just set it this
// same frame (the evaluator always runs immediately before the
// planner), not any snapshot from a prior frame.
func (p *Planner) anyChildWasNonCacheable(g *graph.Graph, n *graph.Node) bool {
	for _, cid := range n.ChildIDs() {
		child, err := g.Get(cid)
		if err != nil {
			continue
		}
		if child.VeryDirty() {
			return true
		}
	}
	return false
}

// garbageCollect drops every cache-table entry whose id was not
// touched this frame: those nodes either no longer exist in the graph
// or became non-cacheable.
func (p *Planner) garbageCollect(cachedThisFrame map[graph.NodeID]struct{}) {
	for id := range p.cacheTable {
		if _, ok := cachedThisFrame[id]; !ok {
			delete(p.cacheTable, id)
		}
	}
}

// ClearCache destroys every cache entry, releasing them all. Called at
// shutdown (spec §4.F's `end` command, §5's memory-ownership rule).
func (p *Planner) ClearCache() {
	p.cacheTable = make(map[graph.NodeID]*graph.CacheEntry)
}
