// Package heavyhitters maintains the set of node identifiers whose
// estimated update frequency currently exceeds the heavy-hitter
// threshold, with hysteresis so borderline ids do not flap in and out
// of the set every observation.
package heavyhitters

import (
	"container/heap"

	"hmitree/internal/sketch"
)

// Tracker wraps a Count-Min Sketch with the streaming heavy-hitters
// membership algorithm from spec §4.B.
type Tracker struct {
	cms    *sketch.CountMin
	k      int
	leeway float64

	m       uint64
	members map[uint64]struct{}
	pq      minHeap
}

// NewTracker constructs a tracker whose underlying sketch targets k
// heavy hitters with error probability delta, and whose membership
// hysteresis fraction is leeway (leeway must be in [0,1]).
func NewTracker(k int, delta, leeway float64) (*Tracker, error) {
	cms, err := sketch.NewCountMin(k, delta)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		cms:     cms,
		k:       k,
		leeway:  leeway,
		members: make(map[uint64]struct{}),
	}, nil
}

// StreamSize returns m, the number of observe() calls made so far.
func (t *Tracker) StreamSize() uint64 { return t.m }

// Estimate exposes the underlying sketch's current estimate for id,
// primarily for tests and diagnostics.
func (t *Tracker) Estimate(id uint64) uint64 { return t.cms.Estimate(id) }

// Observe must be called exactly once per clean-to-dirty transition of
// a node identifier (never for repeat updates to an already-dirty node
// within the same inter-frame interval). It increments the sketch,
// lazily evicts stale hitters whose estimate has fallen below the
// hysteresis threshold (1+leeway)*m/k, and then admits id if its
// estimate has reached m/k — eviction runs before admission.
func (t *Tracker) Observe(id uint64) {
	t.cms.Increment(id)
	t.m++

	// Evict stale members first, against the existing heap, before
	// admitting id — otherwise a fresh admission below could be
	// immediately re-examined and popped by this same sweep.
	evictBound := (1.0 + t.leeway) * float64(t.m) / float64(t.k)
	for t.pq.Len() > 0 {
		top := t.pq[0]
		if float64(t.cms.Estimate(top.id)) >= evictBound {
			break
		}
		heap.Pop(&t.pq)
		delete(t.members, top.id)
	}

	threshold := float64(t.m) / float64(t.k)
	if _, ok := t.members[id]; !ok {
		if float64(t.cms.Estimate(id)) >= threshold {
			t.members[id] = struct{}{}
			heap.Push(&t.pq, &pqItem{id: id, tracker: t})
		}
	}
}

// CurrentHitters returns a read-only snapshot of the current heavy
// hitter set. Mutating the tracker afterward does not affect the
// returned map.
func (t *Tracker) CurrentHitters() map[uint64]struct{} {
	snapshot := make(map[uint64]struct{}, len(t.members))
	for id := range t.members {
		snapshot[id] = struct{}{}
	}
	return snapshot
}

// IsHitter reports whether id is currently a heavy hitter.
func (t *Tracker) IsHitter(id uint64) bool {
	_, ok := t.members[id]
	return ok
}

// pqItem is a priority-queue entry compared by the tracker's *current*
// Count-Min estimate at comparison time, per spec §9's "priority queue
// with stale keys" design note: a standard binary heap suffices
// because eviction only ever peeks at the minimum, and re-heapifying
// on every estimate change is unnecessary.
type pqItem struct {
	id      uint64
	tracker *Tracker
}

type minHeap []*pqItem

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	return h[i].tracker.cms.Estimate(h[i].id) < h[j].tracker.cms.Estimate(h[j].id)
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(*pqItem))
}

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
