// Package debugapi exposes a read-only HTTP surface over a live
// hmi-engine for operational inspection: the current scene graph, the
// cache table, and the heavy-hitter set.
//
// Grounded on cmd/ns-api/main.go's APIHandler + mux.NewRouter() +
// handler-struct pattern, with protojson swapped for encoding/json
// since this domain carries no Protobuf schema (see DESIGN.md).
package debugapi

import (
	"encoding/json"
	"iter"
	"net/http"

	"github.com/gorilla/mux"

	"hmitree/internal/graph"
)

// GraphView is the read-only slice of Engine state the handler needs.
type GraphView interface {
	TraverseBFS() iter.Seq[*graph.Node]
	Get(id graph.NodeID) (*graph.Node, error)
}

// CacheView exposes the planner's cache table.
type CacheView interface {
	CachedIDs() []graph.NodeID
	CacheTableSize() int
}

// HitterView exposes the tracker's current hitter set.
type HitterView interface {
	CurrentHitters() map[uint64]struct{}
	StreamSize() uint64
}

// Handler holds the dependencies backing the debug endpoints.
type Handler struct {
	Graph   GraphView
	Cache   CacheView
	Hitters HitterView
}

// NewRouter builds a mux.Router exposing GET /tree, /cache, and
// /hitters as JSON over h.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/tree", h.treeHandler).Methods(http.MethodGet)
	r.HandleFunc("/cache", h.cacheHandler).Methods(http.MethodGet)
	r.HandleFunc("/hitters", h.hittersHandler).Methods(http.MethodGet)
	return r
}

type nodeView struct {
	ID        graph.NodeID   `json:"id"`
	Kind      string         `json:"kind"`
	Content   string         `json:"content,omitempty"`
	VeryDirty bool           `json:"very_dirty"`
	Children  []graph.NodeID `json:"children"`
}

func (h *Handler) treeHandler(w http.ResponseWriter, r *http.Request) {
	var views []nodeView
	for n := range h.Graph.TraverseBFS() {
		views = append(views, nodeView{
			ID:        n.ID(),
			Kind:      n.Kind().String(),
			Content:   n.Content(),
			VeryDirty: n.VeryDirty(),
			Children:  n.ChildIDs(),
		})
	}
	writeJSON(w, views)
}

func (h *Handler) cacheHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Size int            `json:"size"`
		IDs  []graph.NodeID `json:"ids"`
	}{Size: h.Cache.CacheTableSize(), IDs: h.Cache.CachedIDs()})
}

func (h *Handler) hittersHandler(w http.ResponseWriter, r *http.Request) {
	hitters := h.Hitters.CurrentHitters()
	ids := make([]uint64, 0, len(hitters))
	for id := range hitters {
		ids = append(ids, id)
	}
	writeJSON(w, struct {
		StreamSize uint64   `json:"stream_size"`
		Hitters    []uint64 `json:"hitters"`
	}{StreamSize: h.Hitters.StreamSize(), Hitters: ids})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
