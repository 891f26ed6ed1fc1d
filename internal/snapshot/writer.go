// Package snapshot periodically dumps the nodes listed in the planner's
// cache table (with their current state) and a summary of the current
// heavy-hitter set to a timestamped directory,
// grounded on internal/snapshot.Writer's timestamped-directory
// convention and internal/engine/impl/sketch's text-summary writer.
package snapshot

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hmitree/internal/graph"
)

// CacheSource is the read-only slice of planner state a snapshot needs.
type CacheSource interface {
	CachedIDs() []graph.NodeID
}

// GraphSource is the read-only slice of graph state a snapshot needs
// to resolve a cache entry's renderable content.
type GraphSource interface {
	Get(id graph.NodeID) (*graph.Node, error)
}

// HitterSource is the read-only slice of tracker state a snapshot needs.
type HitterSource interface {
	CurrentHitters() map[uint64]struct{}
	StreamSize() uint64
}

// Summary is the JSON-encoded metadata written alongside the gob dump.
type Summary struct {
	Timestamp   string   `json:"timestamp"`
	CachedCount int      `json:"cached_count"`
	HitterCount int      `json:"hitter_count"`
	StreamSize  uint64   `json:"stream_size"`
	HitterIDs   []uint64 `json:"hitter_ids"`
}

// cacheDump is the gob-encoded payload: for every node id present in
// the cache table, a fresh ToCacheEntry of the node's current state
// (not the stored cache entry itself). It is a diagnostic dump of live
// state, not a restore point.
type cacheDump map[graph.NodeID]*graph.CacheEntry

// Writer writes periodic snapshots under rootPath.
type Writer struct {
	rootPath string
}

// NewWriter constructs a Writer rooted at rootPath.
func NewWriter(rootPath string) *Writer {
	return &Writer{rootPath: rootPath}
}

// Write creates a timestamped subdirectory under rootPath containing
// cache.gob (the current state of every node whose id is in the cache
// table) and summary.json (hitter-set metadata).
func (w *Writer) Write(cache CacheSource, g GraphSource, hitters HitterSource, timestamp string) error {
	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	dump := make(cacheDump)
	for _, id := range cache.CachedIDs() {
		n, err := g.Get(id)
		if err != nil {
			continue
		}
		dump[id] = n.ToCacheEntry()
	}

	cachePath := filepath.Join(dir, "cache.gob")
	cacheFile, err := os.Create(cachePath)
	if err != nil {
		return fmt.Errorf("create snapshot file %q: %w", cachePath, err)
	}
	defer cacheFile.Close()
	if err := gob.NewEncoder(cacheFile).Encode(dump); err != nil {
		return fmt.Errorf("encode cache table to gob: %w", err)
	}

	hitterSet := hitters.CurrentHitters()
	ids := make([]uint64, 0, len(hitterSet))
	for id := range hitterSet {
		ids = append(ids, id)
	}
	summary := Summary{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		CachedCount: len(dump),
		HitterCount: len(ids),
		StreamSize:  hitters.StreamSize(),
		HitterIDs:   ids,
	}

	summaryPath := filepath.Join(dir, "summary.json")
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("create summary file %q: %w", summaryPath, err)
	}
	defer summaryFile.Close()

	enc := json.NewEncoder(summaryFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary to json: %w", err)
	}
	return nil
}
