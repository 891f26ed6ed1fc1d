// Package graph implements the HMI scene graph: a rooted DAG of View,
// Widget and Text nodes with update/dirty state and cache-entry hooks,
// grounded on original_source/include/tree/{node.hh,hmi_tree.hh}.
package graph

import "fmt"

// NodeID identifies a node uniquely within a single Graph. Id 0 is
// reserved for the root View node.
type NodeID uint64

// RootID is the reserved identifier of the always-present root node.
const RootID NodeID = 0

// Kind distinguishes the polymorphic node variants.
type Kind int

const (
	// KindView is the root-only variant.
	KindView Kind = iota
	// KindWidget is an interior node with no payload.
	KindWidget
	// KindText is a leaf node carrying a string payload.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindView:
		return "View"
	case KindWidget:
		return "Widget"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Node is a single scene-graph entity. Fields are unexported; all
// mutation goes through Graph methods so that the parent/child
// consistency invariant (child in parent.children iff parent in
// child.parents) is never violated from outside the package.
type Node struct {
	id   NodeID
	kind Kind

	children map[NodeID]struct{}
	parents  map[NodeID]struct{}

	dirty     bool
	veryDirty bool

	content string // Text payload only
}

// ID returns the node's immutable identifier.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's variant.
func (n *Node) Kind() Kind { return n.kind }

// Dirty reports whether the node has been updated since the last
// evaluator pass.
func (n *Node) Dirty() bool { return n.dirty }

// VeryDirty reports the mark assigned by the most recent evaluator
// pass: true means non-cacheable (the node's id is a heavy hitter, or
// it is the root), false means cacheable.
func (n *Node) VeryDirty() bool { return n.veryDirty }

// Content returns the current Text payload. It is the empty string for
// View and Widget nodes.
func (n *Node) Content() string { return n.content }

// ChildIDs returns a snapshot slice of the node's children's ids.
func (n *Node) ChildIDs() []NodeID {
	ids := make([]NodeID, 0, len(n.children))
	for id := range n.children {
		ids = append(ids, id)
	}
	return ids
}

// ParentIDs returns a snapshot slice of the node's parents' ids.
func (n *Node) ParentIDs() []NodeID {
	ids := make([]NodeID, 0, len(n.parents))
	for id := range n.parents {
		ids = append(ids, id)
	}
	return ids
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// applyUpdate performs the variant-specific update described by
// params, per spec §4.C: Text's params[0] becomes the new content,
// Widget and View ignore params.
func (n *Node) applyUpdate(params []string) {
	switch n.kind {
	case KindText:
		if len(params) > 0 {
			n.content = params[0]
		}
	case KindWidget, KindView:
		// no payload to update
	}
}

// CacheEntry is a snapshot of a node's renderable state, tagged by the
// variant it was captured from. A type mismatch between an entry and
// the node it is later applied to is a programmer error.
type CacheEntry struct {
	Kind    Kind
	Content string // populated only for KindText
}

// ToCacheEntry produces a freshly allocated snapshot of the node's
// current renderable state. View and Widget entries are empty; Text
// entries capture the current content string.
func (n *Node) ToCacheEntry() *CacheEntry {
	entry := &CacheEntry{Kind: n.kind}
	if n.kind == KindText {
		entry.Content = n.content
	}
	return entry
}

// ApplyCacheEntry restores the node's renderable state from entry. It
// panics if entry was captured from a differently-kinded node, which
// spec §9 calls a bug rather than a recoverable condition.
func (n *Node) ApplyCacheEntry(entry *CacheEntry) {
	if entry.Kind != n.kind {
		panic(fmt.Sprintf("graph: cache entry kind %s does not match node %d kind %s", entry.Kind, n.id, n.kind))
	}
	if n.kind == KindText {
		n.content = entry.Content
	}
}
