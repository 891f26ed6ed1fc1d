package graph

import (
	"fmt"
	"strings"
)

// String returns a one-line textual representation of the node,
// mirroring original_source's Node::to_string/repr contract.
func (n *Node) String() string {
	if n.kind == KindText {
		return fmt.Sprintf("%s(%d)=%q", n.kind, n.id, n.content)
	}
	return fmt.Sprintf("%s(%d)", n.kind, n.id)
}

// Describe renders a BFS-ordered, human-readable dump of the graph's
// current state: each line is "<child count>|<very-dirty> <repr>",
// matching the "print" command's output shape in
// original_source/src/solution/main.cc.
func Describe(g *Graph) string {
	var b strings.Builder
	for n := range g.TraverseBFS() {
		veryDirty := 0
		if n.VeryDirty() {
			veryDirty = 1
		}
		fmt.Fprintf(&b, "%d|%d %s\n", n.ChildCount(), veryDirty, n)
	}
	return strings.TrimRight(b.String(), "\n")
}
