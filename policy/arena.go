// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import "fmt"

// NodeRef is an opaque handle to a node in an Arena.  Handles remain valid
// until the arena is reset.
type NodeRef int32

// NilRef is the handle value that refers to no node.
const NilRef NodeRef = -1

// DefaultArenaCapacity is the node capacity used by NewArena when the caller
// passes a non-positive capacity.  A descriptor template allocates one node
// per fragment, so this comfortably fits any template of realistic size
// while still bounding allocation.
const DefaultArenaCapacity = 128

// Arena is a fixed-capacity bump allocator for policy nodes.  All nodes of a
// parse live in a single arena, individual nodes are never freed, and the
// whole arena is discarded or reset as a unit between independent parses.
type Arena struct {
	nodes []Node
	limit int
}

// NewArena returns an empty arena that can hold up to capacity nodes.  A
// non-positive capacity selects DefaultArenaCapacity.
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultArenaCapacity
	}
	return &Arena{
		nodes: make([]Node, 0, capacity),
		limit: capacity,
	}
}

// alloc reserves the next node slot.  Allocation requests beyond the fixed
// capacity fail; there is no partial allocation.
func (a *Arena) alloc() (NodeRef, *Node, error) {
	if len(a.nodes) >= a.limit {
		return NilRef, nil, parseError(ErrCapacity, fmt.Sprintf(
			"node arena exhausted (capacity %d)", a.limit))
	}
	a.nodes = append(a.nodes, Node{Script: [3]NodeRef{NilRef, NilRef, NilRef}})
	ref := NodeRef(len(a.nodes) - 1)
	return ref, &a.nodes[ref], nil
}

// Node returns the node a handle refers to.  The pointer is valid until the
// next call to Reset.  It panics if ref was not returned by this arena,
// mirroring how out-of-range slice indexing is treated.
func (a *Arena) Node(ref NodeRef) *Node {
	return &a.nodes[ref]
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Reset discards all nodes at once so the arena can be reused for an
// independent parse.  Outstanding handles and node pointers become invalid.
func (a *Arena) Reset() {
	a.nodes = a.nodes[:0]
}
