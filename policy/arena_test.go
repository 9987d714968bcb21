// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestArenaAlloc tests bump allocation up to the fixed capacity.
func TestArenaAlloc(t *testing.T) {
	const capacity = 4
	arena := NewArena(capacity)
	require.Equal(t, 0, arena.Len())

	refs := make([]NodeRef, 0, capacity)
	for i := 0; i < capacity; i++ {
		ref, node, err := arena.alloc()
		require.NoError(t, err)
		require.Equal(t, NodeRef(i), ref)
		require.NotNil(t, node)

		// Child slots start out unset.
		require.Equal(t, [3]NodeRef{NilRef, NilRef, NilRef},
			node.Script)
		refs = append(refs, ref)
	}
	require.Equal(t, capacity, arena.Len())

	// The capacity is a hard bound.
	_, _, err := arena.alloc()
	require.True(t, IsErrorCode(err, ErrCapacity), "got %v", err)

	// Earlier handles stay valid while the arena fills up.
	arena.Node(refs[0]).Fragment = FragOlder
	require.Equal(t, FragOlder, arena.Node(refs[0]).Fragment)
}

// TestArenaReset tests wholesale reuse between independent parses.
func TestArenaReset(t *testing.T) {
	arena := NewArena(8)

	_, err := Parse(arena, "sh(wsh(pkh(@0)))")
	require.NoError(t, err)
	require.Equal(t, 3, arena.Len())

	arena.Reset()
	require.Equal(t, 0, arena.Len())

	root, err := Parse(arena, "pkh(@1)")
	require.NoError(t, err)
	require.Equal(t, NodeRef(0), root)
	require.Equal(t, uint32(1), arena.Node(root).KeyIndex)
}

// TestArenaExhaustionDuringParse makes sure a template that needs more nodes
// than the arena holds fails with a capacity error and not a panic.
func TestArenaExhaustionDuringParse(t *testing.T) {
	arena := NewArena(2)
	_, err := Parse(arena, "sh(wsh(pkh(@0)))")
	require.True(t, IsErrorCode(err, ErrCapacity), "got %v", err)
}

// TestArenaDefaultCapacity tests the non-positive capacity fallback.
func TestArenaDefaultCapacity(t *testing.T) {
	arena := NewArena(0)
	for i := 0; i < DefaultArenaCapacity; i++ {
		_, _, err := arena.alloc()
		require.NoError(t, err)
	}
	_, _, err := arena.alloc()
	require.True(t, IsErrorCode(err, ErrCapacity), "got %v", err)
}
