// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

// Node is a single parsed fragment of a descriptor template.  Which fields
// are meaningful depends on the Fragment:
//
//	Frag0, Frag1                                    no payload
//	FragSH, FragWSH, wrappers                       Script[0]
//	FragAnd_*, FragOr_*                             Script[0], Script[1]
//	FragAndOr                                       Script[0..2]
//	FragThresh                                      K, Children
//	FragMulti, FragSortedMulti                      K, KeyIndexes
//	FragPK, FragPKH, FragPK_K, FragPK_H,
//	FragWPKH, FragTR                                KeyIndex
//	FragSHA256, FragHASH256                         Hash (32 bytes)
//	FragRIPEMD160, FragHASH160                      Hash (20 bytes)
//	FragOlder, FragAfter                            Num
//
// Nodes are built bottom-up during a parse and never mutated afterwards.
type Node struct {
	// Fragment is the operator this node represents.
	Fragment Fragment

	// Type carries the miniscript type and modifier flags computed for
	// this node.  It is the zero value for fragments that are not
	// miniscript (sh, wsh, wpkh, tr, sortedmulti).
	Type TypeInfo

	// Script holds the handles of fixed-arity children, in source order.
	// Unused slots are NilRef.
	Script [3]NodeRef

	// Children holds the handles of the variable-length child list of
	// thresh, in source order.
	Children []NodeRef

	// K is the threshold of multi, sortedmulti and thresh.
	K uint32

	// Num is the locktime argument of older and after.
	Num uint32

	// KeyIndex is the key placeholder index of single-key fragments.
	KeyIndex uint32

	// KeyIndexes holds the key placeholder indices of multi and
	// sortedmulti, in source order.
	KeyIndexes []uint32

	// Hash is the hash image of the hash leaves.
	Hash []byte
}

// MaxKeyIndex returns the largest key placeholder index referenced by the
// subtree rooted at ref, and whether the subtree references any key at all.
// Callers use it to validate a parsed template against the length of the
// externally supplied key information vector.
func MaxKeyIndex(arena *Arena, ref NodeRef) (uint32, bool) {
	node := arena.Node(ref)

	var max uint32
	found := false
	take := func(idx uint32) {
		if !found || idx > max {
			max = idx
		}
		found = true
	}

	switch node.Fragment {
	case FragPK, FragPKH, FragPK_K, FragPK_H, FragWPKH, FragTR:
		take(node.KeyIndex)

	case FragMulti, FragSortedMulti:
		for _, idx := range node.KeyIndexes {
			take(idx)
		}
	}

	for _, child := range node.Script {
		if child == NilRef {
			continue
		}
		if idx, ok := MaxKeyIndex(arena, child); ok {
			take(idx)
		}
	}
	for _, child := range node.Children {
		if idx, ok := MaxKeyIndex(arena, child); ok {
			take(idx)
		}
	}
	return max, found
}
