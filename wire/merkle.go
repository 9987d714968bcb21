// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Merkle tree of the key information vector, RFC 6962 style: leaves are
// hashed with a 0x00 prefix and interior nodes with a 0x01 prefix, which
// prevents a leaf from being reinterpreted as an interior node.  Unlike the
// bitcoin transaction tree, an odd node is not paired with itself; the tree
// splits at the largest power of two smaller than the element count.

// ElementHash returns the leaf hash of one element of a Merkleized list,
// sha256(0x00 || element).
func ElementHash(element []byte) chainhash.Hash {
	buf := make([]byte, 0, len(element)+1)
	buf = append(buf, 0x00)
	buf = append(buf, element...)
	return chainhash.HashH(buf)
}

// nodeHash returns the hash of an interior node with the given subtree
// roots, sha256(0x01 || left || right).
func nodeHash(left, right chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, 1+2*chainhash.HashSize)
	buf = append(buf, 0x01)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return chainhash.HashH(buf)
}

// merkleRoot returns the root over the given leaf hashes.  A single leaf is
// its own root.
func merkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 1 {
		return leaves[0]
	}

	// Split at the largest power of two smaller than the leaf count.
	split := 1
	for split*2 < len(leaves) {
		split *= 2
	}
	return nodeHash(merkleRoot(leaves[:split]), merkleRoot(leaves[split:]))
}

// KeysMerkleRoot returns the root of the Merkle tree over a key information
// vector, committing to both the content and the order of the keys.  The
// root of an empty vector is all zeros.
func KeysMerkleRoot(keysInfo []string) chainhash.Hash {
	if len(keysInfo) == 0 {
		return chainhash.Hash{}
	}

	leaves := make([]chainhash.Hash, len(keysInfo))
	for i, keyInfo := range keysInfo {
		leaves[i] = ElementHash([]byte(keyInfo))
	}
	return merkleRoot(leaves)
}
