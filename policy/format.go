// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Format reconstructs the descriptor template text of the subtree rooted at
// ref.  Formatting a parsed template yields the input text again, with one
// normalization: consecutive wrappers are written as a single run with one
// ':' (a:s:X becomes as:X).
func Format(arena *Arena, ref NodeRef) string {
	var sb strings.Builder
	formatNode(arena, ref, &sb)
	return sb.String()
}

func formatNode(arena *Arena, ref NodeRef, sb *strings.Builder) {
	node := arena.Node(ref)

	// Collapse a wrapper chain into one letter run.
	switch node.Fragment {
	case FragWrapA, FragWrapS, FragWrapC, FragWrapT, FragWrapD, FragWrapV,
		FragWrapJ, FragWrapN, FragWrapL, FragWrapU:

		for {
			sb.WriteString(node.Fragment.String())
			child := arena.Node(node.Script[0])
			switch child.Fragment {
			case FragWrapA, FragWrapS, FragWrapC, FragWrapT,
				FragWrapD, FragWrapV, FragWrapJ, FragWrapN,
				FragWrapL, FragWrapU:

				node = child
				continue
			}
			sb.WriteByte(':')
			formatNode(arena, node.Script[0], sb)
			return
		}
	}

	switch node.Fragment {
	case Frag0, Frag1:
		sb.WriteString(node.Fragment.String())

	case FragSH, FragWSH:
		sb.WriteString(node.Fragment.String())
		sb.WriteByte('(')
		formatNode(arena, node.Script[0], sb)
		sb.WriteByte(')')

	case FragPK, FragPKH, FragPK_K, FragPK_H, FragWPKH, FragTR:
		fmt.Fprintf(sb, "%s(@%d)", node.Fragment, node.KeyIndex)

	case FragMulti, FragSortedMulti:
		fmt.Fprintf(sb, "%s(%d", node.Fragment, node.K)
		for _, idx := range node.KeyIndexes {
			fmt.Fprintf(sb, ",@%d", idx)
		}
		sb.WriteByte(')')

	case FragOlder, FragAfter:
		fmt.Fprintf(sb, "%s(%d)", node.Fragment, node.Num)

	case FragSHA256, FragHASH256, FragRIPEMD160, FragHASH160:
		fmt.Fprintf(sb, "%s(%s)", node.Fragment,
			hex.EncodeToString(node.Hash))

	case FragThresh:
		fmt.Fprintf(sb, "thresh(%d", node.K)
		for _, child := range node.Children {
			sb.WriteByte(',')
			formatNode(arena, child, sb)
		}
		sb.WriteByte(')')

	default:
		sb.WriteString(node.Fragment.String())
		sb.WriteByte('(')
		for i, child := range node.Script {
			if child == NilRef {
				break
			}
			if i > 0 {
				sb.WriteByte(',')
			}
			formatNode(arena, child, sb)
		}
		sb.WriteByte(')')
	}
}
