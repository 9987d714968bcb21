// Copyright (c) 2024 The hwsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import "fmt"

// BaseType is one of the four mutually exclusive miniscript base types.
type BaseType byte

const (
	// TypeB is the base expression type.  It pushes a boolean on the
	// stack when satisfied.
	TypeB BaseType = iota

	// TypeV is the verify expression type.  It aborts on failure and
	// pushes nothing.
	TypeV

	// TypeK is the key expression type.  It pushes a public key.
	TypeK

	// TypeW is the wrapped expression type.  It expects its input one
	// stack element down.
	TypeW
)

// String returns the base type as the letter used in miniscript notation.
func (b BaseType) String() string {
	switch b {
	case TypeB:
		return "B"
	case TypeV:
		return "V"
	case TypeK:
		return "K"
	case TypeW:
		return "W"
	}
	return fmt.Sprintf("Unknown BaseType (%d)", int(b))
}

// TypeInfo carries the miniscript type and modifier flags of a node.  Base
// is meaningful only if Miniscript is true.  The five modifiers are
// independent booleans: z means the fragment consumes zero witness elements,
// o exactly one, n a nonzero first element, d that a dissatisfaction exists,
// and u that a satisfaction leaves exactly 1 on the stack.
type TypeInfo struct {
	Miniscript bool
	Base       BaseType

	Z, O, N, D, U bool
}

// String returns the base type letter followed by the set modifier letters,
// e.g. "Bzud", or the empty string for a non-miniscript node.
func (t TypeInfo) String() string {
	if !t.Miniscript {
		return ""
	}
	s := t.Base.String()
	if t.Z {
		s += "z"
	}
	if t.O {
		s += "o"
	}
	if t.N {
		s += "n"
	}
	if t.D {
		s += "d"
	}
	if t.U {
		s += "u"
	}
	return s
}

// expectBase returns an ErrType parse error unless the child type is
// miniscript with the wanted base type.
func expectBase(child TypeInfo, want BaseType, frag Fragment, arg string) error {
	if !child.Miniscript || child.Base != want {
		return parseError(ErrType, fmt.Sprintf(
			"%s: %s argument must be of type %s", frag, arg, want))
	}
	return nil
}

// expectDissatisfiableUnit returns an ErrType parse error unless the child
// satisfies both the d and u modifiers.
func expectDissatisfiableUnit(child TypeInfo, frag Fragment, arg string) error {
	if !child.D || !child.U {
		return parseError(ErrType, fmt.Sprintf(
			"%s: %s argument must have modifiers d and u", frag, arg))
	}
	return nil
}

// computeType derives the type and modifier flags of a node from its
// children according to the composition law of its fragment, validating the
// fragment's preconditions.  It must be called bottom-up: all children of
// the node must already carry their final flags.
func computeType(arena *Arena, node *Node) error {
	switch node.Fragment {
	case FragSH, FragWSH, FragWPKH, FragTR, FragSortedMulti:
		// Descriptor-only fragments carry no miniscript type.
		node.Type = TypeInfo{}

	case Frag0:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			Z: true, D: true, U: true}

	case Frag1:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			Z: true, U: true}

	case FragPK:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			O: true, N: true, D: true, U: true}

	case FragPKH:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			N: true, D: true, U: true}

	case FragPK_K:
		node.Type = TypeInfo{Miniscript: true, Base: TypeK,
			O: true, N: true, D: true, U: true}

	case FragPK_H:
		node.Type = TypeInfo{Miniscript: true, Base: TypeK,
			N: true, D: true, U: true}

	case FragSHA256, FragHASH256, FragRIPEMD160, FragHASH160:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			Z: true, O: true, D: true, U: true}

	case FragOlder, FragAfter:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB, Z: true}

	case FragMulti:
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			N: true, D: true, U: true}

	case FragAndOr:
		x := arena.Node(node.Script[0]).Type
		y := arena.Node(node.Script[1]).Type
		z := arena.Node(node.Script[2]).Type
		if err := expectBase(x, TypeB, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectDissatisfiableUnit(x, node.Fragment, "first"); err != nil {
			return err
		}
		if !y.Miniscript || y.Base == TypeW || !z.Miniscript ||
			z.Base != y.Base {

			return parseError(ErrType, fmt.Sprintf("%s: second and "+
				"third arguments must have the same type B, V or K",
				node.Fragment))
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       y.Base,
			Z:          x.Z && y.Z && z.Z,
			O:          (x.Z && y.O && z.O) || (x.O && y.Z && z.Z),
			D:          z.D,
			U:          y.U && z.U,
		}

	case FragAnd_V:
		x := arena.Node(node.Script[0]).Type
		y := arena.Node(node.Script[1]).Type
		if err := expectBase(x, TypeV, node.Fragment, "first"); err != nil {
			return err
		}
		if !y.Miniscript || y.Base == TypeW {
			return parseError(ErrType, fmt.Sprintf(
				"%s: second argument must be of type B, V or K",
				node.Fragment))
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       y.Base,
			Z:          x.Z && y.Z,
			O:          (x.Z && y.O) || (x.O && y.Z),
			N:          x.N || (x.Z && y.N),
			U:          y.U,
		}

	case FragAnd_B:
		x := arena.Node(node.Script[0]).Type
		y := arena.Node(node.Script[1]).Type
		if err := expectBase(x, TypeB, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectBase(y, TypeW, node.Fragment, "second"); err != nil {
			return err
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       TypeB,
			Z:          x.Z && y.Z,
			O:          (x.Z && y.O) || (x.O && y.Z),
			N:          x.N || (x.Z && y.N),
			D:          x.D && y.D,
			U:          y.U,
		}

	case FragAnd_N:
		x := arena.Node(node.Script[0]).Type
		y := arena.Node(node.Script[1]).Type
		if err := expectBase(x, TypeB, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectDissatisfiableUnit(x, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectBase(y, TypeB, node.Fragment, "second"); err != nil {
			return err
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       TypeB,
			Z:          x.Z && y.Z,
			O:          x.O && y.Z,
			D:          true,
			U:          y.U,
		}

	case FragOr_B:
		x := arena.Node(node.Script[0]).Type
		z := arena.Node(node.Script[1]).Type
		if err := expectBase(x, TypeB, node.Fragment, "first"); err != nil {
			return err
		}
		if !x.D {
			return parseError(ErrType, fmt.Sprintf(
				"%s: first argument must have modifier d",
				node.Fragment))
		}
		if err := expectBase(z, TypeW, node.Fragment, "second"); err != nil {
			return err
		}
		if !z.D {
			return parseError(ErrType, fmt.Sprintf(
				"%s: second argument must have modifier d",
				node.Fragment))
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       TypeB,
			Z:          x.Z && z.Z,
			O:          (x.Z && z.O) || (x.O && z.Z),
			D:          true,
			U:          true,
		}

	case FragOr_C:
		x := arena.Node(node.Script[0]).Type
		z := arena.Node(node.Script[1]).Type
		if err := expectBase(x, TypeB, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectDissatisfiableUnit(x, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectBase(z, TypeV, node.Fragment, "second"); err != nil {
			return err
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       TypeV,
			Z:          x.Z && z.Z,
			O:          x.O && z.O,
		}

	case FragOr_D:
		x := arena.Node(node.Script[0]).Type
		z := arena.Node(node.Script[1]).Type
		if err := expectBase(x, TypeB, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectDissatisfiableUnit(x, node.Fragment, "first"); err != nil {
			return err
		}
		if err := expectBase(z, TypeB, node.Fragment, "second"); err != nil {
			return err
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       TypeB,
			Z:          x.Z && z.Z,
			O:          x.O && z.O,
			D:          z.D,
			U:          z.U,
		}

	case FragOr_I:
		x := arena.Node(node.Script[0]).Type
		z := arena.Node(node.Script[1]).Type
		if !x.Miniscript || x.Base == TypeW || !z.Miniscript ||
			z.Base != x.Base {

			return parseError(ErrType, fmt.Sprintf("%s: arguments "+
				"must have the same type B, V or K", node.Fragment))
		}
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       x.Base,
			O:          x.Z && z.Z,
			D:          x.D || z.D,
			U:          x.U && z.U,
		}

	case FragThresh:
		countZ, countO := 0, 0
		for i, ref := range node.Children {
			child := arena.Node(ref).Type
			want := TypeW
			arg := fmt.Sprintf("argument #%d", i+1)
			if i == 0 {
				want = TypeB
			}
			if err := expectBase(child, want, node.Fragment, arg); err != nil {
				return err
			}
			if err := expectDissatisfiableUnit(child, node.Fragment, arg); err != nil {
				return err
			}
			if child.Z {
				countZ++
			}
			if child.O {
				countO++
			}
		}
		n := len(node.Children)
		node.Type = TypeInfo{
			Miniscript: true,
			Base:       TypeB,
			Z:          countZ == n,
			O:          countZ == n-1 && countO == 1,
		}

	case FragWrapA:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeB, node.Fragment, "wrapped"); err != nil {
			return err
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeW, D: x.D, U: x.U}

	case FragWrapS:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeB, node.Fragment, "wrapped"); err != nil {
			return err
		}
		if !x.O {
			return parseError(ErrType, fmt.Sprintf(
				"%s: wrapped argument must have modifier o",
				node.Fragment))
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeW, D: x.D, U: x.U}

	case FragWrapC:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeK, node.Fragment, "wrapped"); err != nil {
			return err
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			O: x.O, N: x.N, D: x.D, U: true}

	case FragWrapT:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeV, node.Fragment, "wrapped"); err != nil {
			return err
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			Z: x.Z, O: x.O, N: x.N, U: true}

	case FragWrapD:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeV, node.Fragment, "wrapped"); err != nil {
			return err
		}
		if !x.Z {
			return parseError(ErrType, fmt.Sprintf(
				"%s: wrapped argument must have modifier z",
				node.Fragment))
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			O: true, N: true, D: true}

	case FragWrapV:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeB, node.Fragment, "wrapped"); err != nil {
			return err
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeV,
			Z: x.Z, O: x.O, N: x.N}

	case FragWrapJ:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeB, node.Fragment, "wrapped"); err != nil {
			return err
		}
		if !x.N {
			return parseError(ErrType, fmt.Sprintf(
				"%s: wrapped argument must have modifier n",
				node.Fragment))
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			O: x.O, N: true, D: true, U: x.U}

	case FragWrapN:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeB, node.Fragment, "wrapped"); err != nil {
			return err
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			Z: x.Z, O: x.O, N: x.N, D: x.D, U: true}

	case FragWrapL, FragWrapU:
		x := arena.Node(node.Script[0]).Type
		if err := expectBase(x, TypeB, node.Fragment, "wrapped"); err != nil {
			return err
		}
		node.Type = TypeInfo{Miniscript: true, Base: TypeB,
			O: x.Z, D: true, U: x.U}

	default:
		return parseError(ErrType, fmt.Sprintf(
			"no composition rule for fragment %s", node.Fragment))
	}
	return nil
}
