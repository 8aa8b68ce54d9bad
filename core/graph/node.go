package graph

import (
	"sync/atomic"

	"dbgraph/core/kmer"
)

// MaxOccurrence is where a node's occurrence counter saturates.
const MaxOccurrence = 255

// Side selects which end of the stored k-mer an extension grows from.
type Side uint8

const (
	// Right extensions append a base to the stored k-mer.
	Right Side = iota
	// Left extensions prepend a base to the stored k-mer.
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

const (
	flagDeleted uint32 = 1 << iota
	flagMarked
)

// Node is one canonical k-mer.
type Node struct {
	value  uint64
	serial uint64
	count  atomic.Uint32
	flags  atomic.Uint32

	// links[side*4+code]; written once by the link pass.
	links   [8]*Node
	flipped uint8
}

// Extension is a one-base overlap with a neighbouring node. Flipped means
// the neighbour stores the reverse complement of the overlapping k-mer.
type Extension struct {
	Node    *Node
	Side    Side
	Base    byte
	Flipped bool
}

// Value is the canonical packed k-mer.
func (n *Node) Value() uint64 { return n.value }

// Serial is the creation order of the node within its builder, from 1.
func (n *Node) Serial() uint64 { return n.serial }

// Count is the saturating occurrence counter.
func (n *Node) Count() int { return int(n.count.Load()) }

func (n *Node) Deleted() bool         { return n.flags.Load()&flagDeleted != 0 }
func (n *Node) MarkedForDelete() bool { return n.flags.Load()&flagMarked != 0 }

// MarkForDelete flags the node for the next Compact. It reports whether the
// flag was newly set.
func (n *Node) MarkForDelete() bool { return n.setFlag(flagMarked) }

func (n *Node) markDeleted() bool { return n.setFlag(flagDeleted) }

func (n *Node) setFlag(f uint32) bool {
	for {
		old := n.flags.Load()
		if old&f != 0 {
			return false
		}
		if n.flags.CompareAndSwap(old, old|f) {
			return true
		}
	}
}

func (n *Node) observe() {
	for {
		c := n.count.Load()
		if c >= MaxOccurrence {
			return
		}
		if n.count.CompareAndSwap(c, c+1) {
			return
		}
	}
}

// Extension returns the link on side for base, if any.
func (n *Node) Extension(side Side, base byte) (Extension, bool) {
	code, ok := kmer.Code(base)
	if !ok {
		return Extension{}, false
	}
	slot := int(side)*4 + int(code)
	if n.links[slot] == nil {
		return Extension{}, false
	}
	return n.extensionAt(slot), true
}

func (n *Node) extensionAt(slot int) Extension {
	return Extension{
		Node:    n.links[slot],
		Side:    Side(slot / 4),
		Base:    kmer.Symbol(uint8(slot % 4)),
		Flipped: n.flipped&(1<<slot) != 0,
	}
}

// Extensions lists all links, right side first, bases in A,C,G,T order.
func (n *Node) Extensions() []Extension {
	var out []Extension
	for slot, m := range n.links {
		if m != nil {
			out = append(out, n.extensionAt(slot))
		}
	}
	return out
}

// Degree counts the links on one side.
func (n *Node) Degree(side Side) int {
	d := 0
	for _, m := range n.links[int(side)*4 : int(side)*4+4] {
		if m != nil {
			d++
		}
	}
	return d
}

// Successor walks one base forward from n. forward says whether the current
// walk reads n's stored k-mer (true) or its reverse complement (false); the
// returned nextForward says the same for the neighbour.
func (n *Node) Successor(forward bool, base byte) (next *Node, nextForward bool, ok bool) {
	code, valid := kmer.Code(base)
	if !valid {
		return nil, false, false
	}
	if forward {
		slot := int(Right)*4 + int(code)
		if next = n.links[slot]; next == nil {
			return nil, false, false
		}
		return next, n.flipped&(1<<slot) == 0, true
	}
	// Appending b to rc(s) is the reverse complement of prepending comp(b) to s.
	slot := int(Left)*4 + int(kmer.ComplementCode(code))
	if next = n.links[slot]; next == nil {
		return nil, false, false
	}
	return next, n.flipped&(1<<slot) != 0, true
}
