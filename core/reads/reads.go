// Package reads adapts sequence collections into the read stream consumed
// by the graph builder. Any biogo seq.Sequence (linear.Seq, linear.QSeq, ...)
// is a Read.
package reads

import (
	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/seq/linear"
)

// Read is one input sequence. Positions run from 0 to Len()-1.
type Read interface {
	Alphabet() alphabet.Alphabet
	Len() int
	At(int) alphabet.QLetter
}

// Source is a single-pass stream of reads.
type Source interface {
	Next() bool
	Read() Read
	Err() error
}

// IsDNA reports whether r declares a DNA alphabet.
func IsDNA(r Read) bool {
	a := r.Alphabet()
	return a != nil && a.Moltype() == feat.DNA
}

// Letters appends the symbols of r to buf and returns the extended slice.
func Letters(r Read, buf []byte) []byte {
	if s, ok := r.(*linear.Seq); ok {
		for _, l := range s.Seq {
			buf = append(buf, byte(l))
		}
		return buf
	}
	n := r.Len()
	for i := 0; i < n; i++ {
		buf = append(buf, byte(r.At(i).L))
	}
	return buf
}

// HasGap reports whether letters contains the gap symbol of alpha.
func HasGap(alpha alphabet.Alphabet, letters []byte) bool {
	if alpha == nil {
		return false
	}
	gap := byte(alpha.Gap())
	for _, b := range letters {
		if b == gap {
			return true
		}
	}
	return false
}

type sliceSource struct {
	rs  []Read
	pos int
}

// FromSlice streams rs in order.
func FromSlice(rs []Read) Source { return &sliceSource{rs: rs, pos: -1} }

func (s *sliceSource) Next() bool {
	if s.pos+1 >= len(s.rs) {
		s.pos = len(s.rs)
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Read() Read {
	if s.pos < 0 || s.pos >= len(s.rs) {
		return nil
	}
	return s.rs[s.pos]
}

func (s *sliceSource) Err() error { return nil }

// NewDNA wraps raw bases as a DNA read.
func NewDNA(id string, bases string) *linear.Seq {
	return linear.NewSeq(id, alphabet.BytesToLetters([]byte(bases)), alphabet.DNA)
}

// FromStrings streams each string as a DNA read.
func FromStrings(ss ...string) Source {
	rs := make([]Read, len(ss))
	for i, s := range ss {
		rs[i] = NewDNA("", s)
	}
	return FromSlice(rs)
}
