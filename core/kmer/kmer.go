// Package kmer packs fixed-length DNA windows into uint64 values, two bits
// per base, most significant base first (A=0, C=1, G=2, T=3).
//
// A k-mer and its reverse complement describe the same double-stranded
// locus. Canonicalize picks the numerically larger of the two encodings as
// the representative and reports which strand the input was on. Palindromes
// (a value equal to its own reverse complement) always report Forward=true.
package kmer

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// MinLength is the shortest k accepted for assembly.
	MinLength = 12
	// MaxLength is the longest k that fits a uint64 at two bits per base
	// while leaving the top bits clear.
	MaxLength = 31
)

var (
	// ErrInvalidSymbol reports a byte outside A/C/G/T.
	ErrInvalidSymbol = errors.New("invalid DNA symbol")

	// ErrInvalidLength reports a k outside [1, MaxLength].
	ErrInvalidLength = errors.New("invalid k-mer length")

	// ErrOutOfRange reports a window that runs past the end of the sequence.
	ErrOutOfRange = errors.New("k-mer window out of range")
)

// SymbolError records the first non-ACGT byte seen by Encode.
type SymbolError struct {
	Pos    int
	Symbol byte
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v %q at position %d", ErrInvalidSymbol, e.Symbol, e.Pos)
}

func (e *SymbolError) Is(target error) bool { return target == ErrInvalidSymbol }

// Canonical is the strand-independent form of a k-mer. Forward is true when
// the observed orientation is the stored Value.
type Canonical struct {
	Value   uint64
	Forward bool
}

// ValidLength reports whether k can be packed by this package.
func ValidLength(k int) bool { return k >= 1 && k <= MaxLength }

// Codec is bound to a single k. Its methods do no length validation.
type Codec struct {
	k     int
	mask  uint64
	shift uint // bit offset of the first (most significant) base
}

// NewCodec returns a codec for k-mers of length k.
func NewCodec(k int) (Codec, error) {
	if !ValidLength(k) {
		return Codec{}, errors.Wrapf(ErrInvalidLength, "k=%d (want 1..%d)", k, MaxLength)
	}
	return Codec{
		k:     k,
		mask:  (uint64(1) << (2 * uint(k))) - 1,
		shift: 2 * uint(k-1),
	}, nil
}

// K is the k-mer length.
func (c Codec) K() int { return c.k }

// Mask keeps the low 2k bits of a packed value.
func (c Codec) Mask() uint64 { return c.mask }

// Encode packs seq[offset:offset+k].
func (c Codec) Encode(seq []byte, offset int) (uint64, error) {
	if offset < 0 || offset+c.k > len(seq) {
		return 0, errors.Wrapf(ErrOutOfRange, "offset %d, k %d, len %d", offset, c.k, len(seq))
	}
	var v uint64
	for i := offset; i < offset+c.k; i++ {
		code, ok := Code(seq[i])
		if !ok {
			return 0, &SymbolError{Pos: i, Symbol: seq[i]}
		}
		v = v<<2 | uint64(code)
	}
	return v, nil
}

// Append drops the first base of v and appends code at the end.
func (c Codec) Append(v uint64, code uint8) uint64 {
	return (v<<2 | uint64(code&3)) & c.mask
}

// Prepend drops the last base of v and inserts code at the front.
func (c Codec) Prepend(v uint64, code uint8) uint64 {
	return v>>2 | uint64(code&3)<<c.shift
}

// ReverseComplement reverses the 2-bit groups of v and complements each.
func (c Codec) ReverseComplement(v uint64) uint64 {
	var out uint64
	for i := 0; i < c.k; i++ {
		out = out<<2 | (^v & 3)
		v >>= 2
	}
	return out
}

// Canonicalize returns the larger of v and its reverse complement.
func (c Codec) Canonicalize(v uint64) Canonical {
	return c.Choose(v, c.ReverseComplement(v))
}

// Choose is Canonicalize for callers that already track both strands
// (rolling encoders).
func (c Codec) Choose(fwd, rc uint64) Canonical {
	if fwd >= rc {
		return Canonical{Value: fwd, Forward: true}
	}
	return Canonical{Value: rc, Forward: false}
}

// Decode is the inverse of Encode.
func (c Codec) Decode(v uint64) []byte {
	out := make([]byte, c.k)
	for i := c.k - 1; i >= 0; i-- {
		out[i] = symbols[v&3]
		v >>= 2
	}
	return out
}

func (c Codec) String(v uint64) string { return string(c.Decode(v)) }

// FirstCode returns the code of the first base of v read on the stored
// strand (forward) or on its reverse complement.
func (c Codec) FirstCode(v uint64, forward bool) uint8 {
	if forward {
		return uint8(v>>c.shift) & 3
	}
	return ComplementCode(uint8(v) & 3)
}

// LastCode is FirstCode for the last base.
func (c Codec) LastCode(v uint64, forward bool) uint8 {
	if forward {
		return uint8(v) & 3
	}
	return ComplementCode(uint8(v>>c.shift) & 3)
}

func (c Codec) FirstSymbol(v uint64, forward bool) byte { return Symbol(c.FirstCode(v, forward)) }
func (c Codec) LastSymbol(v uint64, forward bool) byte  { return Symbol(c.LastCode(v, forward)) }

/* -------------------------------------------------------------------------- */
/*                     length-validating package helpers                      */
/* -------------------------------------------------------------------------- */

// The package-level helpers enforce the assembly range [MinLength, MaxLength];
// use NewCodec directly for shorter k.
func codecFor(length int) (Codec, error) {
	if length < MinLength || length > MaxLength {
		return Codec{}, errors.Wrapf(ErrInvalidLength, "k=%d (want %d..%d)", length, MinLength, MaxLength)
	}
	return NewCodec(length)
}

// Encode packs length symbols of seq starting at offset.
func Encode(seq []byte, offset, length int) (uint64, error) {
	c, err := codecFor(length)
	if err != nil {
		return 0, err
	}
	return c.Encode(seq, offset)
}

func ReverseComplement(v uint64, length int) (uint64, error) {
	c, err := codecFor(length)
	if err != nil {
		return 0, err
	}
	return c.ReverseComplement(v), nil
}

func Canonicalize(v uint64, length int) (Canonical, error) {
	c, err := codecFor(length)
	if err != nil {
		return Canonical{}, err
	}
	return c.Canonicalize(v), nil
}

func Decode(v uint64, length int) ([]byte, error) {
	c, err := codecFor(length)
	if err != nil {
		return nil, err
	}
	return c.Decode(v), nil
}

func FirstSymbol(v uint64, length int, forward bool) (byte, error) {
	c, err := codecFor(length)
	if err != nil {
		return 0, err
	}
	return c.FirstSymbol(v, forward), nil
}

func LastSymbol(v uint64, length int, forward bool) (byte, error) {
	c, err := codecFor(length)
	if err != nil {
		return 0, err
	}
	return c.LastSymbol(v, forward), nil
}
