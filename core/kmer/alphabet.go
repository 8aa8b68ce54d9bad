// core/kmer/alphabet.go
package kmer

// 2-bit base codes. The complement of a code is ^code & 3.
const (
	CodeA uint8 = 0
	CodeC uint8 = 1
	CodeG uint8 = 2
	CodeT uint8 = 3
)

const noCode = 0xFF

var (
	codeOf     [256]uint8
	complement [256]byte
	symbols    = [4]byte{'A', 'C', 'G', 'T'}
)

func init() {
	for i := range codeOf {
		codeOf[i] = noCode
	}
	codeOf['A'], codeOf['a'] = CodeA, CodeA
	codeOf['C'], codeOf['c'] = CodeC, CodeC
	codeOf['G'], codeOf['g'] = CodeG, CodeG
	codeOf['T'], codeOf['t'] = CodeT, CodeT

	complement['A'], complement['C'], complement['G'], complement['T'] = 'T', 'G', 'C', 'A'
	complement['a'], complement['c'], complement['g'], complement['t'] = 't', 'g', 'c', 'a'
}

// Code maps a base (case-insensitive) to its 2-bit code.
func Code(b byte) (uint8, bool) {
	c := codeOf[b]
	return c, c != noCode
}

// Symbol maps a 2-bit code back to an upper-case base.
func Symbol(code uint8) byte { return symbols[code&3] }

// ComplementCode returns the Watson-Crick partner of a 2-bit code.
func ComplementCode(code uint8) uint8 { return ^code & 3 }

// Complement returns the Watson-Crick partner of an A/C/G/T byte, or 'N'
// for anything else.
func Complement(b byte) byte {
	c := complement[b]
	if c == 0 {
		return 'N'
	}
	return c
}

// IsDNA reports whether every byte of seq is A, C, G or T (any case).
func IsDNA(seq []byte) bool {
	for _, b := range seq {
		if codeOf[b] == noCode {
			return false
		}
	}
	return true
}

// RevComp returns the reverse complement of seq. Non-ACGT bytes become 'N'.
func RevComp(seq []byte) []byte {
	n := len(seq)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = Complement(seq[n-1-i])
	}
	return out
}
