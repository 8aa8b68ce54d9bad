package kmer

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDNA(r *rand.Rand, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = symbols[r.Intn(4)]
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, k := range []int{MinLength, 17, 21, MaxLength} {
		seq := randomDNA(r, 200)
		for i := 0; i+k <= len(seq); i++ {
			v, err := Encode(seq, i, k)
			require.NoError(t, err)
			got, err := Decode(v, k)
			require.NoError(t, err)
			require.Equal(t, string(seq[i:i+k]), string(got), "k=%d offset=%d", k, i)
		}
	}
}

func TestEncodeIsCaseInsensitive(t *testing.T) {
	up, err := Encode([]byte("ACGTACGTACGTAAA"), 0, 15)
	require.NoError(t, err)
	low, err := Encode([]byte("acgtacgtacgtaaa"), 0, 15)
	require.NoError(t, err)
	assert.Equal(t, up, low)
}

func TestEncodeRejectsAmbiguityCodes(t *testing.T) {
	_, err := Encode([]byte("ACGTACGTNCGTA"), 0, 13)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSymbol))

	var se *SymbolError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 8, se.Pos)
	assert.Equal(t, byte('N'), se.Symbol)
}

func TestLengthBounds(t *testing.T) {
	seq := []byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT")
	for _, k := range []int{0, 11, 32, 40} {
		_, err := Encode(seq, 0, k)
		assert.True(t, errors.Is(err, ErrInvalidLength), "k=%d", k)
		_, err = ReverseComplement(0, k)
		assert.True(t, errors.Is(err, ErrInvalidLength), "k=%d", k)
		_, err = Canonicalize(0, k)
		assert.True(t, errors.Is(err, ErrInvalidLength), "k=%d", k)
	}
	_, err := NewCodec(0)
	assert.True(t, errors.Is(err, ErrInvalidLength))
	_, err = NewCodec(3)
	assert.NoError(t, err, "short k is allowed through NewCodec")
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := Encode([]byte("ACGTACGTACGT"), 1, 12)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestReverseComplementMatchesByteRevComp(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	c, err := NewCodec(21)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		s := randomDNA(r, 21)
		v, err := c.Encode(s, 0)
		require.NoError(t, err)
		assert.Equal(t, string(RevComp(s)), c.String(c.ReverseComplement(v)))
		assert.Equal(t, v, c.ReverseComplement(c.ReverseComplement(v)))
	}
}

func TestCanonicalizeBothStrandsAgree(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	c, err := NewCodec(25)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		v, err := c.Encode(randomDNA(r, 25), 0)
		require.NoError(t, err)
		rc := c.ReverseComplement(v)

		a, b := c.Canonicalize(v), c.Canonicalize(rc)
		require.Equal(t, a.Value, b.Value)
		if v == rc {
			continue
		}
		assert.NotEqual(t, a.Forward, b.Forward)
		assert.Equal(t, a.Forward, a.Value == v)
		assert.GreaterOrEqual(t, a.Value, v)
		assert.GreaterOrEqual(t, a.Value, rc)
	}
}

func TestCanonicalizePalindromeIsStable(t *testing.T) {
	c, err := NewCodec(12)
	require.NoError(t, err)
	v, err := c.Encode([]byte("ACGTACGTACGT"), 0)
	require.NoError(t, err)
	require.Equal(t, v, c.ReverseComplement(v))

	for i := 0; i < 5; i++ {
		got := c.Canonicalize(v)
		assert.Equal(t, Canonical{Value: v, Forward: true}, got)
	}
}

func TestFirstLastSymbol(t *testing.T) {
	v, err := Encode([]byte("GATTACAGATTACA"), 0, 14)
	require.NoError(t, err)

	first, err := FirstSymbol(v, 14, true)
	require.NoError(t, err)
	last, err := LastSymbol(v, 14, true)
	require.NoError(t, err)
	assert.Equal(t, byte('G'), first)
	assert.Equal(t, byte('A'), last)

	// reverse complement is TGTAATCTGTAATC
	first, _ = FirstSymbol(v, 14, false)
	last, _ = LastSymbol(v, 14, false)
	assert.Equal(t, byte('T'), first)
	assert.Equal(t, byte('C'), last)
}

func TestRollingMatchesEncode(t *testing.T) {
	seq := []byte("TTGACCATGCAGGTACCATTAGGCCATAGGATTAC")
	c, err := NewCodec(13)
	require.NoError(t, err)

	fwd, err := c.Encode(seq, 0)
	require.NoError(t, err)
	rc := c.ReverseComplement(fwd)
	for i := 1; i+13 <= len(seq); i++ {
		code, _ := Code(seq[i+12])
		fwd = c.Append(fwd, code)
		rc = c.Prepend(rc, ComplementCode(code))

		want, err := c.Encode(seq, i)
		require.NoError(t, err)
		require.Equal(t, want, fwd, "offset %d", i)
		require.Equal(t, c.ReverseComplement(want), rc, "offset %d", i)
		require.Equal(t, c.Canonicalize(want), c.Choose(fwd, rc))
	}
}

func TestRevCompBytes(t *testing.T) {
	assert.Equal(t, "GACT", string(RevComp([]byte("AGTC"))))
	assert.Equal(t, "NACG", string(RevComp([]byte("CGTN"))))
	assert.Nil(t, RevComp(nil))
	assert.True(t, IsDNA([]byte("acgtACGT")))
	assert.False(t, IsDNA([]byte("ACGU")))
}
