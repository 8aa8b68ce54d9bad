package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbgraph/core/kmer"
)

func linked(t *testing.T, k int, seqs ...string) *Builder {
	t.Helper()
	b := newBuilder(t, k)
	build(t, b, seqs...)
	require.NoError(t, b.GenerateLinks(context.Background()))
	require.True(t, b.Stats().LinkGenerationComplete)
	return b
}

// mirror is the extension the neighbour must hold back to n.
func mirror(c kmer.Codec, n *Node, e Extension) (Side, byte) {
	switch {
	case e.Side == Right && !e.Flipped:
		return Left, c.FirstSymbol(n.value, true)
	case e.Side == Right:
		return Right, kmer.Complement(c.FirstSymbol(n.value, true))
	case !e.Flipped:
		return Right, c.LastSymbol(n.value, true)
	default:
		return Left, kmer.Complement(c.LastSymbol(n.value, true))
	}
}

func TestLinksOnTinyGraph(t *testing.T) {
	b := linked(t, 3, "ACGTA")
	cgt, _ := lookup(t, b, "CGT")
	tac, _ := lookup(t, b, "TAC")

	// CGT+A = GTA, stored as TAC
	e, ok := cgt.Extension(Right, 'A')
	require.True(t, ok)
	assert.Same(t, tac, e.Node)
	assert.True(t, e.Flipped)

	// A+CGT = ACG, which is CGT itself on the other strand
	e, ok = cgt.Extension(Left, 'A')
	require.True(t, ok)
	assert.Same(t, cgt, e.Node)
	assert.True(t, e.Flipped)

	assert.Equal(t, 1, cgt.Degree(Right))
	assert.Equal(t, 1, cgt.Degree(Left))
	assert.EqualValues(t, 4, b.Stats().Extensions)
}

func TestSuccessorRecoversReadPath(t *testing.T) {
	b := linked(t, 3, "ACGTA")
	n, fwd := lookup(t, b, "ACG")

	n, fwd, ok := n.Successor(fwd, 'T')
	require.True(t, ok)
	assert.True(t, fwd)
	assert.Equal(t, "CGT", b.Sequence(n))

	n, fwd, ok = n.Successor(fwd, 'A')
	require.True(t, ok)
	assert.False(t, fwd)
	assert.Equal(t, "GTA", string(kmer.RevComp([]byte(b.Sequence(n)))))

	_, _, ok = n.Successor(fwd, 'C')
	assert.False(t, ok)
	_, _, ok = n.Successor(fwd, 'N')
	assert.False(t, ok)
}

func TestSuccessorWalksRandomReads(t *testing.T) {
	const k = 15
	rs := randomReads(9, 50, 120)
	b := linked(t, k, rs...)
	for _, r := range rs {
		n, fwd := lookup(t, b, r[:k])
		for i := k; i < len(r); i++ {
			var ok bool
			n, fwd, ok = n.Successor(fwd, r[i])
			require.True(t, ok, "read %s stuck at %d", r, i)
			got := b.Sequence(n)
			if !fwd {
				got = string(kmer.RevComp([]byte(got)))
			}
			require.Equal(t, r[i-k+1:i+1], got)
		}
	}
}

func TestLinksAreSymmetric(t *testing.T) {
	b := linked(t, 13, randomReads(4, 300, 60)...)
	total := 0
	for n := range b.LiveNodes() {
		for _, e := range n.Extensions() {
			total++
			side, base := mirror(b.codec, n, e)
			back, ok := e.Node.Extension(side, base)
			require.True(t, ok, "%s has no %s/%c back to %s", b.Sequence(e.Node), side, base, b.Sequence(n))
			assert.Same(t, n, back.Node)
			assert.Equal(t, e.Flipped, back.Flipped)
		}
	}
	assert.Positive(t, total)
	assert.EqualValues(t, total, b.Stats().Extensions)
}

func TestLinksSkipDeletedNeighbours(t *testing.T) {
	b := newBuilder(t, 3)
	build(t, b, "ACGTA")
	tac, _ := lookup(t, b, "TAC")
	assert.Equal(t, 1, b.RemoveNodes([]*Node{tac}))

	require.NoError(t, b.GenerateLinks(context.Background()))
	cgt, _ := lookup(t, b, "CGT")
	_, ok := cgt.Extension(Right, 'A')
	assert.False(t, ok)
	assert.Empty(t, tac.Extensions())
	assert.EqualValues(t, 1, b.Stats().Extensions)
}

func TestGenerateLinksOnce(t *testing.T) {
	b := newBuilder(t, 3)
	assert.ErrorIs(t, b.GenerateLinks(context.Background()), ErrBuildIncomplete)
	build(t, b, "ACGTA")
	require.NoError(t, b.GenerateLinks(context.Background()))
	assert.ErrorIs(t, b.GenerateLinks(context.Background()), ErrLinksGenerated)
}

func TestGenerateLinksDesync(t *testing.T) {
	b := newBuilder(t, 3)
	build(t, b, "ACGTA")
	tac, _ := lookup(t, b, "TAC")
	tac.value = 0

	err := b.GenerateLinks(context.Background())
	assert.ErrorIs(t, err, ErrIdentityDesync)
	assert.False(t, b.Stats().LinkGenerationComplete)
}

func TestGenerateLinksCanceled(t *testing.T) {
	b := newBuilder(t, 12)
	build(t, b, randomReads(6, 20, 40)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.GenerateLinks(ctx), context.Canceled)
	assert.False(t, b.Stats().LinkGenerationComplete)
}
