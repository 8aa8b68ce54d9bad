package graph

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"dbgraph/core/index"
	"dbgraph/core/kmer"
)

// RemoveNodes deletes each node that is not deleted yet and returns how many
// it deleted. Nil entries are ignored.
func (b *Builder) RemoveNodes(nodes []*Node) int {
	removed := 0
	for _, n := range nodes {
		if n != nil && n.markDeleted() {
			removed++
		}
	}
	b.dropLive(removed)
	return removed
}

// Compact deletes every node marked with MarkForDelete and returns how many
// it deleted in this call.
func (b *Builder) Compact(ctx context.Context) (int, error) {
	start := time.Now()
	var removed atomic.Int64
	err := b.forEachParallel(ctx, b.idx.Flatten(), func(n *Node) error {
		if n.MarkedForDelete() && n.markDeleted() {
			removed.Add(1)
		}
		return nil
	})
	got := int(removed.Load())
	b.dropLive(got)
	if err != nil {
		return got, err
	}

	elapsed := time.Since(start)
	b.metrics.phaseDone("compact", elapsed)
	b.log.WithField("action", "compact").WithField("took", elapsed).
		Infof("removed %s nodes, %s live", humanize.Comma(int64(got)), humanize.Comma(b.live.Load()))
	return got, nil
}

func (b *Builder) dropLive(n int) {
	if n == 0 {
		return
	}
	b.live.Add(-int64(n))
	b.metrics.removed(n)
}

// MarkLowCoverage marks every live node seen fewer than threshold times and
// returns how many it newly marked.
func (b *Builder) MarkLowCoverage(threshold int) int {
	marked := 0
	for n := range b.LiveNodes() {
		if n.Count() < threshold && n.MarkForDelete() {
			marked++
		}
	}
	return marked
}

// LiveNodes yields the nodes that are not deleted at the moment they are
// reached.
func (b *Builder) LiveNodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		b.idx.Range(func(_ uint64, n *Node) bool {
			if n.Deleted() {
				return true
			}
			return yield(n)
		})
	}
}

// Nodes is a snapshot of every node ever created, deleted ones included.
func (b *Builder) Nodes() *index.Collection[Node] { return b.idx.Flatten() }

// Sequence decodes the stored orientation of n.
func (b *Builder) Sequence(n *Node) string { return b.codec.String(n.value) }

// Lookup finds the node for a k-length window; n is nil when absent.
// forward reports whether seq is the node's stored orientation.
func (b *Builder) Lookup(seq []byte) (n *Node, forward bool, err error) {
	if len(seq) != b.codec.K() {
		return nil, false, errors.Wrapf(kmer.ErrInvalidLength, "lookup window has length %d, want %d", len(seq), b.codec.K())
	}
	v, err := b.codec.Encode(seq, 0)
	if err != nil {
		return nil, false, err
	}
	c := b.codec.Canonicalize(v)
	n, ok := b.idx.TryGet(c.Value)
	if !ok {
		return nil, false, nil
	}
	return n, c.Forward, nil
}
