package graph

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"dbgraph/core/index"
)

// linkBatch is the number of nodes one worker task covers.
const linkBatch = 8192

// GenerateLinks connects every live node to its live one-base-overlap
// neighbours. It needs a completed Build and runs once.
func (b *Builder) GenerateLinks(ctx context.Context) error {
	if !b.buildComplete.Load() {
		return ErrBuildIncomplete
	}
	if !b.linking.CompareAndSwap(false, true) {
		return ErrLinksGenerated
	}

	start := time.Now()
	log := b.log.WithField("action", "generate_links")
	nodes := b.idx.Flatten()
	log.Infof("linking %s nodes with %d workers", humanize.Comma(int64(nodes.Len())), b.cfg.Threads)

	b.extensions.Store(0)
	err := b.forEachParallel(ctx, nodes, func(n *Node) error {
		if n.Deleted() {
			return nil
		}
		return b.link(n)
	})
	if err != nil {
		b.linking.Store(false)
		log.WithError(err).Error("link generation aborted")
		return err
	}

	b.linkComplete.Store(true)
	elapsed := time.Since(start)
	b.metrics.phaseDone("link", elapsed)
	log.WithField("took", elapsed).
		Infof("%s extensions", humanize.Comma(b.extensions.Load()))
	return nil
}

// link fills n's own slots. Only the worker holding n writes them.
func (b *Builder) link(n *Node) error {
	var found int64
	for code := uint8(0); code < 4; code++ {
		for _, side := range [...]Side{Right, Left} {
			var cand uint64
			if side == Right {
				cand = b.codec.Append(n.value, code)
			} else {
				cand = b.codec.Prepend(n.value, code)
			}
			c := b.codec.Canonicalize(cand)
			m, ok := b.idx.TryGet(c.Value)
			if !ok || m.Deleted() {
				continue
			}
			if m.value != c.Value {
				return errors.Wrapf(ErrIdentityDesync, "candidate %#x from node %d resolved to node %d holding %#x",
					c.Value, n.serial, m.serial, m.value)
			}
			slot := int(side)*4 + int(code)
			n.links[slot] = m
			if !c.Forward {
				n.flipped |= 1 << slot
			}
			found++
		}
	}
	b.extensions.Add(found)
	return nil
}

// forEachParallel runs fn over nodes in page-aligned batches on at most
// Threads goroutines. The first error cancels the rest.
func (b *Builder) forEachParallel(ctx context.Context, nodes *index.Collection[Node], fn func(*Node) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Threads)
	for _, batch := range nodes.Batches(linkBatch) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for _, n := range batch {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(n); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
