package graph

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dbgraph/core/index"
	"dbgraph/core/kmer"
	"dbgraph/core/reads"
)

// Stats are the builder's counters. SequencesSkipped never exceeds
// SequencesProcessed.
type Stats struct {
	KmerLength             int   `json:"kmer_length"`
	NodesBuilt             int64 `json:"nodes_built"`
	LiveNodes              int64 `json:"live_nodes"`
	SequencesProcessed     int64 `json:"sequences_processed"`
	SequencesSkipped       int64 `json:"sequences_skipped"`
	KmersObserved          int64 `json:"kmers_observed"`
	Extensions             int64 `json:"extensions"`
	BuildComplete          bool  `json:"build_complete"`
	LinkGenerationComplete bool  `json:"link_generation_complete"`
}

// Builder owns one graph: its index, its counters and its phase flags.
type Builder struct {
	cfg     Config
	codec   kmer.Codec
	idx     *index.Sharded[Node]
	log     logrus.FieldLogger
	metrics *Metrics
	batches sync.Pool

	serial     atomic.Uint64
	processed  atomic.Int64
	skipped    atomic.Int64
	observed   atomic.Int64
	pending    atomic.Int64
	live       atomic.Int64
	extensions atomic.Int64

	building      atomic.Bool
	buildComplete atomic.Bool
	linking       atomic.Bool
	linkComplete  atomic.Bool
}

// New validates cfg and returns an empty Builder.
func New(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	codec, err := kmer.NewCodec(cfg.KmerLength)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	b := &Builder{
		cfg:     cfg,
		codec:   codec,
		idx:     index.New[Node](),
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
	size := cfg.BatchSize
	b.batches.New = func() any {
		s := make([]kmer.Canonical, 0, size)
		return &s
	}
	return b, nil
}

func (b *Builder) Codec() kmer.Codec { return b.codec }

func (b *Builder) Stats() Stats {
	return Stats{
		KmerLength:             b.codec.K(),
		NodesBuilt:             b.idx.Count(),
		LiveNodes:              b.live.Load(),
		SequencesProcessed:     b.processed.Load(),
		SequencesSkipped:       b.skipped.Load(),
		KmersObserved:          b.observed.Load(),
		Extensions:             b.extensions.Load(),
		BuildComplete:          b.buildComplete.Load(),
		LinkGenerationComplete: b.linkComplete.Load(),
	}
}

// Pending is the number of k-mers queued for the consumer right now.
func (b *Builder) Pending() int64 { return b.pending.Load() }

/* -------------------------------------------------------------------------- */
/*                                 build phase                                */
/* -------------------------------------------------------------------------- */

// Build consumes src with one producer and one consumer goroutine and
// returns the counters. Reads with a non-DNA alphabet, a gap symbol or any
// symbol outside A/C/G/T are counted as skipped. Build runs once per Builder.
func (b *Builder) Build(ctx context.Context, src reads.Source) (Stats, error) {
	if src == nil {
		return b.Stats(), ErrNilReads
	}
	if !b.building.CompareAndSwap(false, true) {
		return b.Stats(), ErrAlreadyBuilt
	}

	start := time.Now()
	log := b.log.WithField("action", "build_graph")
	log.WithFields(logrus.Fields{
		"kmer_length":        b.codec.K(),
		"pending_high_water": b.cfg.PendingHighWater,
		"batch_size":         b.cfg.BatchSize,
	}).Info("building k-mer index")

	pending := make(chan *[]kmer.Canonical, b.cfg.pendingBatches())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(pending)
		return b.produce(gctx, src, pending)
	})
	g.Go(func() error {
		return b.consume(gctx, pending)
	})
	if err := g.Wait(); err != nil {
		// Batches left behind by an aborted consumer are never indexed.
		for batch := range pending {
			b.dequeued(len(*batch))
		}
		log.WithError(err).Error("build aborted")
		return b.Stats(), err
	}

	b.buildComplete.Store(true)
	elapsed := time.Since(start)
	b.metrics.phaseDone("build", elapsed)
	st := b.Stats()
	log.WithFields(logrus.Fields{
		"nodes":     humanize.Comma(st.NodesBuilt),
		"processed": humanize.Comma(st.SequencesProcessed),
		"skipped":   humanize.Comma(st.SequencesSkipped),
		"took":      elapsed,
	}).Info("k-mer index built")
	return st, nil
}

func (b *Builder) getBatch() *[]kmer.Canonical {
	p := b.batches.Get().(*[]kmer.Canonical)
	*p = (*p)[:0]
	return p
}

func (b *Builder) produce(ctx context.Context, src reads.Source, out chan<- *[]kmer.Canonical) error {
	var (
		k       = b.codec.K()
		batch   = b.getBatch()
		letters []byte
	)
	flush := func() error {
		n := len(*batch)
		if n == 0 {
			return nil
		}
		b.pending.Add(int64(n))
		b.metrics.queued(n)
		select {
		case out <- batch:
		case <-ctx.Done():
			b.dequeued(n)
			return ctx.Err()
		}
		batch = b.getBatch()
		return nil
	}
	emit := func(c kmer.Canonical) error {
		*batch = append(*batch, c)
		if len(*batch) >= b.cfg.BatchSize {
			return flush()
		}
		return nil
	}

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := src.Read()
		if n := b.processed.Add(1); n%b.cfg.ProgressEvery == 0 {
			b.log.WithField("action", "build_graph_progress").
				Debugf("%s reads, %s nodes, %s pending",
					humanize.Comma(n), humanize.Comma(b.idx.Count()), humanize.Comma(b.pending.Load()))
		}
		if r == nil || !reads.IsDNA(r) {
			b.skip()
			continue
		}
		letters = reads.Letters(r, letters[:0])
		if reads.HasGap(r.Alphabet(), letters) || !kmer.IsDNA(letters) {
			b.skip()
			continue
		}
		b.metrics.sequence(false)
		if len(letters) < k {
			continue
		}

		fwd, err := b.codec.Encode(letters, 0)
		if err != nil {
			return errors.Wrap(err, "encode validated read")
		}
		rc := b.codec.ReverseComplement(fwd)
		if err := emit(b.codec.Choose(fwd, rc)); err != nil {
			return err
		}
		for _, sym := range letters[k:] {
			code, _ := kmer.Code(sym)
			fwd = b.codec.Append(fwd, code)
			rc = b.codec.Prepend(rc, kmer.ComplementCode(code))
			if err := emit(b.codec.Choose(fwd, rc)); err != nil {
				return err
			}
		}
	}
	if err := src.Err(); err != nil {
		return errors.Wrap(err, "read source")
	}
	return flush()
}

func (b *Builder) dequeued(n int) {
	b.pending.Add(-int64(n))
	b.metrics.dequeued(n)
}

func (b *Builder) skip() {
	b.skipped.Add(1)
	b.metrics.sequence(true)
}

func (b *Builder) newNode(value uint64) *Node {
	n := &Node{value: value, serial: b.serial.Add(1)}
	n.count.Store(1)
	return n
}

func (b *Builder) consume(ctx context.Context, in <-chan *[]kmer.Canonical) error {
	for batch := range in {
		size := len(*batch)
		b.dequeued(size)
		created := 0
		for _, rec := range *batch {
			n, isNew := b.idx.InsertOrGet(rec.Value, b.newNode)
			if n.value != rec.Value {
				return errors.Wrapf(ErrIdentityDesync, "value %#x resolved to node %d holding %#x",
					rec.Value, n.serial, n.value)
			}
			if isNew {
				created++
				continue
			}
			n.observe()
		}
		b.live.Add(int64(created))
		b.observed.Add(int64(size))
		b.metrics.consumed(size, created)
		b.batches.Put(batch)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
