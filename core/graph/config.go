package graph

import (
	"io"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"dbgraph/core/kmer"
)

const (
	// DefaultPendingHighWater caps the canonical k-mers queued between the
	// producer and the consumer.
	DefaultPendingHighWater = 2_000_000
	DefaultBatchSize        = 4096
	DefaultProgressEvery    = 1_000_000
)

// Config controls a Builder. Zero values select defaults.
type Config struct {
	KmerLength    int
	MinKmerLength int // lower bound for KmerLength; 0 = kmer.MinLength

	Threads          int // link/compact workers; <=0 = runtime.NumCPU()
	PendingHighWater int
	BatchSize        int   // k-mers per producer->consumer hand-off
	ProgressEvery    int64 // reads between debug progress lines

	Logger  logrus.FieldLogger
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.MinKmerLength == 0 {
		c.MinKmerLength = kmer.MinLength
	}
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.PendingHighWater <= 0 {
		c.PendingHighWater = DefaultPendingHighWater
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchSize > c.PendingHighWater {
		c.BatchSize = c.PendingHighWater
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	return c
}

// Validate checks the k-mer bounds after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.MinKmerLength < 1 || c.MinKmerLength > kmer.MaxLength {
		return errors.Wrapf(ErrInvalidConfig, "min k-mer length %d outside [1, %d]", c.MinKmerLength, kmer.MaxLength)
	}
	if c.KmerLength < c.MinKmerLength || c.KmerLength > kmer.MaxLength {
		return errors.Wrapf(ErrInvalidConfig, "k-mer length %d outside [%d, %d]", c.KmerLength, c.MinKmerLength, kmer.MaxLength)
	}
	return nil
}

// pendingBatches is the channel capacity that keeps queued k-mers at or
// below PendingHighWater.
func (c Config) pendingBatches() int {
	n := c.PendingHighWater / c.BatchSize
	if n < 1 {
		n = 1
	}
	return n
}
