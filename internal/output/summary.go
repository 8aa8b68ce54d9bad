// Package output renders the run summary. It never prints nodes or edges.
package output

import (
	"time"

	"dbgraph/core/graph"
)

// Summary is everything reported about one run.
type Summary struct {
	graph.Stats

	Files    []string `json:"files"`
	MinCount int      `json:"min_count,omitempty"`
	Marked   int      `json:"marked"`
	Removed  int      `json:"removed"`

	Timings Timings `json:"timings"`
}

// Timings are wall-clock phase durations.
type Timings struct {
	Build   time.Duration `json:"-"`
	Link    time.Duration `json:"-"`
	Compact time.Duration `json:"-"`

	BuildSeconds   float64 `json:"build_seconds"`
	LinkSeconds    float64 `json:"link_seconds"`
	CompactSeconds float64 `json:"compact_seconds"`
}

func (t *Timings) seal() {
	t.BuildSeconds = t.Build.Seconds()
	t.LinkSeconds = t.Link.Seconds()
	t.CompactSeconds = t.Compact.Seconds()
}
