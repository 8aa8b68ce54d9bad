package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// WriteText prints one aligned "name value" line per counter.
func WriteText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(name string, v any) {
		fmt.Fprintf(tw, "%s\t%v\n", name, v)
	}
	row("files", strings.Join(s.Files, ","))
	row("kmer_length", s.KmerLength)
	row("sequences_processed", humanize.Comma(s.SequencesProcessed))
	row("sequences_skipped", humanize.Comma(s.SequencesSkipped))
	row("kmers_observed", humanize.Comma(s.KmersObserved))
	row("nodes_built", humanize.Comma(s.NodesBuilt))
	if s.MinCount > 0 {
		row("min_count", s.MinCount)
		row("removed", humanize.Comma(int64(s.Removed)))
	}
	row("live_nodes", humanize.Comma(s.LiveNodes))
	row("extensions", humanize.Comma(s.Extensions))
	row("build_time", s.Timings.Build.Round(time.Millisecond))
	row("link_time", s.Timings.Link.Round(time.Millisecond))
	if s.MinCount > 0 {
		row("compact_time", s.Timings.Compact.Round(time.Millisecond))
	}
	return tw.Flush()
}

// Write dispatches on format ("text" or "json").
func Write(w io.Writer, format string, s Summary) error {
	if format == "json" {
		return WriteJSON(w, s)
	}
	return WriteText(w, s)
}
