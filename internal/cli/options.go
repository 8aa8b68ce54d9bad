// internal/cli/options.go
package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"dbgraph/internal/config"
	"dbgraph/internal/version"
)

// ErrHelp is returned by ParseArgs when -h/--help was given.
var ErrHelp = pflag.ErrHelp

// Options is the parsed command line: the merged run configuration plus the
// flags that only steer the CLI itself.
type Options struct {
	Config     config.Config
	ConfigFile string
	ReadFiles  []string

	Quiet   bool
	Version bool
}

// NewFlagSet returns a FlagSet that reports errors instead of exiting.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: De Bruijn graph builder for short DNA reads

Version: %s

Usage:
  %s [flags] reads.fa[.gz|.zst] [reads.fq ...]

Reads may be FASTA or FASTQ, plain, gzip or zstd; '-' reads STDIN.
Flags override values from --config.

Flags:
`, name, version.Version, name)
		fmt.Fprint(fs.Output(), fs.FlagUsages())
	}
	return fs
}

// ParseArgs registers all flags on fs, parses argv and returns the merged,
// validated options.
func ParseArgs(fs *pflag.FlagSet, argv []string) (Options, error) {
	var (
		opt  Options
		help bool
		f    = config.Default()
	)

	// Graph
	fs.IntVarP(&f.KmerLength, "kmer-length", "k", f.KmerLength, "k-mer length")
	fs.IntVar(&f.MinKmerLength, "min-kmer-length", f.MinKmerLength, "smallest k accepted")
	fs.IntVar(&f.MinCount, "min-count", f.MinCount, "remove nodes seen fewer times (0 = keep all)")

	// Performance
	fs.IntVarP(&f.Threads, "threads", "t", f.Threads, "link/compact workers (0 = all CPUs)")
	fs.IntVar(&f.PendingHighWater, "pending-high-water", f.PendingHighWater, "max k-mers queued between reader and indexer")
	fs.IntVar(&f.BatchSize, "batch-size", f.BatchSize, "k-mers per reader->indexer hand-off")

	// Input / output
	fs.StringVar(&f.Format, "format", f.Format, "read format: auto | fasta | fastq")
	fs.StringVarP(&f.Output, "output", "o", f.Output, "summary format: text | json")
	fs.IntVar(&f.NoNodesExitCode, "no-nodes-exit-code", f.NoNodesExitCode, "exit code when the graph ends up empty")
	fs.StringVar(&opt.ConfigFile, "config", "", "YAML configuration file")

	// Observability
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "panic | fatal | error | warn | info | debug | trace")
	fs.StringVar(&f.LogFormat, "log-format", f.LogFormat, "log format: text | json")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", f.MetricsAddr, "serve Prometheus metrics on this address")
	fs.Float64Var(&f.MemoryLimitRatio, "memory-limit-ratio", f.MemoryLimitRatio, "share of available memory for GOMEMLIMIT (0 = unset)")

	// Misc
	fs.BoolVarP(&opt.Quiet, "quiet", "q", false, "only log warnings and errors")
	fs.BoolVarP(&opt.Version, "version", "v", false, "print version and exit")
	fs.BoolVarP(&help, "help", "h", false, "show this help and exit")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		return opt, ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	opt.Config = config.Default()
	if opt.ConfigFile != "" {
		c, err := config.Load(opt.ConfigFile)
		if err != nil {
			return opt, err
		}
		opt.Config = c
	}
	overlay(fs, &opt.Config, f)

	files, err := ExpandPositionals(fs.Args())
	if err != nil {
		return opt, err
	}
	if len(files) == 0 {
		return opt, errors.New("at least one read file is required")
	}
	opt.ReadFiles = files

	if err := opt.Config.Validate(); err != nil {
		return opt, err
	}
	return opt, nil
}

// overlay copies the flags the user actually set from f onto dst.
func overlay(fs *pflag.FlagSet, dst *config.Config, f config.Config) {
	set := map[string]func(){
		"kmer-length":        func() { dst.KmerLength = f.KmerLength },
		"min-kmer-length":    func() { dst.MinKmerLength = f.MinKmerLength },
		"min-count":          func() { dst.MinCount = f.MinCount },
		"threads":            func() { dst.Threads = f.Threads },
		"pending-high-water": func() { dst.PendingHighWater = f.PendingHighWater },
		"batch-size":         func() { dst.BatchSize = f.BatchSize },
		"format":             func() { dst.Format = f.Format },
		"output":             func() { dst.Output = f.Output },
		"no-nodes-exit-code": func() { dst.NoNodesExitCode = f.NoNodesExitCode },
		"log-level":          func() { dst.LogLevel = f.LogLevel },
		"log-format":         func() { dst.LogFormat = f.LogFormat },
		"metrics-addr":       func() { dst.MetricsAddr = f.MetricsAddr },
		"memory-limit-ratio": func() { dst.MemoryLimitRatio = f.MemoryLimitRatio },
	}
	fs.Visit(func(fl *pflag.Flag) {
		if apply, ok := set[fl.Name]; ok {
			apply()
		}
	})
}
