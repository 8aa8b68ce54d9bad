// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	memlimit "github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"dbgraph/core/graph"
	"dbgraph/core/reads"
	"dbgraph/internal/cli"
	"dbgraph/internal/config"
	"dbgraph/internal/logging"
	"dbgraph/internal/output"
	"dbgraph/internal/version"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitRuntime  = 3
	ExitCanceled = 130
)

// RunContext is the whole dbgraph command. It returns the process exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("dbgraph")
	fs.SetOutput(io.Discard)

	usage := func(code int) int {
		fs.SetOutput(outw)
		fs.Usage()
		return flush(outw, stderr, code)
	}

	opts, err := cli.ParseArgs(fs, argv)
	switch {
	case errors.Is(err, cli.ErrHelp):
		return usage(ExitOK)
	case err != nil:
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return usage(ExitUsage)
	case opts.Version:
		_, _ = fmt.Fprintf(outw, "dbgraph version %s\n", version.Version)
		return flush(outw, stderr, ExitOK)
	}
	cfg := opts.Config

	log, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}
	if opts.Quiet {
		logging.Quiet(log)
	}
	setMemoryLimit(log, cfg.MemoryLimitRatio)

	var metrics *graph.Metrics
	if cfg.MetricsAddr != "" {
		srv, err := serveMetrics(cfg.MetricsAddr, log)
		if err != nil {
			log.WithError(err).Error("metrics endpoint")
			return ExitRuntime
		}
		defer srv.stop()
		metrics = srv.metrics
	}

	summary, code := run(parent, cfg, opts.ReadFiles, log, metrics)
	if code != ExitOK {
		return code
	}
	if err := output.Write(outw, cfg.Output, summary); err != nil {
		if output.IsBrokenPipe(err) {
			return ExitOK
		}
		_, _ = fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	code = flush(outw, stderr, ExitOK)
	if code == ExitOK && summary.LiveNodes == 0 {
		log.Warn("graph is empty")
		return cfg.NoNodesExitCode
	}
	return code
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// run builds, optionally prunes, then links the graph.
func run(ctx context.Context, cfg config.Config, files []string, log *logrus.Logger, m *graph.Metrics) (output.Summary, int) {
	sum := output.Summary{Files: files, MinCount: cfg.MinCount}

	format, err := reads.ParseFormat(cfg.Format)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return sum, ExitUsage
	}
	b, err := graph.New(cfg.Graph(log, m))
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return sum, ExitUsage
	}

	src := reads.NewFileSource(ctx, files, format)
	defer func() { _ = src.Close() }()

	start := time.Now()
	if _, err := b.Build(ctx, src); err != nil {
		return sum, failure(ctx, err, log)
	}
	sum.Timings.Build = time.Since(start)

	// Prune before linking so no link points at a removed node.
	if cfg.MinCount > 0 {
		start = time.Now()
		sum.Marked = b.MarkLowCoverage(cfg.MinCount)
		sum.Removed, err = b.Compact(ctx)
		if err != nil {
			return sum, failure(ctx, err, log)
		}
		sum.Timings.Compact = time.Since(start)
		log.WithField("action", "prune").
			Infof("removed %s nodes seen fewer than %d times", humanize.Comma(int64(sum.Removed)), cfg.MinCount)
	}

	start = time.Now()
	if err := b.GenerateLinks(ctx); err != nil {
		return sum, failure(ctx, err, log)
	}
	sum.Timings.Link = time.Since(start)

	sum.Stats = b.Stats()
	return sum, ExitOK
}

func failure(ctx context.Context, err error, log logrus.FieldLogger) int {
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		log.Warn("interrupted")
		return ExitCanceled
	}
	log.WithError(err).Error("run failed")
	return ExitRuntime
}

func flush(w *bufio.Writer, stderr io.Writer, code int) int {
	if err := w.Flush(); err != nil && !output.IsBrokenPipe(err) {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	return code
}

func setMemoryLimit(log logrus.FieldLogger, ratio float64) {
	if ratio <= 0 {
		return
	}
	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(ratio),
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
	)
	if err != nil {
		log.WithError(err).Debug("GOMEMLIMIT left unset")
		return
	}
	log.WithField("limit", humanize.IBytes(uint64(limit))).Debug("GOMEMLIMIT set")
}
