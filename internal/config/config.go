// Package config holds the dbgraph run configuration: built-in defaults,
// an optional YAML file, and validation of the merged result.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"dbgraph/core/graph"
	"dbgraph/core/kmer"
	"dbgraph/core/reads"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

type Config struct {
	KmerLength       int `yaml:"kmer_length"`
	MinKmerLength    int `yaml:"min_kmer_length"`
	Threads          int `yaml:"threads"`
	PendingHighWater int `yaml:"pending_high_water"`
	BatchSize        int `yaml:"batch_size"`

	// MinCount marks and compacts nodes seen fewer times; 0 keeps all.
	MinCount int `yaml:"min_count"`

	Format string `yaml:"format"`
	Output string `yaml:"output"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`

	// MemoryLimitRatio is the share of the cgroup/system memory handed to
	// GOMEMLIMIT; 0 leaves the runtime default.
	MemoryLimitRatio float64 `yaml:"memory_limit_ratio"`

	NoNodesExitCode int `yaml:"no_nodes_exit_code"`
}

func Default() Config {
	return Config{
		KmerLength:       31,
		MinKmerLength:    kmer.MinLength,
		PendingHighWater: graph.DefaultPendingHighWater,
		BatchSize:        graph.DefaultBatchSize,
		Format:           string(reads.FormatAuto),
		Output:           OutputText,
		LogLevel:         "info",
		LogFormat:        LogText,
		MemoryLimitRatio: 0.9,
		NoNodesExitCode:  1,
	}
}

// Load overlays the YAML file at path onto Default. Unknown keys are errors.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "read config")
	}
	if err := c.decode(bytes.NewReader(raw)); err != nil {
		return c, errors.Wrapf(err, "parse config %s", path)
	}
	return c, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if c.MinKmerLength < 1 || c.MinKmerLength > kmer.MaxLength {
		add("min_kmer_length %d outside [1, %d]", c.MinKmerLength, kmer.MaxLength)
	}
	if c.KmerLength < c.MinKmerLength || c.KmerLength > kmer.MaxLength {
		add("kmer_length %d outside [%d, %d]", c.KmerLength, c.MinKmerLength, kmer.MaxLength)
	}
	if c.Threads < 0 {
		add("threads must be >= 0")
	}
	if c.PendingHighWater < 0 {
		add("pending_high_water must be >= 0")
	}
	if c.BatchSize < 0 {
		add("batch_size must be >= 0")
	}
	if c.MinCount < 0 || c.MinCount > graph.MaxOccurrence+1 {
		add("min_count %d outside [0, %d]", c.MinCount, graph.MaxOccurrence+1)
	}
	if _, err := reads.ParseFormat(c.Format); err != nil {
		add("format: %v", err)
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		add("invalid output %q (want text|json)", c.Output)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		add("log_level: %v", err)
	}
	if c.LogFormat != LogText && c.LogFormat != LogJSON {
		add("invalid log_format %q (want text|json)", c.LogFormat)
	}
	if c.MemoryLimitRatio < 0 || c.MemoryLimitRatio > 1 {
		add("memory_limit_ratio %.2f outside [0, 1]", c.MemoryLimitRatio)
	}
	if c.NoNodesExitCode < 0 || c.NoNodesExitCode > 255 {
		add("no_nodes_exit_code must be between 0 and 255")
	}
	return result.ErrorOrNil()
}

// Graph maps the run configuration onto a builder configuration.
func (c Config) Graph(log logrus.FieldLogger, m *graph.Metrics) graph.Config {
	return graph.Config{
		KmerLength:       c.KmerLength,
		MinKmerLength:    c.MinKmerLength,
		Threads:          c.Threads,
		PendingHighWater: c.PendingHighWater,
		BatchSize:        c.BatchSize,
		Logger:           log,
		Metrics:          m,
	}
}
