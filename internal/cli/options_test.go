// internal/cli/options_test.go
package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbgraph/internal/config"
)

func newFS() *pflag.FlagSet {
	fs := NewFlagSet("test")
	fs.SetOutput(io.Discard)
	return fs
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	require.NoError(t, err)
	return opts
}

func TestDefaultsWithOneFile(t *testing.T) {
	o := mustParse(t, "reads.fa")
	assert.Equal(t, []string{"reads.fa"}, o.ReadFiles)
	assert.Equal(t, config.Default(), o.Config)
}

func TestShortFlagsAndInterspersedFiles(t *testing.T) {
	o := mustParse(t, "a.fa", "-k", "21", "-t", "2", "b.fq", "-o", "json", "--min-count", "3", "-q")
	assert.Equal(t, []string{"a.fa", "b.fq"}, o.ReadFiles)
	assert.Equal(t, 21, o.Config.KmerLength)
	assert.Equal(t, 2, o.Config.Threads)
	assert.Equal(t, config.OutputJSON, o.Config.Output)
	assert.Equal(t, 3, o.Config.MinCount)
	assert.True(t, o.Quiet)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("kmer_length: 19\nbatch_size: 128\noutput: json\n"), 0o644))

	o := mustParse(t, "--config", fn, "-k", "23", "r.fa")
	assert.Equal(t, 23, o.Config.KmerLength, "flag wins")
	assert.Equal(t, 128, o.Config.BatchSize, "file value kept")
	assert.Equal(t, config.OutputJSON, o.Config.Output, "unset flag does not reset file value")
}

func TestErrorNoReadFiles(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"-k", "21"})
	assert.Error(t, err)
}

func TestErrorInvalidValues(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"-k", "40", "r.fa"})
	assert.Error(t, err)
	_, err = ParseArgs(newFS(), []string{"--output", "xml", "r.fa"})
	assert.Error(t, err)
	_, err = ParseArgs(newFS(), []string{"--no-such-flag", "r.fa"})
	assert.Error(t, err)
}

func TestHelpAndVersion(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"-h"})
	assert.ErrorIs(t, err, ErrHelp)

	o, err := ParseArgs(newFS(), []string{"--version"})
	require.NoError(t, err)
	assert.True(t, o.Version)
}

func TestExpandPositionals(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.fa", "b.fa", "c.fq"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(">x\nA\n"), 0o644))
	}
	got, err := ExpandPositionals([]string{filepath.Join(dir, "*.fa"), "-", "plain.fq"})
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, "-", got[2])

	_, err = ExpandPositionals([]string{filepath.Join(dir, "*.bam")})
	assert.Error(t, err)
}
