package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "dbgraph.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("kmer_length: 21\nmin_count: 2\noutput: json\n"), 0o644))

	c, err := Load(fn)
	require.NoError(t, err)
	assert.Equal(t, 21, c.KmerLength)
	assert.Equal(t, 2, c.MinCount)
	assert.Equal(t, OutputJSON, c.Output)
	assert.Equal(t, Default().BatchSize, c.BatchSize)
	assert.NoError(t, c.Validate())
}

func TestLoadEmptyFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(fn, nil, 0o644))
	c, err := Load(fn)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("kmer_lenght: 21\n"), 0o644))
	_, err := Load(fn)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	c := Default()
	c.KmerLength = 40
	c.Threads = -1
	c.Output = "xml"
	c.LogLevel = "loud"
	c.Format = "sam"

	err := c.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
}

func TestGraphConfig(t *testing.T) {
	c := Default()
	c.KmerLength = 25
	c.Threads = 3
	g := c.Graph(nil, nil)
	assert.Equal(t, 25, g.KmerLength)
	assert.Equal(t, 3, g.Threads)
	assert.NoError(t, g.Validate())
}
