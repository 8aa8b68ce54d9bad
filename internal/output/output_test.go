package output

import (
	"bytes"
	"encoding/json"
	"io"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbgraph/core/graph"
)

func sample() Summary {
	return Summary{
		Stats: graph.Stats{
			KmerLength:             21,
			NodesBuilt:             1234567,
			LiveNodes:              1200000,
			SequencesProcessed:     5000,
			SequencesSkipped:       12,
			KmersObserved:          400000,
			Extensions:             2400000,
			BuildComplete:          true,
			LinkGenerationComplete: true,
		},
		Files:    []string{"a.fa", "b.fq.gz"},
		MinCount: 2,
		Marked:   34567,
		Removed:  34567,
		Timings:  Timings{Build: 1500 * time.Millisecond, Link: 250 * time.Millisecond},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", sample()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 1234567, got["nodes_built"])
	assert.EqualValues(t, 34567, got["removed"])
	assert.Equal(t, true, got["link_generation_complete"])
	timings := got["timings"].(map[string]any)
	assert.InDelta(t, 1.5, timings["build_seconds"], 1e-9)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", sample()))
	out := buf.String()
	assert.Contains(t, out, "files")
	assert.Contains(t, out, "a.fa,b.fq.gz")
	assert.Regexp(t, `nodes_built\s+1,234,567`, out)
	assert.Regexp(t, `removed\s+34,567`, out)
	assert.Regexp(t, `build_time\s+1.5s`, out)

	s := sample()
	s.MinCount = 0
	buf.Reset()
	require.NoError(t, WriteText(&buf, s))
	assert.NotContains(t, buf.String(), "removed")
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(errors.Wrap(syscall.EPIPE, "write")))
	assert.True(t, IsBrokenPipe(io.ErrClosedPipe))
	assert.False(t, IsBrokenPipe(io.EOF))
	assert.False(t, IsBrokenPipe(nil))
}
