package appshell

import (
	"context"
	"io"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmptyArgsAskForHelp(t *testing.T) {
	var got []string
	code := run(func(_ context.Context, argv []string, _, _ io.Writer) int {
		got = argv
		return 0
	}, nil, io.Discard, io.Discard)
	assert.Zero(t, code)
	assert.Equal(t, []string{"-h"}, got)
}

func TestSignalCancelsRun(t *testing.T) {
	code := run(func(ctx context.Context, _ []string, _, _ io.Writer) int {
		go func() {
			time.Sleep(10 * time.Millisecond)
			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}()
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(5 * time.Second):
			return 99
		}
	}, []string{"x"}, io.Discard, io.Discard)
	assert.Equal(t, 130, code)
}
