package output

import (
	"errors"
	"io"
	"syscall"
)

// IsBrokenPipe reports whether the reader of stdout went away (e.g. head).
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
