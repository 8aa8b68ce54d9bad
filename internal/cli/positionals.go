package cli

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExpandPositionals expands glob patterns among read-file arguments. '-' and
// plain paths pass through untouched; a pattern matching nothing is an error.
func ExpandPositionals(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if a == "-" || !strings.ContainsAny(a, "*?[") {
			out = append(out, a)
			continue
		}
		m, err := filepath.Glob(a)
		if err != nil {
			return nil, errors.Wrapf(err, "bad glob %q", a)
		}
		if len(m) == 0 {
			return nil, errors.Errorf("no input matched %q", a)
		}
		out = append(out, m...)
	}
	return out, nil
}
