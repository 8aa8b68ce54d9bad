package output

import (
	"encoding/json"
	"io"
)

// WriteJSON writes s as one indented JSON object.
func WriteJSON(w io.Writer, s Summary) error {
	s.Timings.seal()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
