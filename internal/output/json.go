package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davetashner/gptservice/internal/llm"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONFormatter writes provider objects as JSON documents.
type JSONFormatter struct {
	// Compact controls whether output is compact (single line) or pretty-printed.
	// When false (default), output is pretty-printed for terminals and
	// compact for pipes.
	Compact bool
}

// Compile-time interface check.
var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Batch writes b as a JSON object.
func (f *JSONFormatter) Batch(w io.Writer, b *llm.Batch) error {
	return f.write(w, b)
}

// Batches writes bs as a JSON array. A nil slice is written as [].
func (f *JSONFormatter) Batches(w io.Writer, bs []llm.Batch) error {
	if bs == nil {
		bs = []llm.Batch{}
	}
	return f.write(w, bs)
}

// File writes file as a JSON object.
func (f *JSONFormatter) File(w io.Writer, file *llm.File) error {
	return f.write(w, file)
}

func (f *JSONFormatter) write(w io.Writer, v any) error {
	var data []byte
	var err error
	if f.shouldCompact(w) {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// shouldCompact determines whether to use compact mode.
// If Compact is explicitly set, use that value.
// Otherwise, auto-detect: pretty-print for TTYs, compact for pipes.
func (f *JSONFormatter) shouldCompact(w io.Writer) bool {
	if f.Compact {
		return true
	}

	if file, ok := w.(*os.File); ok {
		fi, err := file.Stat()
		if err != nil {
			return false
		}
		return fi.Mode()&os.ModeCharDevice == 0
	}

	// Non-file writers (e.g., bytes.Buffer in tests) are pretty-printed.
	return false
}
