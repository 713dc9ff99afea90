// Package output renders batch jobs and files for the CLI in text, JSON, or
// YAML.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/davetashner/gptservice/internal/llm"
)

// Formatter writes provider objects to w in a specific format.
type Formatter interface {
	// Name returns the format name (e.g., "text", "json", "yaml").
	Name() string

	// Batch writes a single batch job.
	Batch(w io.Writer, b *llm.Batch) error

	// Batches writes a list of batch jobs.
	Batches(w io.Writer, bs []llm.Batch) error

	// File writes an uploaded file object.
	File(w io.Writer, f *llm.File) error
}

// DefaultFormat is used when no format is requested.
const DefaultFormat = "text"

var (
	fmtMu       sync.RWMutex
	fmtRegistry = make(map[string]Formatter)
)

// RegisterFormatter adds a formatter to the global registry.
func RegisterFormatter(f Formatter) {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry[f.Name()] = f
}

// GetFormatter returns the formatter with the given name, or an error if not found.
func GetFormatter(name string) (Formatter, error) {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	f, ok := fmtRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %q (available: %s)", name, formatNames())
	}
	return f, nil
}

// FormatNames returns the sorted names of registered formatters.
func FormatNames() []string {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	names := make([]string, 0, len(fmtRegistry))
	for name := range fmtRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatNames returns a comma-separated sorted list of registered format
// names. The caller must hold fmtMu.
func formatNames() string {
	names := make([]string, 0, len(fmtRegistry))
	for name := range fmtRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
