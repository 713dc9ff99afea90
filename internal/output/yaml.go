package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/davetashner/gptservice/internal/llm"
)

func init() {
	RegisterFormatter(NewYAMLFormatter())
}

// YAMLFormatter writes provider objects as YAML documents.
type YAMLFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*YAMLFormatter)(nil)

// NewYAMLFormatter returns a new YAMLFormatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the format name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Batch writes b as a YAML mapping.
func (f *YAMLFormatter) Batch(w io.Writer, b *llm.Batch) error {
	return writeYAML(w, b)
}

// Batches writes bs as a YAML sequence.
func (f *YAMLFormatter) Batches(w io.Writer, bs []llm.Batch) error {
	if bs == nil {
		bs = []llm.Batch{}
	}
	return writeYAML(w, bs)
}

// File writes file as a YAML mapping.
func (f *YAMLFormatter) File(w io.Writer, file *llm.File) error {
	return writeYAML(w, file)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}
