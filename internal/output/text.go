package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/davetashner/gptservice/internal/llm"
)

func init() {
	RegisterFormatter(NewTextFormatter())
}

// TextFormatter writes human-readable key/value blocks and tables.
type TextFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*TextFormatter)(nil)

// NewTextFormatter returns a new TextFormatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Batch writes one batch as aligned key/value lines.
func (f *TextFormatter) Batch(w io.Writer, b *llm.Batch) error {
	kv := [][2]string{
		{"ID", b.ID},
		{"Status", ColorStatus(b.Status)},
		{"Endpoint", b.Endpoint},
		{"Window", b.CompletionWindow},
		{"Input file", b.InputFileID},
		{"Output file", b.OutputFileID},
		{"Error file", b.ErrorFileID},
		{"Requests", requestSummary(b.RequestCounts)},
		{"Created", formatUnix(b.CreatedAt)},
		{"Completed", formatUnix(b.CompletedAt)},
	}
	keys := make([]string, 0, len(b.Metadata))
	for k := range b.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, [2]string{"Metadata." + k, b.Metadata[k]})
	}
	return writeKV(w, kv)
}

// Batches writes a table with one row per batch.
func (f *TextFormatter) Batches(w io.Writer, bs []llm.Batch) error {
	if len(bs) == 0 {
		_, err := fmt.Fprintln(w, "No batches found.")
		return err
	}
	tbl := NewTable(
		Column{Header: "ID"},
		Column{Header: "STATUS", Color: ColorStatus},
		Column{Header: "REQUESTS", Align: AlignRight},
		Column{Header: "CREATED"},
	)
	for _, b := range bs {
		tbl.AddRow(b.ID, b.Status, progress(b.RequestCounts), formatUnix(b.CreatedAt))
	}
	return tbl.Render(w)
}

// File writes an uploaded file as key/value lines.
func (f *TextFormatter) File(w io.Writer, file *llm.File) error {
	return writeKV(w, [][2]string{
		{"ID", file.ID},
		{"Filename", file.Filename},
		{"Purpose", file.Purpose},
		{"Bytes", strconv.FormatInt(file.Bytes, 10)},
		{"Created", formatUnix(file.CreatedAt)},
	})
}

// writeKV writes non-empty pairs with keys padded to a common width.
func writeKV(w io.Writer, kv [][2]string) error {
	width := 0
	for _, p := range kv {
		width = max(width, len(p[0]))
	}
	for _, p := range kv {
		if p[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, p[0]+":", p[1]); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}
	return nil
}

func requestSummary(c llm.BatchRequestCounts) string {
	if c.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d completed, %d failed", c.Completed, c.Total, c.Failed)
}

func progress(c llm.BatchRequestCounts) string {
	return fmt.Sprintf("%d/%d", c.Completed, c.Total)
}

func formatUnix(sec int64) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
