package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/davetashner/gptservice/internal/llm"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func sampleBatch() *llm.Batch {
	return &llm.Batch{
		ID:               "batch_abc",
		Status:           "completed",
		Endpoint:         "/v1/chat/completions",
		CompletionWindow: "24h",
		InputFileID:      "file-in",
		OutputFileID:     "file-out",
		RequestCounts:    llm.BatchRequestCounts{Total: 4, Completed: 3, Failed: 1},
		CreatedAt:        1700000000,
		CompletedAt:      1700003600,
		Metadata:         map[string]string{"description": "nightly eval job"},
	}
}

func TestGetFormatter(t *testing.T) {
	for _, name := range []string{"text", "json", "yaml"} {
		f, err := GetFormatter(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}
	assert.Equal(t, []string{"json", "text", "yaml"}, FormatNames())

	_, err := GetFormatter("xml")
	assert.ErrorContains(t, err, `unknown format: "xml" (available: json, text, yaml)`)
}

func TestTextFormatter_Batch(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Batch(&buf, sampleBatch()))

	out := buf.String()
	assert.Contains(t, out, "ID:                    batch_abc\n")
	assert.Contains(t, out, "Status:                completed\n")
	assert.Contains(t, out, "Requests:              3/4 completed, 1 failed\n")
	assert.Contains(t, out, "Created:               2023-11-14T22:13:20Z\n")
	assert.Contains(t, out, "Metadata.description:  nightly eval job\n")
	assert.NotContains(t, out, "Error file", "empty fields are omitted")
}

func TestTextFormatter_Batches(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	bs := []llm.Batch{*sampleBatch(), {ID: "batch_2", Status: "in_progress"}}
	require.NoError(t, NewTextFormatter().Batches(&buf, bs))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  ID         STATUS       REQUESTS  CREATED", lines[0])
	assert.Equal(t, "  batch_abc  completed         3/4  2023-11-14T22:13:20Z", lines[2])
	assert.Equal(t, "  batch_2    in_progress       0/0", lines[3])
}

func TestTextFormatter_NoBatches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Batches(&buf, nil))
	assert.Equal(t, "No batches found.\n", buf.String())
}

func TestTextFormatter_File(t *testing.T) {
	var buf bytes.Buffer
	f := &llm.File{ID: "file-1", Filename: "in.jsonl", Purpose: "batch", Bytes: 120}
	require.NoError(t, NewTextFormatter().File(&buf, f))
	assert.Equal(t, "ID:        file-1\nFilename:  in.jsonl\nPurpose:   batch\nBytes:     120\n", buf.String())
}

func TestJSONFormatter_Batch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Batch(&buf, sampleBatch()))

	var got llm.Batch
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleBatch(), got)
	assert.Contains(t, buf.String(), "\n  \"id\": \"batch_abc\"", "buffers are pretty-printed")
}

func TestJSONFormatter_Compact(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{Compact: true}
	require.NoError(t, f.File(&buf, &llm.File{ID: "file-1"}))
	assert.Equal(t, `{"id":"file-1","filename":"","purpose":"","bytes":0,"created_at":0}`+"\n", buf.String())
}

func TestJSONFormatter_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Batches(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Batches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Batches(&buf, []llm.Batch{*sampleBatch()}))

	var got []llm.Batch
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "batch_abc", got[0].ID)
	assert.Contains(t, buf.String(), "- id: batch_abc\n")
}

func TestColorStatus_PlainWhenDisabled(t *testing.T) {
	disableColor(t)
	for _, s := range []string{"completed", "failed", "cancelled", "in_progress", "weird"} {
		assert.Equal(t, s, ColorStatus(s))
	}
}

func TestColorStatus_Colored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	assert.Contains(t, ColorStatus("completed"), "\x1b[32m")
	assert.Contains(t, ColorStatus("failed"), "\x1b[31m")
	assert.Equal(t, "weird", ColorStatus("weird"))
}

func TestTable_ColorDoesNotAffectPadding(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	tbl := NewTable(Column{Header: "S", Color: func(v string) string { return "<" + v + ">" }}, Column{Header: "N"})
	tbl.AddRow("ab", "1")
	tbl.AddRow("abcd", "2")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  <ab>    1", lines[2])
	assert.Equal(t, "  <abcd>  2", lines[3])
}

func TestTable_MissingValues(t *testing.T) {
	disableColor(t)
	tbl := NewTable(Column{Header: "A"}, Column{Header: "B", Align: AlignRight})
	tbl.AddRow("x")
	tbl.AddRow("y", "22", "ignored")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	assert.Equal(t, "  A   B\n  -  --\n  x\n  y  22\n", buf.String())
}
