package batchfile

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	var buf bytes.Buffer
	n, err := Build(&buf, "gpt-4o", "You are an AI assistant.", []string{"What is AI?", "Define <b>bold</b>"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var req Request
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &req))
	_, err = uuid.Parse(req.CustomID)
	assert.NoError(t, err, "custom_id should be a UUID")
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/v1/chat/completions", req.URL)
	assert.Equal(t, "gpt-4o", req.Body.Model)
	assert.Equal(t, []Message{
		{Role: "system", Content: "You are an AI assistant."},
		{Role: "user", Content: "What is AI?"},
	}, req.Body.Messages)

	assert.Contains(t, lines[1], "<b>bold</b>", "HTML must not be escaped")
}

func TestBuild_NoSystemPrompt(t *testing.T) {
	req := NewRequest("o3-mini", "", "hi")
	assert.Equal(t, []Message{{Role: "user", Content: "hi"}}, req.Body.Messages)
}

func TestBuild_UniqueCustomIDs(t *testing.T) {
	a := NewRequest("m", "", "x")
	b := NewRequest("m", "", "x")
	assert.NotEqual(t, a.CustomID, b.CustomID)
}

func TestBuild_RequiresModel(t *testing.T) {
	_, err := Build(&bytes.Buffer{}, "", "", []string{"x"})
	assert.ErrorContains(t, err, "model is required")
}

func TestBuild_OutputValidates(t *testing.T) {
	var buf bytes.Buffer
	_, err := Build(&buf, "gpt-4o", "sys", []string{"a", "b", "c"})
	require.NoError(t, err)

	report, err := Validate(&buf)
	require.NoError(t, err)
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
	assert.Equal(t, 3, report.Lines)
}

func TestReadPrompts(t *testing.T) {
	prompts, err := ReadPrompts(strings.NewReader("first\n\n  second  \n\nthird"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, prompts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"invalid JSON", `{"custom_id":`, "invalid JSON"},
		{"missing body", `{"custom_id":"a","method":"POST","url":"/v1/chat/completions"}`, "body"},
		{"wrong method", `{"custom_id":"a","method":"GET","url":"/v1/chat/completions","body":{"model":"m","messages":[{"role":"user","content":"x"}]}}`, "method"},
		{"wrong url", `{"custom_id":"a","method":"POST","url":"/v1/embeddings","body":{"model":"m","messages":[{"role":"user","content":"x"}]}}`, "url"},
		{"empty messages", `{"custom_id":"a","method":"POST","url":"/v1/chat/completions","body":{"model":"m","messages":[]}}`, "messages"},
		{"unknown role", `{"custom_id":"a","method":"POST","url":"/v1/chat/completions","body":{"model":"m","messages":[{"role":"robot","content":"x"}]}}`, "role"},
		{"extra field", `{"custom_id":"a","method":"POST","url":"/v1/chat/completions","body":{"model":"m","messages":[{"role":"user","content":"x"}]},"extra":1}`, "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Validate(strings.NewReader(tt.input + "\n"))
			require.NoError(t, err)
			require.False(t, report.Valid())
			require.Len(t, report.Errors, 1)
			assert.Equal(t, 1, report.Errors[0].Line)
			assert.Contains(t, report.Errors[0].String(), tt.wantErr)
		})
	}
}

func TestValidate_DuplicateCustomID(t *testing.T) {
	line := `{"custom_id":"dup","method":"POST","url":"/v1/chat/completions","body":{"model":"m","messages":[{"role":"user","content":"x"}]}}`
	report, err := Validate(strings.NewReader(line + "\n\n" + line + "\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Lines)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Line, "line numbers count blank lines")
	assert.Contains(t, report.Errors[0].String(), `custom_id "dup" duplicates line 1`)
}

func TestValidate_Empty(t *testing.T) {
	report, err := Validate(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Zero(t, report.Lines)
}
