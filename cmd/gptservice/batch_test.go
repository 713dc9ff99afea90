package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gptservice/internal/llm"
)

func TestBatchCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range batchCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"upload", "create", "status", "result", "cancel", "list", "build", "validate"} {
		assert.True(t, names[want], "batch %s not registered", want)
	}
}

func TestBatchUpload(t *testing.T) {
	mock := llm.NewMockTransport()
	mock.MockFile = &llm.File{ID: "file-abc", Filename: "nightly.jsonl", Purpose: "batch", Bytes: 12}
	setupCLI(t, mock)
	writeTestFile(t, "nightly.jsonl", `{"custom_id":"1"}`+"\n")

	out, _, err := run("batch", "upload", "nightly.jsonl", "-f", "json")
	require.NoError(t, err)

	var got llm.File
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "file-abc", got.ID)

	uploads := mock.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "batch", uploads[0].Purpose)
	assert.Equal(t, `{"custom_id":"1"}`+"\n", string(uploads[0].Data))
}

func TestBatchUpload_MissingFile(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	_, _, err := run("batch", "upload", "nope.jsonl")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Zero(t, mock.CallCount())
}

func TestBatchUpload_UnknownFormat(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	_, _, err := run("batch", "upload", "nightly.jsonl", "-f", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Contains(t, err.Error(), "unknown format")
}

func TestBatchCreate(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	out, _, err := run("batch", "create", "file-abc")
	require.NoError(t, err)
	assert.Equal(t, "Batch job submitted for input file file-abc.\n", out)
	assert.Equal(t, []string{"CreateBatch"}, mock.Calls())
}

func TestBatchCreate_TransportError(t *testing.T) {
	mock := llm.NewMockTransport()
	mock.BatchErr = errors.New("503 service unavailable")
	setupCLI(t, mock)

	_, _, err := run("batch", "create", "file-abc")
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCodeOf(err))
	assert.Contains(t, err.Error(), "503")
}

func TestBatchStatus_Text(t *testing.T) {
	mock := llm.NewMockTransport()
	mock.MockBatch = &llm.Batch{
		ID:            "batch-1",
		Status:        "completed",
		InputFileID:   "file-in",
		OutputFileID:  "file-out",
		RequestCounts: llm.BatchRequestCounts{Total: 4, Completed: 4},
	}
	setupCLI(t, mock)

	out, _, err := run("--no-color", "batch", "status", "batch-1")
	require.NoError(t, err)
	assert.Contains(t, out, "batch-1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "file-out")
	assert.Equal(t, 1, mock.CallCount())
}

func TestBatchStatus_WaitStopsAtTerminal(t *testing.T) {
	mock := llm.NewMockTransport()
	mock.MockBatch = &llm.Batch{ID: "batch-1", Status: "failed"}
	setupCLI(t, mock)

	out, _, err := run("batch", "status", "--wait", "--interval", "1ms", "batch-1", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "status: failed")
	assert.Equal(t, 1, mock.CallCount())
}

func TestBatchStatus_BadInterval(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	_, _, err := run("batch", "status", "--wait", "--interval", "0s", "batch-1")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Zero(t, mock.CallCount())
}

func TestBatchResult_Stdout(t *testing.T) {
	mock := llm.NewMockTransport()
	mock.MockContent = `{"id":"r1"}` + "\n" + `{"id":"r2"}` + "\n"
	setupCLI(t, mock)

	out, _, err := run("batch", "result", "file-out")
	require.NoError(t, err)
	assert.Equal(t, mock.MockContent, out)
}

func TestBatchResult_OutputFile(t *testing.T) {
	mock := llm.NewMockTransport()
	mock.MockContent = `{"id":"r1"}` + "\n"
	setupCLI(t, mock)

	out, stderr, err := run("batch", "result", "file-out", "-o", "results.jsonl")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "results.jsonl")

	data, err := os.ReadFile("results.jsonl")
	require.NoError(t, err)
	assert.Equal(t, mock.MockContent, string(data))
}

func TestBatchCancel(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	out, _, err := run("batch", "cancel", "batch-9")
	require.NoError(t, err)
	assert.Equal(t, "Cancellation requested for batch batch-9.\n", out)
	assert.Equal(t, []string{"CancelBatch"}, mock.Calls())
}

func TestBatchCancel_EmptyID(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	_, _, err := run("batch", "cancel", "")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Zero(t, mock.CallCount())
}

func TestBatchList(t *testing.T) {
	mock := llm.NewMockTransport()
	for _, id := range []string{"batch-a", "batch-b", "batch-c"} {
		mock.MockBatches = append(mock.MockBatches, llm.Batch{ID: id, Status: "completed"})
	}
	setupCLI(t, mock)

	out, _, err := run("--no-color", "batch", "list", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "batch-a")
	assert.Contains(t, out, "batch-b")
	assert.NotContains(t, out, "batch-c")
}

func TestBatchList_ConfigLimit(t *testing.T) {
	mock := llm.NewMockTransport()
	for _, id := range []string{"batch-a", "batch-b", "batch-c"} {
		mock.MockBatches = append(mock.MockBatches, llm.Batch{ID: id, Status: "completed"})
	}
	setupCLI(t, mock)
	writeTestFile(t, ".gptservice.yaml", "batch_limit: 1\n")

	out, _, err := run("batch", "list", "-f", "json")
	require.NoError(t, err)

	var got []llm.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "batch-a", got[0].ID)
}

func TestBatchList_Empty(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())

	out, _, err := run("batch", "list")
	require.NoError(t, err)
	assert.Equal(t, "No batches found.\n", out)
}

func TestBatchList_LimitOutOfRange(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	_, _, err := run("batch", "list", "--limit", "500")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Contains(t, err.Error(), "between 0 and 100")
	assert.Zero(t, mock.CallCount())
}

func TestBatchBuild_ThenValidate(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())
	t.Setenv("OPENAI_API_KEY", "")
	writeTestFile(t, "prompts.txt", "What is AI?\n\nName three prime numbers.\n")

	_, stderr, err := run("batch", "build", "--prompts", "prompts.txt", "--out", "nightly.jsonl", "--system", "Be brief.")
	require.NoError(t, err, "build needs no API key")
	assert.Contains(t, stderr, "Wrote 2 requests to nightly.jsonl")

	data, err := os.ReadFile("nightly.jsonl")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"model":"o3-mini"`)
	assert.Contains(t, lines[0], `"Be brief."`)
	assert.Contains(t, lines[1], "Name three prime numbers.")

	resetFlags()
	out, _, err := run("batch", "validate", "nightly.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "nightly.jsonl: 2 requests, all valid\n", out)
}

func TestBatchBuild_Stdin(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())
	rootCmd.SetIn(strings.NewReader("hello\n"))

	out, _, err := run("batch", "build", "-m", "gpt-4o")
	require.NoError(t, err)
	assert.Contains(t, out, `"model":"gpt-4o"`)
	assert.Contains(t, out, `"content":"hello"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestBatchBuild_NoPrompts(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())
	rootCmd.SetIn(strings.NewReader("\n\n"))

	_, _, err := run("batch", "build")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
}

func TestBatchValidate_Invalid(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())
	writeTestFile(t, "bad.jsonl", "not json\n"+
		`{"custom_id":"a","method":"GET","url":"/v1/chat/completions","body":{"model":"m","messages":[{"role":"user","content":"hi"}]}}`+"\n")

	out, _, err := run("batch", "validate", "bad.jsonl")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Contains(t, err.Error(), "2 of 2 lines invalid")
	assert.Contains(t, out, "line 1: invalid JSON")
	assert.Contains(t, out, "line 2:")
}

func TestBatchValidate_MissingFile(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())

	_, _, err := run("batch", "validate", "missing.jsonl")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
}
