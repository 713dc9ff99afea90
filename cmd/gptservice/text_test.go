package main

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gptservice/internal/llm"
	"github.com/davetashner/gptservice/internal/service"
)

func TestText_DefaultPrompt(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Content: "  AI is the study of intelligent agents.\n"})
	setupCLI(t, mock)

	out, _, err := run("text")
	require.NoError(t, err)
	assert.Equal(t, "AI is the study of intelligent agents.\n", out)

	reqs := mock.Completions()
	require.Len(t, reqs, 1)
	assert.Equal(t, "o3-mini", reqs[0].Model)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, llm.RoleSystem, reqs[0].Messages[0].Role)
	assert.Equal(t, defaultSystemPrompt, reqs[0].Messages[0].Text)
	assert.Equal(t, defaultPrompt, reqs[0].Messages[1].Text)
}

func TestText_PromptAndFlags(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Content: "4"})
	setupCLI(t, mock)

	out, _, err := run("text", "--system", "Answer tersely.", "-m", "gpt-4o", "what", "is", "2+2")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	reqs := mock.Completions()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gpt-4o", reqs[0].Model)
	assert.Equal(t, "Answer tersely.", reqs[0].Messages[0].Text)
	assert.Equal(t, "what is 2+2", reqs[0].Messages[1].Text)
}

func TestText_RetriesExhausted(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{InBandError: &llm.APIError{Code: "server_error", Message: "overloaded"}})
	setupCLI(t, mock)

	out, _, err := run("text", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitRetriesExhausted, exitCodeOf(err))
	assert.Equal(t, service.MaxRetriesReached+"\n", out)
	assert.Equal(t, service.DefaultMaxRetries, mock.CallCount())
}

func TestText_MaxRetriesFlag(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{InBandError: &llm.APIError{Message: "try again"}})
	setupCLI(t, mock)

	_, _, err := run("text", "--max-retries", "2", "hello")
	assert.Equal(t, ExitRetriesExhausted, exitCodeOf(err))
	assert.Equal(t, 2, mock.CallCount())
}

func TestText_RecoversAfterInBandError(t *testing.T) {
	mock := llm.NewMockTransport(
		llm.MockResponse{InBandError: &llm.APIError{Message: "try again"}},
		llm.MockResponse{Content: "ok"},
	)
	setupCLI(t, mock)

	out, _, err := run("text", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
	assert.Equal(t, 2, mock.CallCount())
}

func TestText_TransportErrorNotRetried(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Err: errors.New("connection refused")})
	setupCLI(t, mock)

	_, _, err := run("text", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, mock.CallCount())
}

func TestText_MissingAPIKey(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)
	t.Setenv("OPENAI_API_KEY", "")

	_, _, err := run("text", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, exitCodeOf(err))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Zero(t, mock.CallCount())
}

func TestText_GenericAPIKeyFallback(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Content: "ok"})
	setupCLI(t, mock)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GPTSERVICE_API_KEY", "sk-generic")

	_, _, err := run("text", "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestText_APIKeyFromDotEnv(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Content: "ok"})
	setupCLI(t, mock)
	t.Setenv("OPENAI_API_KEY", "")
	writeTestFile(t, "keys.env", "GPTSERVICE_API_KEY=sk-from-dotenv\n")
	// godotenv never overrides a set variable, even an empty one.
	t.Setenv("GPTSERVICE_API_KEY", "")
	require.NoError(t, os.Unsetenv("GPTSERVICE_API_KEY"))

	_, _, err := run("text", "--env-file", "keys.env", "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestText_InvalidConfig(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)
	writeTestFile(t, ".gptservice.yaml", "provider: bard\n")

	_, _, err := run("text", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, exitCodeOf(err))
	assert.Contains(t, err.Error(), "provider")
	assert.Zero(t, mock.CallCount())
}

func TestText_ConfigFileModel(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Content: "ok"})
	setupCLI(t, mock)
	writeTestFile(t, ".gptservice.yaml", "model: gpt-4o-mini\n")

	_, _, err := run("text", "hello")
	require.NoError(t, err)
	require.Len(t, mock.Completions(), 1)
	assert.Equal(t, "gpt-4o-mini", mock.Completions()[0].Model)
}

func TestImage_SendsImagesInOrder(t *testing.T) {
	mock := llm.NewMockTransport(llm.MockResponse{Content: "two cats"})
	setupCLI(t, mock)
	writeTestFile(t, "a.png", "first")
	writeTestFile(t, "b.png", "second")

	out, _, err := run("image", "What is in these pictures?", "a.png", "b.png")
	require.NoError(t, err)
	assert.Equal(t, "two cats\n", out)

	reqs := mock.Completions()
	require.Len(t, reqs, 1)
	parts := reqs[0].Messages[1].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "What is in these pictures?", parts[0].Text)
	assert.Equal(t, "data:image/jpeg;base64,Zmlyc3Q=", parts[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,c2Vjb25k", parts[2].ImageURL)
}

func TestImage_MissingImage(t *testing.T) {
	mock := llm.NewMockTransport()
	setupCLI(t, mock)

	_, _, err := run("image", "describe", "missing.png")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCodeOf(err))
	assert.Contains(t, err.Error(), "missing.png")
	assert.Zero(t, mock.CallCount())
}

func TestImage_RequiresImage(t *testing.T) {
	setupCLI(t, llm.NewMockTransport())

	_, _, err := run("image", "describe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}
