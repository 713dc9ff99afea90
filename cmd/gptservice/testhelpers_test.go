package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gptservice/internal/llm"
)

// resetFlags restores every flag in the command tree to its default value.
func resetFlags() {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// newTestCmd returns rootCmd with its output redirected to buffers.
func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd, stdout, stderr
}

// setupCLI isolates a test from the user's environment: a fresh working
// directory, an empty global config dir, a fake API key, and mock as the
// provider backend.
func setupCLI(t *testing.T, mock *llm.MockTransport) {
	t.Helper()
	resetFlags()

	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test-key")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GPTSERVICE_API_KEY", "")

	cmdTransport = mock
	t.Cleanup(func() {
		cmdTransport = nil
		rootCmd.SetIn(nil)
	})
}

// run executes rootCmd with args and returns stdout, stderr and the error.
func run(args ...string) (string, string, error) {
	cmd, stdout, stderr := newTestCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// exitCodeOf returns the exit code main would use for err.
func exitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return ece.code
	}
	return ExitError
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o750))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}
