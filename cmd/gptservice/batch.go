package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/davetashner/gptservice/internal/batchfile"
	"github.com/davetashner/gptservice/internal/config"
	"github.com/davetashner/gptservice/internal/output"
)

// Batch command flags.
var (
	batchFormat   string
	batchLimit    int
	batchOutput   string
	batchWait     bool
	batchInterval time.Duration
	buildPrompts  string
	buildOut      string
	buildSystem   string
)

// batchCmd is the parent command for the batch workflow.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Upload, submit, poll, fetch and cancel batch jobs",
	Long: `Work with asynchronous batch jobs.

A typical nightly run:
  gptservice batch build --prompts prompts.txt --out nightly.jsonl
  gptservice batch validate nightly.jsonl
  gptservice batch upload nightly.jsonl          # prints the input file ID
  gptservice batch create <file-id>
  gptservice batch status --wait <batch-id>      # prints the output file ID
  gptservice batch result <output-file-id> -o results.jsonl`,
}

var batchUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a JSONL batch input file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchUpload,
}

var batchCreateCmd = &cobra.Command{
	Use:   "create <input-file-id>",
	Short: "Submit a batch job over an uploaded input file",
	Long: `Submit a batch job targeting the chat completions endpoint with a 24h
completion window. The job carries a metadata description, "nightly eval job"
unless batch_description is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCreate,
}

var batchStatusCmd = &cobra.Command{
	Use:   "status <batch-id>",
	Short: "Show the state of a batch job",
	Long: `Show the state of a batch job. With --wait, poll every --interval until the
job is completed, failed, expired or cancelled.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchStatus,
}

var batchResultCmd = &cobra.Command{
	Use:   "result <output-file-id>",
	Short: "Fetch the raw output of a finished batch job",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchResult,
}

var batchCancelCmd = &cobra.Command{
	Use:   "cancel <batch-id>",
	Short: "Request cancellation of a batch job",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchCancel,
}

var batchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent batch jobs",
	Args:  cobra.NoArgs,
	RunE:  runBatchList,
}

var batchBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a JSONL batch input file from a list of prompts",
	Long: `Read one prompt per line from --prompts (or stdin) and write one chat
completion request per prompt, each with a fresh custom_id. The model comes
from --model or the config files.`,
	Args: cobra.NoArgs,
	RunE: runBatchBuild,
}

var batchValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a JSONL batch input file before uploading it",
	Long: `Check every line of a batch input file against the request schema and for
duplicate custom_id values. Exits with code 2 when any line is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchValidate,
}

func init() {
	batchCmd.PersistentFlags().StringVarP(&batchFormat, "format", "f", output.DefaultFormat, "output format: text, json, or yaml")
	batchListCmd.Flags().IntVar(&batchLimit, "limit", 0, "maximum number of jobs to list (default 10)")
	batchResultCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write the result to this file instead of stdout")
	batchStatusCmd.Flags().BoolVar(&batchWait, "wait", false, "poll until the job reaches a terminal state")
	batchStatusCmd.Flags().DurationVar(&batchInterval, "interval", 30*time.Second, "polling interval for --wait")
	batchBuildCmd.Flags().StringVar(&buildPrompts, "prompts", "", "file with one prompt per line (default stdin)")
	batchBuildCmd.Flags().StringVar(&buildOut, "out", "", "write the JSONL file here instead of stdout")
	batchBuildCmd.Flags().StringVar(&buildSystem, "system", "", "system instruction added to every request")

	batchCmd.AddCommand(batchUploadCmd, batchCreateCmd, batchStatusCmd, batchResultCmd,
		batchCancelCmd, batchListCmd, batchBuildCmd, batchValidateCmd)
}

func batchFormatter() (output.Formatter, error) {
	f, err := output.GetFormatter(batchFormat)
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "%v", err)
	}
	return f, nil
}

func runBatchUpload(cmd *cobra.Command, args []string) error {
	formatter, err := batchFormatter()
	if err != nil {
		return err
	}
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	f, err := client.UploadBatchFile(cmd.Context(), args[0])
	if err != nil {
		return classify(err)
	}
	return formatter.File(cmd.OutOrStdout(), f)
}

func runBatchCreate(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	if err := client.CreateBatchFile(cmd.Context(), args[0]); err != nil {
		return classify(err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Batch job submitted for input file %s.\n", args[0])
	return nil
}

func runBatchStatus(cmd *cobra.Command, args []string) error {
	formatter, err := batchFormatter()
	if err != nil {
		return err
	}
	if batchWait && batchInterval <= 0 {
		return exitError(ExitInvalidArgs, "--interval must be positive, got %s", batchInterval)
	}
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for {
		b, err := client.CheckBatchStatus(ctx, args[0])
		if err != nil {
			return classify(err)
		}
		if !batchWait || b.Terminal() {
			return formatter.Batch(cmd.OutOrStdout(), b)
		}
		cmd.PrintErrf("%s: %s (%d/%d)\n", b.ID, b.Status, b.RequestCounts.Completed, b.RequestCounts.Total)

		timer := time.NewTimer(batchInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func runBatchResult(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	content, err := client.RetrievalBatchResult(cmd.Context(), args[0])
	if err != nil {
		return classify(err)
	}
	if batchOutput != "" {
		if err := cmdFS.WriteFile(batchOutput, []byte(content), 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", batchOutput, err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(content), batchOutput)
		return nil
	}
	_, err = io.WriteString(cmd.OutOrStdout(), content)
	return err
}

func runBatchCancel(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	if err := client.CancelBatchResult(cmd.Context(), args[0]); err != nil {
		return classify(err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for batch %s.\n", args[0])
	return nil
}

func runBatchList(cmd *cobra.Command, _ []string) error {
	formatter, err := batchFormatter()
	if err != nil {
		return err
	}
	if batchLimit < 0 || batchLimit > config.MaxBatchLimit {
		return exitError(ExitInvalidArgs, "--limit must be between 0 and %d (0 uses batch_limit or 10), got %d", config.MaxBatchLimit, batchLimit)
	}
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	limit := batchLimit
	if limit == 0 {
		limit = cfg.BatchLimit
	}
	bs, err := client.GetAllBatchID(cmd.Context(), limit)
	if err != nil {
		return classify(err)
	}
	return formatter.Batches(cmd.OutOrStdout(), bs)
}

func runBatchBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if buildPrompts != "" {
		f, err := cmdFS.Open(buildPrompts)
		if err != nil {
			if os.IsNotExist(err) {
				return exitError(ExitInvalidArgs, "prompts file %s does not exist", buildPrompts)
			}
			return err
		}
		defer f.Close() //nolint:errcheck // read-only file
		in = f
	}

	prompts, err := batchfile.ReadPrompts(in)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		return exitError(ExitInvalidArgs, "no prompts to build")
	}

	var buf bytes.Buffer
	n, err := batchfile.Build(&buf, cfg.Model, buildSystem, prompts)
	if err != nil {
		return err
	}

	if buildOut == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := cmdFS.WriteFile(buildOut, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", buildOut, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d requests to %s\n", n, buildOut)
	return nil
}

func runBatchValidate(cmd *cobra.Command, args []string) error {
	f, err := cmdFS.Open(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return exitError(ExitInvalidArgs, "file %s does not exist", args[0])
		}
		return err
	}
	defer f.Close() //nolint:errcheck // read-only file

	report, err := batchfile.Validate(f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if report.Valid() {
		_, _ = fmt.Fprintf(w, "%s: %d requests, all valid\n", args[0], report.Lines)
		return nil
	}
	for _, e := range report.Errors {
		_, _ = fmt.Fprintln(w, e.String())
	}
	return exitError(ExitInvalidArgs, "%s: %d of %d lines invalid", args[0], len(report.Errors), report.Lines)
}
