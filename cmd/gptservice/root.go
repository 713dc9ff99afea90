package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davetashner/gptservice/internal/config"
	gptlog "github.com/davetashner/gptservice/internal/log"
)

// Global flag values.
var (
	verbose bool
	quiet   bool
	noColor bool
)

// Client flag values. Zero values fall through to the config files.
var (
	flagProvider   string
	flagModel      string
	flagAPIKey     string
	flagBaseURL    string
	flagTimeout    string
	flagMaxRetries int
	flagEnvFile    string
)

// rootCmd is the base command for gptservice.
var rootCmd = &cobra.Command{
	Use:   "gptservice",
	Short: "Talk to a hosted language model from the command line",
	Long: `gptservice wraps a hosted language model behind a small set of
operations: text and image completions with a bounded retry on
provider-reported errors, and the batch workflow of uploading a JSONL input
file, submitting a job, polling it, fetching its output, and cancelling it.

Settings come from flags, then .gptservice.yaml (or .gptservice.toml) in the
working directory, then ~/.config/gptservice/config.yaml. The API key is read
from --api-key, the provider's environment variable, or GPTSERVICE_API_KEY;
a .env file in the working directory is loaded first.

Exit codes: 0 success, 1 transport or unexpected error, 2 invalid arguments,
3 configuration error, 4 retries exhausted, 5 unsupported by the provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		gptlog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	pf.StringVar(&flagProvider, "provider", "", "model provider: openai or anthropic (default openai)")
	pf.StringVarP(&flagModel, "model", "m", "", "model identifier (default "+config.DefaultModel+")")
	pf.StringVar(&flagAPIKey, "api-key", "", "API key (default from the provider's environment variable)")
	pf.StringVar(&flagBaseURL, "base-url", "", "override the provider API base URL")
	pf.StringVar(&flagTimeout, "timeout", "", "per-request timeout, e.g. 90s")
	pf.IntVar(&flagMaxRetries, "max-retries", 0, "total attempts on provider-reported errors (default 3)")
	pf.StringVar(&flagEnvFile, "env-file", ".env", "dotenv file loaded before reading the API key")

	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}
