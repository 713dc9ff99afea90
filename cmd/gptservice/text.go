package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/gptservice/internal/service"
)

const (
	// defaultPrompt is sent when text is run without a prompt.
	defaultPrompt = "What is AI?"

	// defaultSystemPrompt is the system instruction unless --system is set.
	defaultSystemPrompt = "You are an AI assistant."
)

var systemPrompt string

// textCmd sends a text prompt and prints the reply.
var textCmd = &cobra.Command{
	Use:   "text [prompt]",
	Short: "Send a text prompt and print the reply",
	Long: `Send a system instruction and a user prompt to the configured model and
print the trimmed reply.

Provider-reported errors are retried up to --max-retries attempts in total.
When every attempt fails that way the reply is "` + service.MaxRetriesReached + `" and
the exit code is 4. Network and HTTP failures are not retried.

Without a prompt, "` + defaultPrompt + `" is sent.`,
	Args: cobra.ArbitraryArgs,
	RunE: runText,
}

// imageCmd sends a prompt with images and prints the reply.
var imageCmd = &cobra.Command{
	Use:   "image <prompt> <image>...",
	Short: "Send a prompt with one or more images and print the reply",
	Long: `Send a prompt together with local images to the configured model and print
the trimmed reply. Images are sent in the order given and re-read on every
attempt. Retry behavior matches the text command.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImage,
}

func init() {
	for _, c := range []*cobra.Command{textCmd, imageCmd} {
		c.Flags().StringVar(&systemPrompt, "system", defaultSystemPrompt, "system instruction sent before the prompt")
	}
}

func runText(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if prompt == "" {
		prompt = defaultPrompt
	}

	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	out, err := client.TextToText(cmd.Context(), prompt, systemPrompt, cfg.MaxRetries)
	return printReply(cmd, out, err)
}

func runImage(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	out, err := client.ImageToText(cmd.Context(), args[0], args[1:], systemPrompt, cfg.MaxRetries)
	return printReply(cmd, out, err)
}

// printReply writes a completion result. The exhaustion sentinel is printed
// like any reply and then reported through the exit code.
func printReply(cmd *cobra.Command, out string, err error) error {
	if err != nil {
		return classify(err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if out == service.MaxRetriesReached {
		return exitError(ExitRetriesExhausted, "")
	}
	return nil
}
