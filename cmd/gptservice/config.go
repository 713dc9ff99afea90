package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davetashner/gptservice/internal/config"
)

// Config command flags.
var configGlobal bool

// configCmd is the parent command for config subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify gptservice configuration",
	Long: `View and modify gptservice configuration.

gptservice reads .gptservice.yaml (or .gptservice.toml) in the working
directory. A global config at ~/.config/gptservice/config.yaml provides
defaults. Project settings override global settings, and flags override both.

Note: config set does a YAML round-trip and will not preserve comments.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value from the merged configuration.

Examples:
  gptservice config get model
  gptservice config get --global max_retries`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in .gptservice.yaml, or in the global config with
--global. Values are read as bool, int, or string. The API key is never
stored in config files.

Examples:
  gptservice config set model gpt-4o
  gptservice config set max_retries 5
  gptservice config set --global provider anthropic`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List set configuration values with their source",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func init() {
	configGetCmd.Flags().BoolVar(&configGlobal, "global", false, "use global config (~/.config/gptservice/config.yaml)")
	configSetCmd.Flags().BoolVar(&configGlobal, "global", false, "write to global config (~/.config/gptservice/config.yaml)")

	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configListCmd)
}

// fileConfig merges the global and project config files without flags.
func fileConfig() (*config.Config, error) {
	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return nil, exitError(ExitConfig, "loading global config: %v", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return nil, exitError(ExitConfig, "loading config: %v", err)
	}
	return config.Merge(globalCfg, repoCfg), nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	return config.Write(cmd.OutOrStdout(), cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configGlobal {
		cfg, err = config.LoadGlobal()
		if err != nil {
			return exitError(ExitConfig, "loading global config: %v", err)
		}
	} else if cfg, err = fileConfig(); err != nil {
		return err
	}

	val, err := config.GetValue(cfg, args[0])
	if err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, rawValue := args[0], args[1]
	if err := config.ValidateKey(key); err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}

	targetPath := filepath.Join(".", config.FileName)
	if configGlobal {
		targetPath = config.GlobalConfigPath()
	} else if _, err := os.Stat(targetPath); errors.Is(err, fs.ErrNotExist) {
		if _, err := os.Stat(config.TOMLFileName); err == nil {
			return exitError(ExitConfig, "%s is in use; edit it directly", config.TOMLFileName)
		}
	}

	data, err := config.LoadRaw(targetPath)
	if err != nil {
		return exitError(ExitConfig, "loading config file: %v", err)
	}
	if err := config.SetValue(data, key, rawValue); err != nil {
		return exitError(ExitInvalidArgs, "setting value: %v", err)
	}

	roundTrip, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var validCfg config.Config
	if err := yaml.Unmarshal(roundTrip, &validCfg); err != nil {
		return exitError(ExitInvalidArgs, "invalid value for %s: %v", key, err)
	}
	if err := config.Validate(&validCfg); err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}

	if err := config.WriteFile(targetPath, data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, rawValue)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return exitError(ExitConfig, "loading global config: %v", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return exitError(ExitConfig, "loading config: %v", err)
	}
	globalMap, err := config.ToMap(globalCfg)
	if err != nil {
		return err
	}
	repoMap, err := config.ToMap(repoCfg)
	if err != nil {
		return err
	}

	if len(globalMap) == 0 && len(repoMap) == 0 {
		_, _ = fmt.Fprintln(w, "No configuration set.")
		return nil
	}

	globalColor := color.New(color.FgCyan)
	repoColor := color.New(color.FgGreen)
	for _, k := range config.Keys() {
		if v, ok := repoMap[k]; ok {
			_, _ = fmt.Fprintf(w, "%s = %v %s\n", k, v, repoColor.Sprint("(project)"))
		} else if v, ok := globalMap[k]; ok {
			_, _ = fmt.Fprintf(w, "%s = %v %s\n", k, v, globalColor.Sprint("(global)"))
		}
	}
	return nil
}
