package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/awantoch/contentkit/config"
	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/utils"
)

var (
	exit         = os.Exit
	configPath   string
	debug        bool
	templatesDir string
)

// NewRootCmd creates the root 'tmpl' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.CmdRoot,
		Short:         constants.DescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to contentkit config (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.PersistentFlags().StringVar(&templatesDir, "templates-dir", "", "Template directory (overrides config file)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		utils.SetUserOutput(cmd.OutOrStdout())
		utils.SetInternalOutput(cmd.ErrOrStderr())
		if debug {
			utils.SetMode(constants.LogModeDebug)
		}
	}

	rootCmd.AddCommand(
		newRenderCmd(),
		newEvalCmd(),
		newFilterCmd(),
		newFiltersCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist. Command-line overrides are applied last.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		utils.Debug("config file %s not found, using defaults", configPath)
		cfg = config.Default()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
	}
	if templatesDir != "" {
		cfg.Templates.Dir = templatesDir
	}
	if !debug {
		if err := utils.SetLevel(cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
