package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"CommonsSim/internal/config"
	"CommonsSim/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "commonsim",
		Short:         "Token engineering simulation of a Commons with conviction voting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to config.yaml (default $CONFIG_PATH or configs/config.yaml)")

	root.AddCommand(newRunCmd(), newScheduleCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "commonsim", version)
		},
	}
}

// loadConfig resolves the config path, loads and validates it, and installs
// the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			cfgPath = v
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(logging.NewLogger(cfg.Logging.Level, os.Stderr))
	slog.Debug("config loaded", "path", cfgPath)
	return cfg, nil
}
