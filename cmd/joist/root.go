package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/internal/cli"
	"github.com/aretw0/joist/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "joist",
	Short: "Joist is the node tree engine behind drag and drop page builders",
	Long: `Joist keeps page builder documents as a flat tree of nodes and exposes
the editing operations (add, move, delete, props, drag and drop) over HTTP,
MCP and the command line.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.Version = strings.TrimSpace(joist.Version)
	rootCmd.SetVersionTemplate("joist version {{.Version}}\n")
}

// loadConfig reads --config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// loadApp builds the application from configuration.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cli.NewLogger(cfg.Log.Level, cli.IsInteractive())
	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing joist: %w", err)
	}
	return app, nil
}
