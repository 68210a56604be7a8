// Package cmd wires the s4bridge CLI: serve, extract, migrate, plan,
// profiles, status.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	version   = "dev"
	commit    = "none"
	date      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "s4bridge",
	Short: "s4bridge — ERP to S/4HANA migration toolkit",
	Long: `s4bridge extracts configuration and master data from SAP ECC,
Infor LN, Infor M3, and Lawson systems, maps it to S/4HANA migration
objects, and plans the migration.

Run "s4bridge serve" for the dashboard, or "s4bridge extract" for a
forensic extraction run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Local overrides for connection profiles; missing file is fine.
		godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.s4bridge/s4bridge.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}

// loadConfig reads the configured file; a missing default file yields
// the built-in defaults so the CLI works before any setup.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if cfgFile == "" && errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// setupLogger builds the logger from config with flag overrides.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}
	return logging.Setup(level, cfg.Logging.Directory, format)
}
