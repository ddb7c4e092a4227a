// Package cli implements the juryclean command line.
package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/juryclean/internal/config"
	"github.com/JonMunkholm/juryclean/internal/logging"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "juryclean",
	Short: "Reconcile jury usage spreadsheets onto one schema",
	Long: `juryclean maps jury usage CSV exports with inconsistent column names
onto a single canonical table, derives utilization and case fields, and
writes a per-file log of what was matched and why.

Settings come from JURYCLEAN_* environment variables (and a .env file);
flags override them.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("rules", "", "YAML file overriding the built-in column rules")
	pf.String("mode", "", "header normalization mode: exact or fold")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment, applies flag overrides and sets up
// logging on stderr so stdout stays clean for command output.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}

	overrideString(cmd, "log-level", &c.Logging.Level)
	overrideString(cmd, "log-format", &c.Logging.Format)
	overrideString(cmd, "rules", &c.Clean.RulesFile)
	overrideString(cmd, "mode", &c.Clean.Mode)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	cfg = c
	logger = logging.Setup(cmd.ErrOrStderr(), c.Logging.Level, c.Logging.Format)
	logger.Debug("configuration loaded", "config", c.String())
	return nil
}

// overrideString sets dst from the named flag when it was given.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

// overrideInt sets dst from the named flag when it was given.
func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		if v, err := strconv.Atoi(f.Value.String()); err == nil {
			*dst = v
		}
	}
}

// overrideBool sets dst from the named flag when it was given.
func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		if v, err := strconv.ParseBool(f.Value.String()); err == nil {
			*dst = v
		}
	}
}
