// Package cmd implements the spool CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/clierr"
	"github.com/spoolhq/spool/internal/config"
	"github.com/spoolhq/spool/internal/output"
	"github.com/spoolhq/spool/internal/repo"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagIDs     bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "spool",
	Short: "Git-native, event-sourced task tracking",
	Long: `spool tracks tasks as an append-only event log. Task state, the lookup
index, and monthly archives are all derived by replaying events; run
spool with no arguments to browse tasks in the terminal.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || output.ColorDisabled() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagIDs, "ids", false, "output task ids only, one per line")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the .spool directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// SilentError: exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("SPOOL_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error, wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2)
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// discoverRepo resolves the repository context from --dir or by walking
// upward from the working directory.
func discoverRepo() (*repo.Context, error) {
	if flagDir != "" {
		info, err := os.Stat(flagDir)
		if err != nil || !info.IsDir() {
			return nil, clierr.Newf(clierr.RepoNotFound, "no spool repository at %s", flagDir)
		}
		return repo.New(flagDir), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return repo.Discover(cwd)
}

// loadConfig resolves the repository and its config in one step.
func loadConfig() (*repo.Context, *config.Config, error) {
	ctx, err := discoverRepo()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadOrDefault(ctx.Root)
	if err != nil {
		return nil, nil, err
	}
	return ctx, cfg, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagIDs)
}
