package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-sessionmix/internal/audio"
	"github.com/alnah/go-sessionmix/internal/cli"
	"github.com/alnah/go-sessionmix/internal/config"
	"github.com/alnah/go-sessionmix/internal/ffmpeg"
	"github.com/alnah/go-sessionmix/internal/interrupt"
	"github.com/alnah/go-sessionmix/internal/mix"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitMix        = 5
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the run so the summary still prints;
	// a second one within the window exits immediately.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "sessionmix",
		Short:   "Mix voice, music and bells into the training session tracks",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.MixCmd(env))
	rootCmd.AddCommand(cli.PlanCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		handler.Stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, ffmpeg.ErrEncoderMissing) {
		return ExitSetup
	}

	if errors.Is(err, cli.ErrInvalidConfig) || errors.Is(err, cli.ErrUnknownConfigKey) ||
		errors.Is(err, cli.ErrInputsMissing) || errors.Is(err, config.ErrInvalidGain) ||
		errors.Is(err, config.ErrInvalidDir) || errors.Is(err, mix.ErrUnknownSession) {
		return ExitValidation
	}

	if errors.Is(err, cli.ErrSessionsFailed) || errors.Is(err, audio.ErrEncodeFailed) {
		return ExitMix
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",          // Missing required flag
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"unknown command",        // Subcommand doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
