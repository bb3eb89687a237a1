package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-fatsecret/internal/apierr"
	"github.com/alnah/go-fatsecret/internal/cli"
	"github.com/alnah/go-fatsecret/internal/config"
	"github.com/alnah/go-fatsecret/internal/lang"
	"github.com/alnah/go-fatsecret/internal/log"
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
	ExitNotFound   = 5
	ExitAPI        = 6
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(log.FromEnv(os.Getenv))
	env := cli.NewEnv(cli.WithLogger(logger))

	rootCmd := &cobra.Command{
		Use:   "fatsecret",
		Short: "Search foods, recipes and barcodes in the FatSecret Platform API",
		Long: `Search foods, recipes and barcodes in the FatSecret Platform API.

Credentials come from ~/.config/go-fatsecret/config, FATSECRET_* environment
variables or a .env file. See "fatsecret config --help".`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cli.RegisterGlobalFlags(rootCmd, env)

	rootCmd.AddCommand(cli.FoodsCmd(env))
	rootCmd.AddCommand(cli.FoodCmd(env))
	rootCmd.AddCommand(cli.BarcodeCmd(env))
	rootCmd.AddCommand(cli.RecipesCmd(env))
	rootCmd.AddCommand(cli.RecipeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: nothing can work until configuration is fixed.
	if errors.Is(err, config.ErrCredentialsMissing) || errors.Is(err, config.ErrInvalidSyntax) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrUnknownKey) {
		return ExitSetup
	}

	if errors.Is(err, apierr.ErrValidation) || errors.Is(err, cli.ErrInvalidFlag) ||
		errors.Is(err, cli.ErrDuplicateID) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, lang.ErrInvalidRegion) {
		return ExitValidation
	}

	if errors.Is(err, apierr.ErrFoodNotFound) || errors.Is(err, apierr.ErrRecipeNotFound) ||
		errors.Is(err, apierr.ErrBarcodeNotFound) {
		return ExitNotFound
	}

	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrTransport) || errors.Is(err, apierr.ErrParse) ||
		errors.Is(err, apierr.ErrRemote) {
		return ExitAPI
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
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
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
