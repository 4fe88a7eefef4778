// Command simulate runs the demo population generator offline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bridgefeed/internal/observability"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate and inspect simulated bridgefeed populations",
		Long: `simulate builds the demo population, lets every user react to every post
through the reaction simulator, and reports the resulting diversity scores.

The same seed always produces the same population.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			// logs go to stderr so stdout stays machine readable
			observability.Logger = observability.NewLogger(os.Getenv("APP_ENV"), level, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Int64("seed", 1, "Random seed (0 means time based)")
	rootCmd.PersistentFlags().Int("extra-users", 0, "Users with sampled profiles added to the fixture")
	rootCmd.PersistentFlags().String("population", "", "Population YAML file (defaults to the built-in fixture)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newArchiveCmd(),
	)
	return rootCmd
}
