package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schedsync/cmd/schedsync/commands"
	"schedsync/logger"
)

var rootCmd = &cobra.Command{
	Use:   "schedsync",
	Short: "schedsync - declarative scheduling data reconciliation",
	Long: `schedsync - Reconcile declarative scheduling bundles into a job store.

Bundles are YAML documents listing jobs, their triggers, and processing
directives. Applying a bundle merges it into the persistent store: new
entities are added, existing ones are overwritten, skipped, or rejected
per the directives, and firing continuity is preserved for triggers that
already fired.

Examples:
  schedsync apply jobs.yaml                # Merge a bundle into the store
  schedsync apply jobs.yaml --dry-run      # Show what apply would do
  schedsync validate jobs.yaml             # Parse and validate only
  schedsync version                        # Show build information`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.ApplyCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
