package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"schedsync/bundle"
)

// ValidateCmd parses a bundle file without touching any store.
var ValidateCmd = &cobra.Command{
	Use:   "validate <bundle-file>",
	Short: "Parse and validate a scheduling bundle",
	Long: `Parse a YAML scheduling bundle and run structural validation:
unique keys, non-empty handler names, well-formed schedules, and
consistent time windows. The job store is never opened.

Examples:
  schedsync validate jobs.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	b, err := bundle.ParseFile(args[0])
	if err != nil {
		pterm.Error.Printf("Bundle is invalid: %v\n", err)
		return err
	}

	pterm.Success.Printf("Bundle is valid: %d job(s), %d trigger(s)\n", len(b.Jobs), len(b.Triggers))
	if b.Directives != nil {
		pterm.Info.Println("Bundle overrides processing directives")
	}
	return nil
}
