package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"schedsync/bundle"
	"schedsync/config"
	"schedsync/db"
	"schedsync/errors"
	"schedsync/logger"
	"schedsync/reconcile"
	"schedsync/store"
)

// ApplyCmd merges a bundle file into the job store.
var ApplyCmd = &cobra.Command{
	Use:   "apply <bundle-file>",
	Short: "Merge a scheduling bundle into the job store",
	Long: `Parse a YAML scheduling bundle and merge it into the job store.

Jobs are reconciled before triggers, in document order, inside a single
transaction: any fatal error (duplicate under strict directives, trigger
referencing an unknown job) rolls the whole apply back.

Directive defaults come from configuration; the bundle's own directives
block overrides them, and command-line flags override both.

Examples:
  schedsync apply jobs.yaml
  schedsync apply jobs.yaml --dry-run
  schedsync apply jobs.yaml --overwrite=false --ignore-duplicates
  schedsync apply jobs.yaml --db /var/lib/schedsync/jobs.db`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var (
	applyDBFlag        string
	applyOverwriteFlag bool
	applyIgnoreDupFlag bool
	applyPruneFlag     bool
	applyDryRunFlag    bool
)

func init() {
	ApplyCmd.Flags().StringVar(&applyDBFlag, "db", "", "Path to the job store database (overrides configuration)")
	ApplyCmd.Flags().BoolVar(&applyOverwriteFlag, "overwrite", true, "Overwrite existing jobs and triggers")
	ApplyCmd.Flags().BoolVar(&applyIgnoreDupFlag, "ignore-duplicates", false, "Skip duplicates instead of failing when overwrite is off")
	ApplyCmd.Flags().BoolVar(&applyPruneFlag, "prune-orphans", false, "Delete stored jobs whose handler cannot be resolved")
	ApplyCmd.Flags().BoolVar(&applyDryRunFlag, "dry-run", false, "Compute and show the apply report without committing")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	b, err := bundle.ParseFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to parse bundle %s", args[0])
	}

	dbPath := cfg.Database.Path
	if applyDBFlag != "" {
		dbPath = applyDBFlag
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return errors.Wrapf(err, "failed to open job store %s", dbPath)
	}
	defer database.Close()

	var registry *store.HandlerRegistry
	if len(cfg.Reconcile.Handlers) > 0 {
		registry = store.NewHandlerRegistry()
		for _, name := range cfg.Reconcile.Handlers {
			// The CLI never executes jobs; registered handlers exist only so
			// the store can tell resolvable jobs from orphans.
			registry.RegisterFunc(name, nil)
		}
	}

	defaults := applyDirectives(cmd, cfg)
	engine := reconcile.New(store.NewSQLiteStore(database, registry, logger.Logger), defaults, logger.Logger)

	var report *reconcile.Report
	if applyDryRunFlag {
		pterm.Warning.Println("Dry run: no changes will be committed")
		report, err = engine.Plan(cmd.Context(), b)
	} else {
		report, err = engine.Apply(cmd.Context(), b)
	}
	if err != nil {
		pterm.Error.Printf("Apply failed: %v\n", err)
		return err
	}

	renderReport(report, applyDryRunFlag)
	return nil
}

// applyDirectives resolves the global directive defaults: configuration
// first, then any flag the user set explicitly.
func applyDirectives(cmd *cobra.Command, cfg *config.Config) reconcile.Directives {
	defaults := reconcile.Directives{
		OverwriteExistingData: cfg.Reconcile.OverwriteExistingData,
		IgnoreDuplicates:      cfg.Reconcile.IgnoreDuplicates,
		PruneOrphans:          cfg.Reconcile.PruneOrphans,
	}
	if cmd.Flags().Changed("overwrite") {
		defaults.OverwriteExistingData = applyOverwriteFlag
	}
	if cmd.Flags().Changed("ignore-duplicates") {
		defaults.IgnoreDuplicates = applyIgnoreDupFlag
	}
	if cmd.Flags().Changed("prune-orphans") {
		defaults.PruneOrphans = applyPruneFlag
	}
	return defaults
}

func renderReport(report *reconcile.Report, dryRun bool) {
	if dryRun {
		pterm.Success.Println("Plan complete")
	} else {
		pterm.Success.Println("Apply complete")
	}
	pterm.Println()

	tableData := pterm.TableData{
		{"", "Added", "Updated", "Skipped"},
		{"Jobs", pterm.Sprintf("%d", report.JobsAdded), pterm.Sprintf("%d", report.JobsUpdated), pterm.Sprintf("%d", report.JobsSkipped)},
		{"Triggers", pterm.Sprintf("%d", report.TriggersAdded), pterm.Sprintf("%d", report.TriggersUpdated), pterm.Sprintf("%d", report.TriggersSkipped)},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	if report.OrphansPruned > 0 {
		pterm.Printf("Orphans pruned: %d\n", report.OrphansPruned)
	}
	for _, w := range report.Warnings {
		pterm.Warning.Printf("%s %s: %s\n", w.Kind, w.Key, w.Message)
	}
}
