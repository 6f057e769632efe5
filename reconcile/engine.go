// Package reconcile merges scheduling bundles into the persistent job store.
//
// The engine is synchronous and single-threaded per Apply call: all blocking
// happens at store I/O boundaries, all writes for one call share a single
// store transaction, and any fatal error rolls the whole call back. Two
// concurrent Apply calls are only safe if serialized by the caller or by the
// store's transactional isolation.
package reconcile

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schedsync/bundle"
	"schedsync/errors"
	"schedsync/store"
)

// Engine reconciles bundles against a job store.
type Engine struct {
	store    store.Store
	defaults Directives
	logger   *zap.SugaredLogger
}

// New creates an engine. defaults are the global directives applied to
// bundles that carry no overrides of their own.
func New(st store.Store, defaults Directives, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{store: st, defaults: defaults, logger: logger}
}

// Apply merges the bundle into the store and commits. Jobs are reconciled
// first, in bundle order, then triggers, so a trigger may reference a job
// introduced by the same bundle. Any fatal error rolls back every write of
// this call; skips are recorded in the report and never abort.
func (e *Engine) Apply(ctx context.Context, b *bundle.Bundle) (*Report, error) {
	return e.run(ctx, b, true)
}

// Plan performs a full apply inside a transaction and then rolls it back,
// returning the report of what Apply would have done. The store is left
// untouched.
func (e *Engine) Plan(ctx context.Context, b *bundle.Bundle) (*Report, error) {
	return e.run(ctx, b, false)
}

func (e *Engine) run(ctx context.Context, b *bundle.Bundle, commit bool) (*Report, error) {
	directives := ResolveDirectives(e.defaults, b.Directives)
	report := &Report{ApplyID: uuid.NewString()}

	log := e.logger.With("apply_id", report.ApplyID)
	log.Infow("Reconciling bundle",
		"jobs", len(b.Jobs),
		"triggers", len(b.Triggers),
		"overwrite", directives.OverwriteExistingData,
		"ignore_duplicates", directives.IgnoreDuplicates,
		"prune_orphans", directives.PruneOrphans,
	)

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin apply")
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warnw("Rollback failed", "error", rbErr)
		}
	}()

	if err := e.reconcileJobs(tx, b, directives, report, log); err != nil {
		return nil, err
	}
	if err := e.reconcileTriggers(tx, b, directives, report, log); err != nil {
		return nil, err
	}
	if err := e.cleanupOrphans(tx, b, directives, report, log); err != nil {
		return nil, err
	}

	if commit {
		if err := tx.Commit(); err != nil {
			return nil, errors.Wrap(err, "commit apply")
		}
		committed = true
	}

	log.Infow("Reconciliation complete", "report", report.String(), "committed", commit)
	return report, nil
}

func (e *Engine) reconcileJobs(tx store.Tx, b *bundle.Bundle, directives Directives, report *Report, log *zap.SugaredLogger) error {
	for _, job := range b.Jobs {
		existing, err := tx.QueryJob(job.Key)
		if err != nil {
			tre, orphaned := store.AsTypeResolution(err)
			if !orphaned {
				return errors.Wrapf(err, "query job %s", job.Key)
			}

			// The stored job is an orphan and this bundle carries its
			// replacement: overwriting is the only action that restores a
			// usable record, whatever the duplicate policy says.
			if err := tx.AddJob(job, true); err != nil {
				return errors.Wrapf(err, "replace orphaned job %s", job.Key)
			}
			report.JobsUpdated++
			report.warnf(store.EntityJob, job.Key,
				"replaced orphaned job: handler %q was unresolvable", tre.Handler)
			log.Warnw("Replaced orphaned job",
				"job", job.Key.String(),
				"old_handler", tre.Handler,
				"new_handler", job.Handler,
			)
			continue
		}

		switch {
		case existing == nil:
			if err := tx.AddJob(job, false); err != nil {
				return errors.Wrapf(err, "add job %s", job.Key)
			}
			report.JobsAdded++
			log.Debugw("Added job", "job", job.Key.String(), "handler", job.Handler)

		case directives.OverwriteExistingData:
			// Replaces data and handler in place; the job's triggers are
			// not touched by this step.
			if err := tx.AddJob(job, true); err != nil {
				return errors.Wrapf(err, "overwrite job %s", job.Key)
			}
			report.JobsUpdated++
			log.Debugw("Overwrote job", "job", job.Key.String(), "handler", job.Handler)

		case directives.IgnoreDuplicates:
			report.JobsSkipped++
			report.Skipped = append(report.Skipped, job.Key)
			log.Debugw("Skipped duplicate job", "job", job.Key.String())

		default:
			return &store.DuplicateEntityError{Kind: store.EntityJob, Key: job.Key}
		}
	}
	return nil
}

func (e *Engine) reconcileTriggers(tx store.Tx, b *bundle.Bundle, directives Directives, report *Report, log *zap.SugaredLogger) error {
	for _, trig := range b.Triggers {
		if err := e.resolveOwningJob(tx, b, trig); err != nil {
			return err
		}

		existing, err := tx.QueryTrigger(trig.Key)
		if err != nil {
			return errors.Wrapf(err, "query trigger %s", trig.Key)
		}

		switch {
		case existing == nil:
			if err := tx.ScheduleTrigger(trig); err != nil {
				return errors.Wrapf(err, "schedule trigger %s", trig.Key)
			}
			report.TriggersAdded++
			log.Debugw("Scheduled trigger",
				"trigger", trig.Key.String(),
				"job", trig.JobKey.String(),
				"first_fire", trig.FirstFireTime(),
			)

		case directives.OverwriteExistingData:
			replacement := Migrate(*existing, trig)
			if err := tx.RescheduleTrigger(trig.Key, replacement); err != nil {
				return errors.Wrapf(err, "reschedule trigger %s", trig.Key)
			}
			report.TriggersUpdated++
			log.Debugw("Rescheduled trigger",
				"trigger", trig.Key.String(),
				"job", trig.JobKey.String(),
				"anchored", replacement.Anchor != nil,
				"next_fire", replacement.FirstFireTime(),
			)

		case directives.IgnoreDuplicates:
			report.TriggersSkipped++
			report.Skipped = append(report.Skipped, trig.Key)
			log.Debugw("Skipped duplicate trigger", "trigger", trig.Key.String())

		default:
			return &store.DuplicateEntityError{Kind: store.EntityTrigger, Key: trig.Key}
		}
	}
	return nil
}

// resolveOwningJob verifies the trigger's job exists in the bundle (already
// written in the job phase) or in the store. A stored owner whose handler
// cannot be resolved is fatal here: no orphan policy can produce a runnable
// trigger for it.
func (e *Engine) resolveOwningJob(tx store.Tx, b *bundle.Bundle, trig bundle.TriggerDescriptor) error {
	if _, inBundle := b.Job(trig.JobKey); inBundle {
		return nil
	}

	owner, err := tx.QueryJob(trig.JobKey)
	if err != nil {
		if _, orphaned := store.AsTypeResolution(err); orphaned {
			return errors.Wrapf(err, "trigger %s references orphaned job", trig.Key)
		}
		return errors.Wrapf(err, "resolve job for trigger %s", trig.Key)
	}
	if owner == nil {
		return &store.UnresolvedJobReferenceError{TriggerKey: trig.Key, JobKey: trig.JobKey}
	}
	return nil
}
