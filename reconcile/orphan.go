package reconcile

import (
	"go.uber.org/zap"

	"schedsync/bundle"
	"schedsync/errors"
	"schedsync/store"
)

// cleanupOrphans handles stored jobs whose handler can no longer be resolved
// and which the bundle does not touch. With the prune directive set they are
// deleted together with their triggers (one cascading delete, so no trigger
// ever points at a removed job); without it they are surfaced as warnings and
// left in place. Orphans the bundle replaces were already overwritten during
// the job phase and no longer show up here.
func (e *Engine) cleanupOrphans(tx store.Tx, b *bundle.Bundle, directives Directives, report *Report, log *zap.SugaredLogger) error {
	orphans, err := tx.UnresolvableJobs()
	if err != nil {
		return errors.Wrap(err, "list orphaned jobs")
	}

	for _, orphan := range orphans {
		if b.ReferencesJob(orphan.Key) {
			continue
		}

		if !directives.PruneOrphans {
			report.warnf(store.EntityJob, orphan.Key,
				"orphaned job left in store: handler %q cannot be resolved", orphan.Handler)
			log.Warnw("Orphaned job left in store",
				"job", orphan.Key.String(),
				"handler", orphan.Handler,
			)
			continue
		}

		triggers, err := tx.TriggersForJob(orphan.Key)
		if err != nil {
			return errors.Wrapf(err, "list triggers for orphaned job %s", orphan.Key)
		}
		if err := tx.DeleteJob(orphan.Key); err != nil {
			return errors.Wrapf(err, "delete orphaned job %s", orphan.Key)
		}

		report.OrphansPruned++
		report.warnf(store.EntityJob, orphan.Key,
			"pruned orphaned job and %d trigger(s): handler %q cannot be resolved",
			len(triggers), orphan.Handler)
		log.Infow("Pruned orphaned job",
			"job", orphan.Key.String(),
			"handler", orphan.Handler,
			"triggers_removed", len(triggers),
		)
	}
	return nil
}
