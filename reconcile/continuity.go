package reconcile

import (
	"schedsync/bundle"
	"schedsync/store"
)

// Migrate computes the replacement descriptor for a trigger being overwritten,
// so periodic triggers continue their cadence instead of restarting from the
// wall clock.
//
// If the old trigger never fired, the descriptor is returned unchanged and
// the new trigger starts per its own declared start time. Otherwise the old
// trigger's last actual fire time becomes the descriptor's continuity anchor:
// the store derives the next fire as the new schedule's first fire strictly
// after that anchor (previousFireTime + interval for fixed intervals, first
// matching instant for cron).
//
// Pure function of (old record, new descriptor); the current time never
// enters, so repeated reconciliation runs compute the same anchor.
func Migrate(old store.TriggerRecord, desc bundle.TriggerDescriptor) bundle.TriggerDescriptor {
	if old.PrevFireTime == nil {
		return desc
	}
	anchor := *old.PrevFireTime
	desc.Anchor = &anchor
	return desc
}
