package reconcile

import (
	"fmt"

	"schedsync/bundle"
	"schedsync/store"
)

// Warning records a non-fatal condition encountered during an apply, in
// processing order.
type Warning struct {
	Kind    store.EntityKind
	Key     bundle.Key
	Message string
}

// Report summarizes one apply call. Entities appear in counts exactly once;
// bundle order is preserved in Skipped and Warnings.
type Report struct {
	// ApplyID identifies this apply call in logs.
	ApplyID string

	JobsAdded   int
	JobsUpdated int
	JobsSkipped int

	TriggersAdded   int
	TriggersUpdated int
	TriggersSkipped int

	// OrphansPruned counts stored jobs deleted by orphan cleanup.
	OrphansPruned int

	// Skipped lists the keys of entities left untouched because duplicates
	// are being ignored.
	Skipped []bundle.Key

	Warnings []Warning
}

func (r *Report) warnf(kind store.EntityKind, key bundle.Key, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Warning{
		Kind:    kind,
		Key:     key,
		Message: fmt.Sprintf(format, args...),
	})
}

// String returns a one-line summary.
func (r *Report) String() string {
	return fmt.Sprintf(
		"jobs: %d added, %d updated, %d skipped; triggers: %d added, %d updated, %d skipped; orphans pruned: %d",
		r.JobsAdded, r.JobsUpdated, r.JobsSkipped,
		r.TriggersAdded, r.TriggersUpdated, r.TriggersSkipped,
		r.OrphansPruned,
	)
}
