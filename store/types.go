// Package store defines the persistent job store the reconciliation engine
// writes to: record types, the transactional store interface, handler
// resolution, and a SQLite implementation.
//
// The engine depends only on the Store and Tx interfaces, never on a concrete
// persistence technology, so in-memory or server-backed stores can be swapped
// in without touching reconciliation logic.
package store

import (
	"context"
	"time"

	"schedsync/bundle"
)

// JobRecord is the store's view of a persisted job.
type JobRecord struct {
	Key         bundle.Key
	Handler     string
	Durable     bool
	Recoverable bool
	Data        map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TriggerRecord is the store's view of a persisted trigger. PrevFireTime and
// NextFireTime are store-only: the firing runtime maintains them, and the
// reconciler reads PrevFireTime only to anchor replacement triggers.
type TriggerRecord struct {
	Key    bundle.Key
	JobKey bundle.Key

	Schedule  bundle.Schedule
	StartTime time.Time
	EndTime   *time.Time
	Priority  int
	Calendar  string
	Data      map[string]string

	PrevFireTime *time.Time
	NextFireTime *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store opens transactions over the persistent job store.
type Store interface {
	// Begin starts a transaction. Every write the engine performs for one
	// apply call happens inside a single Tx.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one logical transaction over the job store. Writes become visible to
// other observers only at Commit; Rollback discards everything. Queries
// observe the transaction's own uncommitted writes.
type Tx interface {
	// QueryJob returns the job with the given key, or nil when absent.
	// Returns a *TypeResolutionError when the job exists but its handler is
	// no longer registered.
	QueryJob(key bundle.Key) (*JobRecord, error)

	// QueryTrigger returns the trigger with the given key, or nil when absent.
	QueryTrigger(key bundle.Key) (*TriggerRecord, error)

	// AddJob persists a job. With replace false, an existing job with the
	// same key yields a *DuplicateEntityError; with replace true the job's
	// handler, flags, and data are replaced in place, leaving its triggers
	// untouched.
	AddJob(job bundle.JobDescriptor, replace bool) error

	// ScheduleTrigger persists a new trigger. Yields *DuplicateEntityError
	// when the key exists and *UnresolvedJobReferenceError when the owning
	// job is absent.
	ScheduleTrigger(desc bundle.TriggerDescriptor) error

	// RescheduleTrigger atomically replaces the trigger under oldKey with
	// desc, preserving the stored fire history so the owning job is never
	// left without an active trigger between delete and add.
	RescheduleTrigger(oldKey bundle.Key, desc bundle.TriggerDescriptor) error

	// DeleteJob removes a job and, by cascade, all of its triggers.
	DeleteJob(key bundle.Key) error

	// TriggersForJob lists the triggers owned by a job, in key order.
	TriggersForJob(key bundle.Key) ([]TriggerRecord, error)

	// UnresolvableJobs lists persisted jobs whose handler is not registered.
	UnresolvableJobs() ([]JobRecord, error)

	Commit() error
	Rollback() error
}
