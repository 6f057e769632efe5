// Package bundle defines the parsed, validated representation of a scheduling
// document: job and trigger descriptors, their schedules, and the conflict
// directives that govern how the reconciler merges them into the store.
//
// Descriptors are immutable once parsed and consumed once per apply call.
package bundle

// JobDescriptor describes a job to be persisted in the store.
type JobDescriptor struct {
	Key Key

	// Handler names the job's implementation type. It is resolved lazily:
	// adding a job with an unknown handler succeeds, and resolution failures
	// surface later as orphans during reconciliation.
	Handler string

	// Durable jobs remain in the store even when no trigger references them.
	Durable bool

	// Recover requests re-execution after an ungraceful shutdown mid-run.
	// Enforced by the firing runtime, persisted here.
	Recover bool

	// Data is the job's key/value payload. Insertion order is irrelevant.
	Data map[string]string
}
