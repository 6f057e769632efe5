package bundle

import (
	"schedsync/errors"
)

// Bundle is one parsed scheduling document: ordered jobs, ordered triggers,
// and optional document-level directives. Documents may organize entities
// into named schedule sections; sections are merged into these flat lists at
// parse time and have no runtime effect.
type Bundle struct {
	Jobs     []JobDescriptor
	Triggers []TriggerDescriptor

	// Directives carries the document's policy overrides, nil when the
	// document declared none.
	Directives *Directives
}

// Job returns the bundle's job descriptor for key, if present.
func (b *Bundle) Job(key Key) (*JobDescriptor, bool) {
	for i := range b.Jobs {
		if b.Jobs[i].Key == key {
			return &b.Jobs[i], true
		}
	}
	return nil, false
}

// ReferencesJob reports whether the bundle declares a job with key or any
// trigger owned by it.
func (b *Bundle) ReferencesJob(key Key) bool {
	if _, ok := b.Job(key); ok {
		return true
	}
	for i := range b.Triggers {
		if b.Triggers[i].JobKey == key {
			return true
		}
	}
	return false
}

// Validate checks structural invariants: unique keys per entity kind,
// non-empty identity and handler fields, and well-formed triggers. A trigger
// may reference a job absent from the bundle — the reference is resolved
// against the store at apply time.
func (b *Bundle) Validate() error {
	jobKeys := make(map[Key]struct{}, len(b.Jobs))
	for _, job := range b.Jobs {
		if job.Key.Name == "" {
			return errors.NewMalformedBundleError("job with empty name")
		}
		if job.Handler == "" {
			return errors.NewMalformedBundleError("job %s: empty handler", job.Key)
		}
		if _, dup := jobKeys[job.Key]; dup {
			return errors.NewMalformedBundleError("duplicate job key %s in bundle", job.Key)
		}
		jobKeys[job.Key] = struct{}{}
	}

	triggerKeys := make(map[Key]struct{}, len(b.Triggers))
	for _, trig := range b.Triggers {
		if trig.Key.Name == "" {
			return errors.NewMalformedBundleError("trigger with empty name")
		}
		if _, dup := triggerKeys[trig.Key]; dup {
			return errors.NewMalformedBundleError("duplicate trigger key %s in bundle", trig.Key)
		}
		triggerKeys[trig.Key] = struct{}{}

		if trig.JobKey.IsZero() {
			return errors.NewMalformedBundleError("trigger %s: missing job reference", trig.Key)
		}
		if trig.Schedule == nil {
			return errors.NewMalformedBundleError("trigger %s: missing schedule", trig.Key)
		}
		if trig.StartTime.IsZero() {
			return errors.NewMalformedBundleError("trigger %s: missing start time", trig.Key)
		}
		if trig.EndTime != nil && trig.EndTime.Before(trig.StartTime) {
			return errors.NewMalformedBundleError("trigger %s: end time before start time", trig.Key)
		}
	}

	return nil
}
