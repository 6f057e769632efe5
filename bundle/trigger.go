package bundle

import "time"

// DefaultPriority is assigned to triggers declared without one.
const DefaultPriority = 5

// TriggerDescriptor describes a trigger to be persisted in the store.
type TriggerDescriptor struct {
	Key    Key
	JobKey Key

	Schedule Schedule

	// StartTime is the declared start boundary. The first fire of a fresh
	// trigger happens at StartTime; for a replacement trigger with an Anchor
	// it remains the formal validity boundary only.
	StartTime time.Time

	// EndTime, when set, bounds the trigger's validity window.
	EndTime *time.Time

	Priority int

	// Calendar optionally names an exclusion calendar applied by the runtime.
	Calendar string

	// Data overrides merged over the owning job's data at execution time.
	Data map[string]string

	// Anchor is the continuity anchor: the previous trigger's last actual
	// fire time, set by the continuity migrator when this descriptor
	// replaces an existing trigger. Freshly parsed descriptors never carry
	// one.
	Anchor *time.Time
}

// FirstFireTime returns the reference the store records as the trigger's next
// fire. Anchored descriptors continue the previous trigger's cadence under
// the new schedule; unanchored ones start at their declared start time.
//
// Pure: the result depends only on the descriptor, never on the clock.
func (t TriggerDescriptor) FirstFireTime() time.Time {
	if t.Anchor != nil && t.Schedule != nil {
		if next, ok := t.Schedule.NextAfter(*t.Anchor); ok {
			return next
		}
	}
	return t.StartTime
}
