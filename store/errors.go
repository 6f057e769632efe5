package store

import (
	"fmt"

	"schedsync/bundle"
	"schedsync/errors"
)

// EntityKind distinguishes jobs from triggers in errors and reports.
type EntityKind string

const (
	EntityJob     EntityKind = "job"
	EntityTrigger EntityKind = "trigger"
)

// DuplicateEntityError reports that an entity already exists in the store and
// the effective directives forbid both overwrite and skip. Fatal to the
// apply call that raised it.
type DuplicateEntityError struct {
	Kind EntityKind
	Key  bundle.Key
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.Key)
}

// UnresolvedJobReferenceError reports a trigger whose owning job exists
// neither in the bundle being applied nor in the store. Fatal.
type UnresolvedJobReferenceError struct {
	TriggerKey bundle.Key
	JobKey     bundle.Key
}

func (e *UnresolvedJobReferenceError) Error() string {
	return fmt.Sprintf("trigger %s references unknown job %s", e.TriggerKey, e.JobKey)
}

// TypeResolutionError reports a persisted job whose handler is no longer
// registered. Raised by the store's lookups, resolved by the engine's orphan
// policy; fatal only when no policy applies.
type TypeResolutionError struct {
	JobKey  bundle.Key
	Handler string
}

func (e *TypeResolutionError) Error() string {
	return fmt.Sprintf("job %s: handler %q cannot be resolved", e.JobKey, e.Handler)
}

// IsDuplicate reports whether err is or wraps a DuplicateEntityError.
func IsDuplicate(err error) bool {
	var dup *DuplicateEntityError
	return errors.As(err, &dup)
}

// AsTypeResolution extracts a TypeResolutionError from err's chain.
func AsTypeResolution(err error) (*TypeResolutionError, bool) {
	var tre *TypeResolutionError
	ok := errors.As(err, &tre)
	return tre, ok
}
