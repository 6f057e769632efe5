package reconcile

import "schedsync/bundle"

// Directives is the effective conflict policy for one apply call, after
// document overrides have been resolved against the engine's defaults.
type Directives struct {
	// OverwriteExistingData replaces existing jobs and triggers in place.
	OverwriteExistingData bool

	// IgnoreDuplicates skips existing entities instead of failing the apply.
	// Irrelevant when OverwriteExistingData is true.
	IgnoreDuplicates bool

	// PruneOrphans deletes stored jobs whose handler cannot be resolved and
	// which the bundle does not reference, together with their triggers.
	PruneOrphans bool
}

// DefaultDirectives returns the engine's global defaults.
func DefaultDirectives() Directives {
	return Directives{
		OverwriteExistingData: true,
		IgnoreDuplicates:      false,
		PruneOrphans:          false,
	}
}

// ResolveDirectives applies a document's overrides to the global defaults.
// A directive the document specifies wins; one it omits keeps the default.
// Pure function, no error conditions.
func ResolveDirectives(defaults Directives, doc *bundle.Directives) Directives {
	effective := defaults
	if doc == nil {
		return effective
	}
	if doc.OverwriteExistingData != nil {
		effective.OverwriteExistingData = *doc.OverwriteExistingData
	}
	if doc.IgnoreDuplicates != nil {
		effective.IgnoreDuplicates = *doc.IgnoreDuplicates
	}
	if doc.PruneOrphans != nil {
		effective.PruneOrphans = *doc.PruneOrphans
	}
	return effective
}
