package bundle

// Directives are the per-document conflict policy overrides. A nil field
// means the document did not specify the directive and the engine's global
// default applies; see reconcile.ResolveDirectives for precedence.
type Directives struct {
	// OverwriteExistingData replaces jobs and triggers that already exist in
	// the store (global default: true).
	OverwriteExistingData *bool `yaml:"overwrite-existing-data"`

	// IgnoreDuplicates skips entities that already exist instead of failing.
	// Only consulted when OverwriteExistingData is false (global default:
	// false).
	IgnoreDuplicates *bool `yaml:"ignore-duplicates"`

	// PruneOrphans deletes stored jobs whose handler can no longer be
	// resolved and which this document does not reference, together with
	// their triggers (global default: false).
	PruneOrphans *bool `yaml:"prune-orphans"`
}
