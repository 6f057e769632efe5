package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schedsync/bundle"
)

func boolPtr(b bool) *bool { return &b }

func TestDefaultDirectives(t *testing.T) {
	defaults := DefaultDirectives()
	assert.True(t, defaults.OverwriteExistingData)
	assert.False(t, defaults.IgnoreDuplicates)
	assert.False(t, defaults.PruneOrphans)
}

func TestResolveDirectives(t *testing.T) {
	defaults := DefaultDirectives()

	t.Run("nil document keeps defaults", func(t *testing.T) {
		assert.Equal(t, defaults, ResolveDirectives(defaults, nil))
	})

	t.Run("empty document keeps defaults", func(t *testing.T) {
		assert.Equal(t, defaults, ResolveDirectives(defaults, &bundle.Directives{}))
	})

	t.Run("document overrides win", func(t *testing.T) {
		effective := ResolveDirectives(defaults, &bundle.Directives{
			OverwriteExistingData: boolPtr(false),
			IgnoreDuplicates:      boolPtr(true),
		})
		assert.False(t, effective.OverwriteExistingData)
		assert.True(t, effective.IgnoreDuplicates)
		// Unspecified directives keep the default.
		assert.False(t, effective.PruneOrphans)
	})

	t.Run("override may restate the default", func(t *testing.T) {
		effective := ResolveDirectives(defaults, &bundle.Directives{
			OverwriteExistingData: boolPtr(true),
		})
		assert.True(t, effective.OverwriteExistingData)
	})
}
