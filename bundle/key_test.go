package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedsync/errors"
)

func TestNewKey(t *testing.T) {
	assert.Equal(t, Key{Group: "reports", Name: "nightly"}, NewKey("reports", "nightly"))
	assert.Equal(t, Key{Group: DefaultGroup, Name: "nightly"}, NewKey("", "nightly"))
}

func TestParseKey(t *testing.T) {
	t.Run("group and name", func(t *testing.T) {
		key, err := ParseKey("reports.nightly")
		require.NoError(t, err)
		assert.Equal(t, Key{Group: "reports", Name: "nightly"}, key)
	})

	t.Run("bare name defaults group", func(t *testing.T) {
		key, err := ParseKey("nightly")
		require.NoError(t, err)
		assert.Equal(t, Key{Group: DefaultGroup, Name: "nightly"}, key)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseKey("")
		require.Error(t, err)
		assert.True(t, errors.IsMalformedBundleError(err))
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := ParseKey("reports.")
		require.Error(t, err)
		assert.True(t, errors.IsMalformedBundleError(err))
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := ParseKey(".nightly")
		require.Error(t, err)
	})
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "reports.nightly", Key{Group: "reports", Name: "nightly"}.String())
}

func TestKeyIsZero(t *testing.T) {
	assert.True(t, Key{}.IsZero())
	assert.False(t, NewKey("", "nightly").IsZero())
}
