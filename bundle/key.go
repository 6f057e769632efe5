package bundle

import (
	"strings"

	"schedsync/errors"
)

// DefaultGroup is used for jobs and triggers declared without a group.
const DefaultGroup = "DEFAULT"

// Key identifies a job or trigger. Keys are unique per entity kind: a job and
// a trigger may share the same key without conflict.
type Key struct {
	Group string
	Name  string
}

// NewKey builds a key, substituting DefaultGroup for an empty group.
func NewKey(group, name string) Key {
	if group == "" {
		group = DefaultGroup
	}
	return Key{Group: group, Name: name}
}

// ParseKey parses the canonical "group.name" form. A bare name without a dot
// is placed in DefaultGroup.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, errors.NewMalformedBundleError("empty key")
	}
	group, name, found := strings.Cut(s, ".")
	if !found {
		return NewKey("", s), nil
	}
	if group == "" || name == "" {
		return Key{}, errors.NewMalformedBundleError("invalid key %q: want \"group.name\"", s)
	}
	return Key{Group: group, Name: name}, nil
}

// String returns the canonical "group.name" form.
func (k Key) String() string {
	return k.Group + "." + k.Name
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Group == "" && k.Name == ""
}
