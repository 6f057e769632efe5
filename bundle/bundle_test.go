package bundle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedsync/errors"
)

func validBundle() *Bundle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &Bundle{
		Jobs: []JobDescriptor{
			{Key: NewKey("reports", "nightly"), Handler: "reports.generate"},
		},
		Triggers: []TriggerDescriptor{
			{
				Key:       NewKey("reports", "nightly-3am"),
				JobKey:    NewKey("reports", "nightly"),
				Schedule:  SimpleSchedule{Interval: time.Hour},
				StartTime: start,
				Priority:  DefaultPriority,
			},
		},
	}
}

func TestBundleValidate(t *testing.T) {
	require.NoError(t, validBundle().Validate())
}

func TestBundleValidateErrors(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name   string
		mutate func(*Bundle)
	}{
		{"empty job name", func(b *Bundle) { b.Jobs[0].Key.Name = "" }},
		{"empty handler", func(b *Bundle) { b.Jobs[0].Handler = "" }},
		{"duplicate job key", func(b *Bundle) { b.Jobs = append(b.Jobs, b.Jobs[0]) }},
		{"empty trigger name", func(b *Bundle) { b.Triggers[0].Key.Name = "" }},
		{"duplicate trigger key", func(b *Bundle) { b.Triggers = append(b.Triggers, b.Triggers[0]) }},
		{"missing job reference", func(b *Bundle) { b.Triggers[0].JobKey = Key{} }},
		{"missing schedule", func(b *Bundle) { b.Triggers[0].Schedule = nil }},
		{"missing start time", func(b *Bundle) { b.Triggers[0].StartTime = time.Time{} }},
		{"end before start", func(b *Bundle) { b.Triggers[0].EndTime = &before }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)
			err := b.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsMalformedBundleError(err))
		})
	}
}

func TestBundleJobLookup(t *testing.T) {
	b := validBundle()

	job, ok := b.Job(NewKey("reports", "nightly"))
	require.True(t, ok)
	assert.Equal(t, "reports.generate", job.Handler)

	_, ok = b.Job(NewKey("reports", "missing"))
	assert.False(t, ok)
}

func TestBundleReferencesJob(t *testing.T) {
	b := validBundle()

	// Declared job.
	assert.True(t, b.ReferencesJob(NewKey("reports", "nightly")))
	assert.False(t, b.ReferencesJob(NewKey("reports", "other")))

	// Referenced only through a trigger.
	b.Triggers[0].JobKey = NewKey("external", "job")
	assert.True(t, b.ReferencesJob(NewKey("external", "job")))
}

func TestTriggerFirstFireTime(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trig := TriggerDescriptor{
		Schedule:  SimpleSchedule{Interval: time.Hour},
		StartTime: start,
	}

	// Without an anchor, the declared start wins.
	assert.Equal(t, start, trig.FirstFireTime())

	// With an anchor, the next fire continues the old cadence.
	anchor := time.Date(2024, 2, 28, 15, 0, 0, 0, time.UTC)
	trig.Anchor = &anchor
	assert.Equal(t, anchor.Add(time.Hour), trig.FirstFireTime())

	// A schedule that cannot produce a fire falls back to the start.
	trig.Schedule = SimpleSchedule{Interval: 0}
	assert.Equal(t, start, trig.FirstFireTime())
}
