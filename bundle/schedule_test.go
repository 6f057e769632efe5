package bundle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleScheduleNextAfter(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	sched := SimpleSchedule{Interval: 30 * time.Minute, RepeatCount: RepeatForever}
	next, ok := sched.NextAfter(base)
	require.True(t, ok)
	assert.Equal(t, base.Add(30*time.Minute), next)

	// The result depends only on the argument, so chaining steps the cadence.
	next2, ok := sched.NextAfter(next)
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Hour), next2)
}

func TestSimpleScheduleInvalidInterval(t *testing.T) {
	_, ok := SimpleSchedule{Interval: 0}.NextAfter(time.Now())
	assert.False(t, ok)

	_, ok = SimpleSchedule{Interval: -time.Minute}.NextAfter(time.Now())
	assert.False(t, ok)
}

func TestNewCronSchedule(t *testing.T) {
	sched, err := NewCronSchedule("0 3 * * *")
	require.NoError(t, err)
	assert.Equal(t, ScheduleCron, sched.Kind())

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	next, ok := sched.NextAfter(base)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC), next)
}

func TestNewCronScheduleDescriptor(t *testing.T) {
	sched, err := NewCronSchedule("@hourly")
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 12, 15, 0, 0, time.UTC)
	next, ok := sched.NextAfter(base)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), next)
}

func TestNewCronScheduleInvalid(t *testing.T) {
	_, err := NewCronSchedule("not a cron expression")
	require.Error(t, err)
}

func TestCronScheduleZeroValueParsesOnDemand(t *testing.T) {
	// A CronSchedule decoded from storage carries only the expression.
	sched := CronSchedule{Expression: "*/5 * * * *"}

	base := time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC)
	next, ok := sched.NextAfter(base)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC), next)
}

func TestParseIntervalUnit(t *testing.T) {
	for _, valid := range []string{"day", "week", "month", "year"} {
		unit, err := ParseIntervalUnit(valid)
		require.NoError(t, err)
		assert.Equal(t, IntervalUnit(valid), unit)
	}

	_, err := ParseIntervalUnit("fortnight")
	require.Error(t, err)
}

func TestCalendarIntervalScheduleNextAfter(t *testing.T) {
	base := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		sched CalendarIntervalSchedule
		want  time.Time
	}{
		{"day", CalendarIntervalSchedule{Interval: 2, Unit: UnitDay}, time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)},
		{"week", CalendarIntervalSchedule{Interval: 1, Unit: UnitWeek}, time.Date(2024, 2, 7, 9, 0, 0, 0, time.UTC)},
		{"month overflow normalizes", CalendarIntervalSchedule{Interval: 1, Unit: UnitMonth}, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)},
		{"year", CalendarIntervalSchedule{Interval: 1, Unit: UnitYear}, time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tt.sched.NextAfter(base)
			require.True(t, ok)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestCalendarIntervalScheduleInvalid(t *testing.T) {
	_, ok := CalendarIntervalSchedule{Interval: 0, Unit: UnitDay}.NextAfter(time.Now())
	assert.False(t, ok)

	_, ok = CalendarIntervalSchedule{Interval: 1, Unit: "fortnight"}.NextAfter(time.Now())
	assert.False(t, ok)
}
