package bundle

import (
	"time"

	"github.com/robfig/cron/v3"

	"schedsync/errors"
)

// ScheduleKind discriminates the supported schedule forms.
type ScheduleKind string

const (
	ScheduleSimple   ScheduleKind = "simple"
	ScheduleCron     ScheduleKind = "cron"
	ScheduleCalendar ScheduleKind = "calendar"
)

// RepeatForever marks a simple schedule with no repeat limit.
const RepeatForever = -1

// Schedule computes fire times for a trigger. Implementations must be pure:
// NextAfter depends only on its argument, never on the current time, so that
// repeated reconciliation runs stay idempotent.
type Schedule interface {
	Kind() ScheduleKind

	// NextAfter returns the first fire time strictly after t.
	// ok is false when the schedule produces no fire after t.
	NextAfter(t time.Time) (next time.Time, ok bool)
}

// SimpleSchedule fires at a fixed interval.
type SimpleSchedule struct {
	Interval time.Duration

	// RepeatCount is the number of repeats after the first fire, or
	// RepeatForever. Enforced by the firing runtime; the reconciler only
	// persists it.
	RepeatCount int
}

func (s SimpleSchedule) Kind() ScheduleKind { return ScheduleSimple }

func (s SimpleSchedule) NextAfter(t time.Time) (time.Time, bool) {
	if s.Interval <= 0 {
		return time.Time{}, false
	}
	return t.Add(s.Interval), true
}

// CronSchedule fires per a cron expression (standard 5-field form plus
// descriptors such as "@hourly").
type CronSchedule struct {
	Expression string

	schedule cron.Schedule
}

// NewCronSchedule parses and validates a cron expression.
func NewCronSchedule(expression string) (CronSchedule, error) {
	sched, err := cron.ParseStandard(expression)
	if err != nil {
		return CronSchedule{}, errors.NewMalformedBundleError("invalid cron expression %q: %v", expression, err)
	}
	return CronSchedule{Expression: expression, schedule: sched}, nil
}

func (c CronSchedule) Kind() ScheduleKind { return ScheduleCron }

func (c CronSchedule) NextAfter(t time.Time) (time.Time, bool) {
	sched := c.schedule
	if sched == nil {
		// Zero-value CronSchedule; parse on demand
		var err error
		sched, err = cron.ParseStandard(c.Expression)
		if err != nil {
			return time.Time{}, false
		}
	}
	next := sched.Next(t)
	return next, !next.IsZero()
}

// IntervalUnit is the calendar unit for CalendarIntervalSchedule.
type IntervalUnit string

const (
	UnitDay   IntervalUnit = "day"
	UnitWeek  IntervalUnit = "week"
	UnitMonth IntervalUnit = "month"
	UnitYear  IntervalUnit = "year"
)

// ParseIntervalUnit validates a calendar unit name.
func ParseIntervalUnit(s string) (IntervalUnit, error) {
	switch IntervalUnit(s) {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return IntervalUnit(s), nil
	}
	return "", errors.NewMalformedBundleError("invalid calendar unit %q: want day, week, month, or year", s)
}

// CalendarIntervalSchedule fires every Interval calendar units, stepping with
// calendar arithmetic so "1 month" lands on the same day-of-month regardless
// of month length.
type CalendarIntervalSchedule struct {
	Interval int
	Unit     IntervalUnit
}

func (c CalendarIntervalSchedule) Kind() ScheduleKind { return ScheduleCalendar }

func (c CalendarIntervalSchedule) NextAfter(t time.Time) (time.Time, bool) {
	if c.Interval <= 0 {
		return time.Time{}, false
	}
	switch c.Unit {
	case UnitDay:
		return t.AddDate(0, 0, c.Interval), true
	case UnitWeek:
		return t.AddDate(0, 0, 7*c.Interval), true
	case UnitMonth:
		return t.AddDate(0, c.Interval, 0), true
	case UnitYear:
		return t.AddDate(c.Interval, 0, 0), true
	}
	return time.Time{}, false
}
