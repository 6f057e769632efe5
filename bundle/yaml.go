package bundle

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"schedsync/errors"
)

// Document wire format. A document holds optional directives and any number
// of named schedule sections; sections exist for document organization only
// and are merged into one flat bundle.
type document struct {
	Directives *Directives `yaml:"directives"`
	Schedules  []section   `yaml:"schedules"`
}

type section struct {
	Name     string        `yaml:"name"`
	Jobs     []jobSpec     `yaml:"jobs"`
	Triggers []triggerSpec `yaml:"triggers"`
}

type jobSpec struct {
	Name    string            `yaml:"name"`
	Group   string            `yaml:"group"`
	Handler string            `yaml:"handler"`
	Durable bool              `yaml:"durable"`
	Recover bool              `yaml:"recover"`
	Data    map[string]string `yaml:"data"`
}

type triggerSpec struct {
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
	Job   string `yaml:"job"`

	// Exactly one of the three schedule forms must be set.
	Cron             string        `yaml:"cron"`
	Interval         string        `yaml:"interval"`
	RepeatCount      *int          `yaml:"repeat-count"`
	CalendarInterval *calendarSpec `yaml:"calendar-interval"`

	StartTime *time.Time        `yaml:"start-time"`
	EndTime   *time.Time        `yaml:"end-time"`
	Priority  *int              `yaml:"priority"`
	Calendar  string            `yaml:"calendar"`
	Data      map[string]string `yaml:"data"`
}

type calendarSpec struct {
	Interval int    `yaml:"interval"`
	Unit     string `yaml:"unit"`
}

// ParseFile reads and parses a scheduling document from disk.
func ParseFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open bundle %s", path)
	}
	defer f.Close()
	return ParseDocument(f)
}

// ParseDocument parses a YAML scheduling document into a validated Bundle.
// All structural problems are reported as ErrMalformedBundle; a bundle
// returned with nil error is safe to hand to the reconciliation engine.
func ParseDocument(r io.Reader) (*Bundle, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.NewMalformedBundleError("decode document: %v", err)
	}

	b := &Bundle{Directives: doc.Directives}
	for _, sec := range doc.Schedules {
		for _, js := range sec.Jobs {
			b.Jobs = append(b.Jobs, JobDescriptor{
				Key:     NewKey(js.Group, js.Name),
				Handler: js.Handler,
				Durable: js.Durable,
				Recover: js.Recover,
				Data:    js.Data,
			})
		}
		for _, ts := range sec.Triggers {
			trig, err := ts.descriptor()
			if err != nil {
				return nil, err
			}
			b.Triggers = append(b.Triggers, trig)
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (ts triggerSpec) descriptor() (TriggerDescriptor, error) {
	key := NewKey(ts.Group, ts.Name)

	jobKey, err := ParseKey(ts.Job)
	if err != nil {
		return TriggerDescriptor{}, errors.Wrapf(err, "trigger %s", key)
	}

	sched, err := ts.schedule(key)
	if err != nil {
		return TriggerDescriptor{}, err
	}

	start := time.Now().UTC().Truncate(time.Second)
	if ts.StartTime != nil {
		start = ts.StartTime.UTC()
	}

	priority := DefaultPriority
	if ts.Priority != nil {
		priority = *ts.Priority
	}

	var end *time.Time
	if ts.EndTime != nil {
		e := ts.EndTime.UTC()
		end = &e
	}

	return TriggerDescriptor{
		Key:       key,
		JobKey:    jobKey,
		Schedule:  sched,
		StartTime: start,
		EndTime:   end,
		Priority:  priority,
		Calendar:  ts.Calendar,
		Data:      ts.Data,
	}, nil
}

func (ts triggerSpec) schedule(key Key) (Schedule, error) {
	forms := 0
	if ts.Cron != "" {
		forms++
	}
	if ts.Interval != "" {
		forms++
	}
	if ts.CalendarInterval != nil {
		forms++
	}
	if forms != 1 {
		return nil, errors.NewMalformedBundleError(
			"trigger %s: want exactly one of cron, interval, calendar-interval (got %d)", key, forms)
	}

	switch {
	case ts.Cron != "":
		sched, err := NewCronSchedule(ts.Cron)
		if err != nil {
			return nil, errors.Wrapf(err, "trigger %s", key)
		}
		return sched, nil

	case ts.Interval != "":
		interval, err := time.ParseDuration(ts.Interval)
		if err != nil {
			return nil, errors.NewMalformedBundleError("trigger %s: invalid interval %q: %v", key, ts.Interval, err)
		}
		if interval <= 0 {
			return nil, errors.NewMalformedBundleError("trigger %s: interval must be positive", key)
		}
		repeat := RepeatForever
		if ts.RepeatCount != nil {
			repeat = *ts.RepeatCount
		}
		return SimpleSchedule{Interval: interval, RepeatCount: repeat}, nil

	default:
		unit, err := ParseIntervalUnit(ts.CalendarInterval.Unit)
		if err != nil {
			return nil, errors.Wrapf(err, "trigger %s", key)
		}
		if ts.CalendarInterval.Interval <= 0 {
			return nil, errors.NewMalformedBundleError("trigger %s: calendar interval must be positive", key)
		}
		return CalendarIntervalSchedule{Interval: ts.CalendarInterval.Interval, Unit: unit}, nil
	}
}
