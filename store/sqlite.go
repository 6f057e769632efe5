package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"schedsync/bundle"
	"schedsync/db"
	"schedsync/errors"
)

// SQLiteStore is the SQLite-backed job store.
type SQLiteStore struct {
	db       *sql.DB
	registry *HandlerRegistry
	logger   *zap.SugaredLogger
}

// NewSQLiteStore creates a store over an open, migrated database.
// registry may be nil, which disables handler resolution checks entirely
// (every persisted handler name is then considered resolvable).
func NewSQLiteStore(db *sql.DB, registry *HandlerRegistry, logger *zap.SugaredLogger) *SQLiteStore {
	return &SQLiteStore{db: db, registry: registry, logger: logger}
}

// Begin starts a transaction. The context governs every statement issued
// through the returned Tx.
func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if db.IsDatabaseClosed(err) {
			return nil, errors.Wrap(errors.ErrStoreClosed, "begin store transaction")
		}
		return nil, errors.Wrap(err, "begin store transaction")
	}
	return &sqliteTx{ctx: ctx, tx: tx, registry: s.registry, logger: s.logger}, nil
}

type sqliteTx struct {
	ctx      context.Context
	tx       *sql.Tx
	registry *HandlerRegistry
	logger   *zap.SugaredLogger
}

const jobColumns = `job_key, job_group, job_name, handler_name, durable, recoverable, job_data, created_at, updated_at`

const triggerColumns = `trigger_key, trigger_group, trigger_name, job_key,
	schedule_kind, repeat_interval_ms, repeat_count, cron_expression, calendar_interval, calendar_unit,
	start_time, end_time, priority, calendar_name, trigger_data,
	prev_fire_time, next_fire_time, created_at, updated_at`

func (t *sqliteTx) QueryJob(key bundle.Key) (*JobRecord, error) {
	row := t.tx.QueryRowContext(t.ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE job_key = ?`, key.String())

	rec, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "query job %s", key)
	}

	if t.registry != nil && !t.registry.Resolvable(rec.Handler) {
		return nil, &TypeResolutionError{JobKey: rec.Key, Handler: rec.Handler}
	}
	return rec, nil
}

func (t *sqliteTx) QueryTrigger(key bundle.Key) (*TriggerRecord, error) {
	row := t.tx.QueryRowContext(t.ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE trigger_key = ?`, key.String())

	rec, err := scanTrigger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "query trigger %s", key)
	}
	return rec, nil
}

func (t *sqliteTx) AddJob(job bundle.JobDescriptor, replace bool) error {
	data, err := encodeData(job.Data)
	if err != nil {
		return errors.Wrapf(err, "encode data for job %s", job.Key)
	}
	now := formatTime(time.Now())

	if !replace {
		exists, err := t.exists("jobs", "job_key", job.Key)
		if err != nil {
			return err
		}
		if exists {
			return &DuplicateEntityError{Kind: EntityJob, Key: job.Key}
		}
	}

	// Upsert leaves created_at (and the job's triggers) untouched on replace.
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_key) DO UPDATE SET
			handler_name = excluded.handler_name,
			durable      = excluded.durable,
			recoverable  = excluded.recoverable,
			job_data     = excluded.job_data,
			updated_at   = excluded.updated_at`,
		job.Key.String(), job.Key.Group, job.Key.Name,
		job.Handler, job.Durable, job.Recover, data,
		now, now,
	)
	if err != nil {
		return errors.Wrapf(err, "persist job %s", job.Key)
	}
	return nil
}

func (t *sqliteTx) ScheduleTrigger(desc bundle.TriggerDescriptor) error {
	ownerExists, err := t.exists("jobs", "job_key", desc.JobKey)
	if err != nil {
		return err
	}
	if !ownerExists {
		return &UnresolvedJobReferenceError{TriggerKey: desc.Key, JobKey: desc.JobKey}
	}

	exists, err := t.exists("triggers", "trigger_key", desc.Key)
	if err != nil {
		return err
	}
	if exists {
		return &DuplicateEntityError{Kind: EntityTrigger, Key: desc.Key}
	}

	cols, err := scheduleColumns(desc.Schedule)
	if err != nil {
		return errors.Wrapf(err, "trigger %s", desc.Key)
	}
	data, err := encodeData(desc.Data)
	if err != nil {
		return errors.Wrapf(err, "encode data for trigger %s", desc.Key)
	}
	now := formatTime(time.Now())

	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO triggers (`+triggerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		desc.Key.String(), desc.Key.Group, desc.Key.Name, desc.JobKey.String(),
		cols.kind, cols.intervalMS, cols.repeatCount, cols.cronExpr, cols.calInterval, cols.calUnit,
		formatTime(desc.StartTime), formatNullableTime(desc.EndTime),
		desc.Priority, nullableString(desc.Calendar), data,
		nil, formatTime(desc.FirstFireTime()),
		now, now,
	)
	if err != nil {
		return errors.Wrapf(err, "persist trigger %s", desc.Key)
	}
	return nil
}

func (t *sqliteTx) RescheduleTrigger(oldKey bundle.Key, desc bundle.TriggerDescriptor) error {
	ownerExists, err := t.exists("jobs", "job_key", desc.JobKey)
	if err != nil {
		return err
	}
	if !ownerExists {
		return &UnresolvedJobReferenceError{TriggerKey: desc.Key, JobKey: desc.JobKey}
	}

	cols, err := scheduleColumns(desc.Schedule)
	if err != nil {
		return errors.Wrapf(err, "trigger %s", desc.Key)
	}
	data, err := encodeData(desc.Data)
	if err != nil {
		return errors.Wrapf(err, "encode data for trigger %s", desc.Key)
	}

	// Single UPDATE keeps the replacement atomic: the job is never without a
	// trigger between a delete and an add. prev_fire_time and created_at are
	// deliberately untouched; fire history survives the replacement.
	result, err := t.tx.ExecContext(t.ctx, `
		UPDATE triggers SET
			trigger_key        = ?,
			trigger_group      = ?,
			trigger_name       = ?,
			job_key            = ?,
			schedule_kind      = ?,
			repeat_interval_ms = ?,
			repeat_count       = ?,
			cron_expression    = ?,
			calendar_interval  = ?,
			calendar_unit      = ?,
			start_time         = ?,
			end_time           = ?,
			priority           = ?,
			calendar_name      = ?,
			trigger_data       = ?,
			next_fire_time     = ?,
			updated_at         = ?
		WHERE trigger_key = ?`,
		desc.Key.String(), desc.Key.Group, desc.Key.Name, desc.JobKey.String(),
		cols.kind, cols.intervalMS, cols.repeatCount, cols.cronExpr, cols.calInterval, cols.calUnit,
		formatTime(desc.StartTime), formatNullableTime(desc.EndTime),
		desc.Priority, nullableString(desc.Calendar), data,
		formatTime(desc.FirstFireTime()),
		formatTime(time.Now()),
		oldKey.String(),
	)
	if err != nil {
		return errors.Wrapf(err, "reschedule trigger %s", oldKey)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "trigger %s", oldKey)
	}
	return nil
}

func (t *sqliteTx) DeleteJob(key bundle.Key) error {
	// Triggers go with the job via ON DELETE CASCADE.
	result, err := t.tx.ExecContext(t.ctx, `DELETE FROM jobs WHERE job_key = ?`, key.String())
	if err != nil {
		return errors.Wrapf(err, "delete job %s", key)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "job %s", key)
	}
	return nil
}

func (t *sqliteTx) TriggersForJob(key bundle.Key) ([]TriggerRecord, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE job_key = ? ORDER BY trigger_key`,
		key.String())
	if err != nil {
		return nil, errors.Wrapf(err, "list triggers for job %s", key)
	}
	defer rows.Close()

	var triggers []TriggerRecord
	for rows.Next() {
		rec, err := scanTrigger(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan trigger for job %s", key)
		}
		triggers = append(triggers, *rec)
	}
	return triggers, rows.Err()
}

func (t *sqliteTx) UnresolvableJobs() ([]JobRecord, error) {
	if t.registry == nil {
		return nil, nil
	}

	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY job_key`)
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	var orphans []JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan job")
		}
		if !t.registry.Resolvable(rec.Handler) {
			orphans = append(orphans, *rec)
		}
	}
	return orphans, rows.Err()
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return errors.Wrap(err, "commit store transaction")
	}
	return nil
}

func (t *sqliteTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return errors.Wrap(err, "rollback store transaction")
	}
	return nil
}

func (t *sqliteTx) exists(table, column string, key bundle.Key) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE `+column+` = ?)`, key.String()).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "check %s for %s", table, key)
	}
	return exists, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*JobRecord, error) {
	var rec JobRecord
	var group, name string
	var data sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		new(string), // job_key, reconstructed from group+name
		&group,
		&name,
		&rec.Handler,
		&rec.Durable,
		&rec.Recoverable,
		&data,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Key = bundle.Key{Group: group, Name: name}

	rec.Data, err = decodeData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode data for job %s", rec.Key)
	}
	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse created_at for job %s", rec.Key)
	}
	rec.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse updated_at for job %s", rec.Key)
	}
	return &rec, nil
}

func scanTrigger(row rowScanner) (*TriggerRecord, error) {
	var rec TriggerRecord
	var group, name, jobKey string
	var kind string
	var intervalMS, repeatCount, calInterval sql.NullInt64
	var cronExpr, calUnit, calendar, data sql.NullString
	var startTime, createdAt, updatedAt string
	var endTime, prevFire, nextFire sql.NullString

	err := row.Scan(
		new(string), // trigger_key, reconstructed from group+name
		&group,
		&name,
		&jobKey,
		&kind,
		&intervalMS,
		&repeatCount,
		&cronExpr,
		&calInterval,
		&calUnit,
		&startTime,
		&endTime,
		&rec.Priority,
		&calendar,
		&data,
		&prevFire,
		&nextFire,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Key = bundle.Key{Group: group, Name: name}
	rec.JobKey, err = bundle.ParseKey(jobKey)
	if err != nil {
		return nil, errors.Wrapf(err, "parse job key for trigger %s", rec.Key)
	}

	rec.Schedule, err = decodeSchedule(kind, intervalMS, repeatCount, cronExpr, calInterval, calUnit)
	if err != nil {
		return nil, errors.Wrapf(err, "decode schedule for trigger %s", rec.Key)
	}

	if calendar.Valid {
		rec.Calendar = calendar.String
	}
	rec.Data, err = decodeData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode data for trigger %s", rec.Key)
	}

	rec.StartTime, err = parseTime(startTime)
	if err != nil {
		return nil, errors.Wrapf(err, "parse start_time for trigger %s", rec.Key)
	}
	rec.EndTime, err = parseNullableTime(endTime)
	if err != nil {
		return nil, errors.Wrapf(err, "parse end_time for trigger %s", rec.Key)
	}
	rec.PrevFireTime, err = parseNullableTime(prevFire)
	if err != nil {
		return nil, errors.Wrapf(err, "parse prev_fire_time for trigger %s", rec.Key)
	}
	rec.NextFireTime, err = parseNullableTime(nextFire)
	if err != nil {
		return nil, errors.Wrapf(err, "parse next_fire_time for trigger %s", rec.Key)
	}
	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse created_at for trigger %s", rec.Key)
	}
	rec.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse updated_at for trigger %s", rec.Key)
	}
	return &rec, nil
}

// schedCols is the flattened one-of schedule representation: exactly the
// columns for the schedule's kind are non-NULL.
type schedCols struct {
	kind        string
	intervalMS  sql.NullInt64
	repeatCount sql.NullInt64
	cronExpr    sql.NullString
	calInterval sql.NullInt64
	calUnit     sql.NullString
}

func scheduleColumns(s bundle.Schedule) (schedCols, error) {
	switch sched := s.(type) {
	case bundle.SimpleSchedule:
		return schedCols{
			kind:        string(bundle.ScheduleSimple),
			intervalMS:  sql.NullInt64{Int64: sched.Interval.Milliseconds(), Valid: true},
			repeatCount: sql.NullInt64{Int64: int64(sched.RepeatCount), Valid: true},
		}, nil
	case bundle.CronSchedule:
		return schedCols{
			kind:     string(bundle.ScheduleCron),
			cronExpr: sql.NullString{String: sched.Expression, Valid: true},
		}, nil
	case bundle.CalendarIntervalSchedule:
		return schedCols{
			kind:        string(bundle.ScheduleCalendar),
			calInterval: sql.NullInt64{Int64: int64(sched.Interval), Valid: true},
			calUnit:     sql.NullString{String: string(sched.Unit), Valid: true},
		}, nil
	case nil:
		return schedCols{}, errors.New("missing schedule")
	default:
		return schedCols{}, errors.Newf("unsupported schedule kind %q", s.Kind())
	}
}

func decodeSchedule(kind string, intervalMS, repeatCount sql.NullInt64, cronExpr sql.NullString, calInterval sql.NullInt64, calUnit sql.NullString) (bundle.Schedule, error) {
	switch bundle.ScheduleKind(kind) {
	case bundle.ScheduleSimple:
		if !intervalMS.Valid {
			return nil, errors.New("simple schedule missing interval")
		}
		repeat := bundle.RepeatForever
		if repeatCount.Valid {
			repeat = int(repeatCount.Int64)
		}
		return bundle.SimpleSchedule{
			Interval:    time.Duration(intervalMS.Int64) * time.Millisecond,
			RepeatCount: repeat,
		}, nil

	case bundle.ScheduleCron:
		if !cronExpr.Valid {
			return nil, errors.New("cron schedule missing expression")
		}
		return bundle.NewCronSchedule(cronExpr.String)

	case bundle.ScheduleCalendar:
		if !calInterval.Valid || !calUnit.Valid {
			return nil, errors.New("calendar schedule missing interval or unit")
		}
		unit, err := bundle.ParseIntervalUnit(calUnit.String)
		if err != nil {
			return nil, err
		}
		return bundle.CalendarIntervalSchedule{Interval: int(calInterval.Int64), Unit: unit}, nil

	default:
		return nil, errors.Newf("unknown schedule kind %q", kind)
	}
}

func encodeData(data map[string]string) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func decodeData(data sql.NullString) (map[string]string, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(data.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
