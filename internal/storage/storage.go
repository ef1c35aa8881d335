package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"health-report/internal/config"
	"health-report/internal/record"
)

// RecordSource is what a report run reads its rows from.
type RecordSource interface {
	FetchSleep(ctx context.Context) ([]record.SleepRecord, error)
	FetchActivity(ctx context.Context) ([]record.ActivityRecord, error)
}

// SQLSource runs the configured read-only queries against a relational store.
// Every call opens its own connection and releases it before returning.
//
// The tables store zone-less wall-clock timestamps. They are read as wall time
// in location, so records print and plot exactly as stored.
type SQLSource struct {
	driver        string
	dsn           string
	sleepQuery    string
	activityQuery string
	location      *time.Location
}

// NewSQLSource resolves the driver and DSN; it does not connect.
// A nil loc means UTC.
func NewSQLSource(cfg config.DatabaseConfig, loc *time.Location) (*SQLSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	dsn, err := BuildDSN(cfg, loc)
	if err != nil {
		return nil, err
	}
	return &SQLSource{
		driver:        cfg.Driver,
		dsn:           dsn,
		sleepQuery:    cfg.SleepQuery,
		activityQuery: cfg.ActivityQuery,
		location:      loc,
	}, nil
}

// withConn acquires a dedicated connection, hands it to fn and releases it on every path.
func (s *SQLSource) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// FetchSleep returns the sleep rows sorted ascending by timestamp.
func (s *SQLSource) FetchSleep(ctx context.Context) ([]record.SleepRecord, error) {
	var records []record.SleepRecord
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, s.sleepQuery)
		if err != nil {
			return fmt.Errorf("failed to query sleep data: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var ts any
			var deep, light, rem, awake sql.NullFloat64
			if err := rows.Scan(&ts, &deep, &light, &rem, &awake); err != nil {
				return fmt.Errorf("failed to scan sleep row: %w", err)
			}
			t, err := parseTimestamp(ts, s.location)
			if err != nil {
				return fmt.Errorf("failed to parse sleep timestamp: %w", err)
			}
			records = append(records, record.SleepRecord{
				Timestamp: t,
				Deep:      deep.Float64,
				Light:     light.Float64,
				REM:       rem.Float64,
				Awake:     awake.Float64,
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	record.SortSleep(records)
	return records, nil
}

// FetchActivity returns the activity rows sorted ascending by timestamp.
func (s *SQLSource) FetchActivity(ctx context.Context) ([]record.ActivityRecord, error) {
	var records []record.ActivityRecord
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, s.activityQuery)
		if err != nil {
			return fmt.Errorf("failed to query activity data: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var ts any
			var heartRate, steps, calories sql.NullFloat64
			if err := rows.Scan(&ts, &heartRate, &steps, &calories); err != nil {
				return fmt.Errorf("failed to scan activity row: %w", err)
			}
			t, err := parseTimestamp(ts, s.location)
			if err != nil {
				return fmt.Errorf("failed to parse activity timestamp: %w", err)
			}
			records = append(records, record.ActivityRecord{
				Timestamp: t,
				HeartRate: heartRate.Float64,
				Steps:     int64(math.Round(steps.Float64)),
				Calories:  calories.Float64,
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	record.SortActivity(records)
	return records, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts whatever the driver hands back for a DATETIME column
// and returns it in loc. Drivers report zone-less columns as UTC; those keep
// their wall clock and take loc as their zone.
func parseTimestamp(v any, loc *time.Location) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.Location() == time.UTC {
			return wallClock(t, loc), nil
		}
		return t.In(loc), nil
	case string:
		return parseTimestampString(t, loc)
	case []byte:
		return parseTimestampString(string(t), loc)
	case int64:
		return time.Unix(t, 0).In(loc), nil
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is NULL")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestampString(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
