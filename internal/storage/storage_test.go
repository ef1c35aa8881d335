package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"health-report/internal/config"
)

func newSQLiteFixture(t *testing.T) config.DatabaseConfig {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "fitbit.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE fitbit_sleep_data (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			deep_sleep_hours REAL,
			light_sleep_hours REAL,
			rem_sleep_hours REAL,
			awake_hours REAL
		)`,
		`CREATE TABLE fitbit_activity_data (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			heart_rate INTEGER,
			steps INTEGER,
			calories_total REAL
		)`,
		`INSERT INTO fitbit_sleep_data (created_at, deep_sleep_hours, light_sleep_hours, rem_sleep_hours, awake_hours) VALUES
			('2025-05-02 00:00:00', 1.5, 3.0, 1.0, 0.5),
			('2025-05-01 00:00:00', 2.0, 3.0, 1.0, 0.5),
			('2025-05-03 00:00:00', 1.0, 4.0, NULL, 0.25)`,
		`INSERT INTO fitbit_activity_data (created_at, heart_rate, steps, calories_total) VALUES
			('2025-05-01 12:00:00', 80, 1200, 300.5),
			('2025-05-01 08:00:00', 70, 500, 200),
			('2025-05-01 18:00:00', 90, 4000, 800)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	return config.DatabaseConfig{
		Driver:        "sqlite",
		Name:          dbPath,
		SleepQuery:    config.DefaultSleepQuery,
		ActivityQuery: config.DefaultActivityQuery,
	}
}

func TestSQLSource_FetchSleep_SortsAscending(t *testing.T) {
	src, err := NewSQLSource(newSQLiteFixture(t), time.UTC)
	if err != nil {
		t.Fatalf("NewSQLSource: %v", err)
	}

	records, err := src.FetchSleep(context.Background())
	if err != nil {
		t.Fatalf("FetchSleep: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Errorf("records not ascending at %d", i)
		}
	}

	first := records[0]
	if !first.Timestamp.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first timestamp = %v", first.Timestamp)
	}
	if first.Deep != 2 || first.Light != 3 || first.REM != 1 || first.Awake != 0.5 {
		t.Errorf("first record stages = %+v", first)
	}
	if records[2].REM != 0 {
		t.Errorf("NULL rem should read as 0, got %v", records[2].REM)
	}
}

func TestSQLSource_FetchActivity(t *testing.T) {
	src, err := NewSQLSource(newSQLiteFixture(t), time.UTC)
	if err != nil {
		t.Fatalf("NewSQLSource: %v", err)
	}

	records, err := src.FetchActivity(context.Background())
	if err != nil {
		t.Fatalf("FetchActivity: %v", err)
	}
	wantSteps := []int64{500, 1200, 4000}
	if len(records) != len(wantSteps) {
		t.Fatalf("expected %d records, got %d", len(wantSteps), len(records))
	}
	for i, w := range wantSteps {
		if records[i].Steps != w {
			t.Errorf("records[%d].Steps = %d, want %d", i, records[i].Steps, w)
		}
	}
	if records[1].Calories != 300.5 || records[1].HeartRate != 80 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestSQLSource_QueryErrorPropagates(t *testing.T) {
	cfg := newSQLiteFixture(t)
	cfg.SleepQuery = "SELECT created_at FROM missing_table"

	src, err := NewSQLSource(cfg, time.UTC)
	if err != nil {
		t.Fatalf("NewSQLSource: %v", err)
	}
	if _, err := src.FetchSleep(context.Background()); err == nil {
		t.Fatal("expected an error for a missing table")
	}

	// the failed call must not leave the source unusable
	if _, err := src.FetchActivity(context.Background()); err != nil {
		t.Fatalf("FetchActivity after failure: %v", err)
	}
}

func TestBuildDSN(t *testing.T) {
	seoul := mustSeoul(t)

	t.Run("explicit dsn wins", func(t *testing.T) {
		got, err := BuildDSN(config.DatabaseConfig{Driver: "mysql", DSN: "raw-dsn", Name: "ignored"}, nil)
		if err != nil || got != "raw-dsn" {
			t.Errorf("BuildDSN = %q, %v", got, err)
		}
	})

	t.Run("mysql", func(t *testing.T) {
		dsn, err := BuildDSN(config.DatabaseConfig{
			Driver: "mysql", Host: "db.internal", User: "fit", Password: "p@ss", Name: "fitbit",
		}, seoul)
		if err != nil {
			t.Fatalf("BuildDSN: %v", err)
		}
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			t.Fatalf("ParseDSN(%q): %v", dsn, err)
		}
		if parsed.Addr != "db.internal:3306" || parsed.User != "fit" || parsed.Passwd != "p@ss" || parsed.DBName != "fitbit" {
			t.Errorf("parsed = %+v", parsed)
		}
		if !parsed.ParseTime {
			t.Error("parseTime should be enabled")
		}
		if parsed.Loc.String() != "Asia/Seoul" {
			t.Errorf("loc = %s, want Asia/Seoul", parsed.Loc)
		}
	})

	t.Run("pgx", func(t *testing.T) {
		dsn, err := BuildDSN(config.DatabaseConfig{
			Driver: "pgx", Host: "pg", Port: 6543, User: "fit", Password: "secret", Name: "fitbit",
		}, nil)
		if err != nil {
			t.Fatalf("BuildDSN: %v", err)
		}
		if dsn != "postgres://fit:secret@pg:6543/fitbit" {
			t.Errorf("dsn = %q", dsn)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		dsn, _ := BuildDSN(config.DatabaseConfig{Driver: "sqlite", Name: "/data/fit.db"}, nil)
		if dsn != "/data/fit.db" {
			t.Errorf("dsn = %q", dsn)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := BuildDSN(config.DatabaseConfig{Driver: "oracle", Name: "x"}, nil); err == nil || !strings.Contains(err.Error(), "oracle") {
			t.Errorf("expected unsupported driver error, got %v", err)
		}
	})
}

func mustSeoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func TestParseTimestamp(t *testing.T) {
	seoul := mustSeoul(t)
	want := time.Date(2025, 5, 1, 7, 30, 0, 0, seoul)

	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"zone-less driver time", time.Date(2025, 5, 1, 7, 30, 0, 0, time.UTC), want},
		{"driver time in zone", want, want},
		{"text", "2025-05-01 07:30:00", want},
		{"bytes", []byte("2025-05-01T07:30:00"), want},
		{"explicit offset kept", "2025-04-30T22:30:00Z", want},
		{"unix seconds", want.Unix(), want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.in, seoul)
			if err != nil {
				t.Fatalf("parseTimestamp(%v) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Location() != seoul {
				t.Errorf("location = %s, want Asia/Seoul", got.Location())
			}
		})
	}

	if _, err := parseTimestamp(nil, seoul); err == nil {
		t.Error("expected error for NULL timestamp")
	}
	if _, err := parseTimestamp("yesterday", seoul); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}

func TestSQLSource_KeepsStoredWallClock(t *testing.T) {
	seoul := mustSeoul(t)
	src, err := NewSQLSource(newSQLiteFixture(t), seoul)
	if err != nil {
		t.Fatalf("NewSQLSource: %v", err)
	}

	records, err := src.FetchActivity(context.Background())
	if err != nil {
		t.Fatalf("FetchActivity: %v", err)
	}
	if got := records[0].Timestamp.Format("2006-01-02 15:04:05"); got != "2025-05-01 08:00:00" {
		t.Errorf("first timestamp = %s, want the stored 2025-05-01 08:00:00", got)
	}
	if records[0].Timestamp.Location() != seoul {
		t.Errorf("location = %s, want Asia/Seoul", records[0].Timestamp.Location())
	}
}
