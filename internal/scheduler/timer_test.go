package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"health-report/internal/config"
)

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ScheduleConfig
		want    string
		wantErr bool
	}{
		{"cron wins over interval", config.ScheduleConfig{Cron: "0 7 * * *", Interval: "1h"}, "cron", false},
		{"cron with seconds", config.ScheduleConfig{Cron: "0 0 7 * * *"}, "cron", false},
		{"descriptor", config.ScheduleConfig{Cron: "@daily"}, "cron", false},
		{"interval", config.ScheduleConfig{Interval: "24h"}, "fixed", false},
		{"bad cron", config.ScheduleConfig{Cron: "every morning"}, "", true},
		{"bad interval", config.ScheduleConfig{Interval: "daily"}, "", true},
		{"zero interval", config.ScheduleConfig{Interval: "0s"}, "", true},
		{"nothing configured", config.ScheduleConfig{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(tt.cfg, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %T", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewScheduler: %v", err)
			}
			switch tt.want {
			case "cron":
				if _, ok := s.(*CronScheduler); !ok {
					t.Errorf("got %T, want *CronScheduler", s)
				}
			case "fixed":
				if _, ok := s.(*FixedRateScheduler); !ok {
					t.Errorf("got %T, want *FixedRateScheduler", s)
				}
			}
		})
	}
}

func TestFixedRateScheduler_RunsAndStops(t *testing.T) {
	s := NewFixedRateScheduler(10 * time.Millisecond)

	var runs int32
	if err := s.Start(func() error {
		if atomic.AddInt32(&runs, 1) == 1 {
			return errors.New("first run fails")
		}
		return nil
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if atomic.LoadInt32(&runs) < 3 {
		t.Fatalf("task ran %d times, a failing run must not stop the schedule", runs)
	}

	after := atomic.LoadInt32(&runs)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&runs) != after {
		t.Error("task kept running after Stop")
	}
	// a second Stop is harmless
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestCronScheduler_Next(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	s, err := NewCronScheduler("0 7 * * *", seoul)
	if err != nil {
		t.Fatalf("NewCronScheduler: %v", err)
	}

	// 23:00 UTC is 08:00 the next day in Seoul, so the next 07:00 is a day later
	from := time.Date(2025, 5, 1, 23, 0, 0, 0, time.UTC)
	want := time.Date(2025, 5, 3, 7, 0, 0, 0, seoul)
	if got := s.Next(from); !got.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", from, got, want)
	}
}

func TestNextRun(t *testing.T) {
	started := time.Date(2025, 5, 1, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  config.ScheduleConfig
		now  time.Time
		want time.Time
	}{
		{"cron", config.ScheduleConfig{Cron: "0 7 * * *"}, started.Add(2 * time.Hour), time.Date(2025, 5, 2, 7, 0, 0, 0, time.UTC)},
		{"interval first tick", config.ScheduleConfig{Interval: "1h"}, started.Add(10 * time.Minute), started.Add(time.Hour)},
		{"interval later tick", config.ScheduleConfig{Interval: "1h"}, started.Add(150 * time.Minute), started.Add(3 * time.Hour)},
		{"interval on a tick", config.ScheduleConfig{Interval: "30m"}, started.Add(time.Hour), started.Add(90 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(tt.cfg, time.UTC, started, tt.now)
			if err != nil {
				t.Fatalf("NextRun: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextRun = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NextRun(config.ScheduleConfig{}, time.UTC, started, started); err == nil {
		t.Error("expected an error without interval or cron")
	}
}
