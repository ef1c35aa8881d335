package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"health-report/internal/config"
	"health-report/internal/logger"
)

// Scheduler fires a task repeatedly until stopped. Task errors are logged, not returned.
type Scheduler interface {
	Start(task func() error) error
	Stop() error
}

type FixedRateScheduler struct {
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewFixedRateScheduler(interval time.Duration) *FixedRateScheduler {
	return &FixedRateScheduler{
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (s *FixedRateScheduler) Start(task func() error) error {
	if s.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", s.interval)
	}
	s.ticker = time.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ticker.C:
				runTask(task)
			case <-s.done:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker and waits for an in-flight task to return.
func (s *FixedRateScheduler) Stop() error {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.done)
	})
	s.wg.Wait()
	return nil
}

type CronScheduler struct {
	spec     string
	schedule cron.Schedule
	location *time.Location
	cron     *cron.Cron
	entry    cron.EntryID
}

// cronParser accepts both the five-field form and a leading seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func NewCronScheduler(spec string, loc *time.Location) (*CronScheduler, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithParser(cronParser), cron.WithLocation(loc))
	return &CronScheduler{
		spec:     spec,
		schedule: schedule,
		location: loc,
		cron:     c,
	}, nil
}

func (s *CronScheduler) Start(task func() error) error {
	entryID, err := s.cron.AddFunc(s.spec, func() {
		runTask(task)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec: %w", err)
	}

	s.entry = entryID
	s.cron.Start()
	logger.GetLogger().Infof("Next report run at %s", s.Next(time.Now()).Format(time.RFC3339))
	return nil
}

// Next returns the first activation after t.
func (s *CronScheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.location))
}

// Stop waits for a running job to finish.
func (s *CronScheduler) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	return nil
}

func runTask(task func() error) {
	if err := task(); err != nil {
		logger.GetLogger().Errorf("Scheduled task execution failed: %v", err)
	}
}

// NewScheduler prefers schedule.cron and falls back to schedule.interval.
// Cron expressions are evaluated in loc.
func NewScheduler(cfg config.ScheduleConfig, loc *time.Location) (Scheduler, error) {
	if cfg.Cron != "" {
		return NewCronScheduler(cfg.Cron, loc)
	}

	if cfg.Interval != "" {
		duration, err := cfg.GetIntervalDuration()
		if err != nil {
			return nil, fmt.Errorf("invalid interval: %w", err)
		}
		if duration <= 0 {
			return nil, fmt.Errorf("invalid interval: must be positive, got %s", cfg.Interval)
		}
		return NewFixedRateScheduler(duration), nil
	}

	return nil, fmt.Errorf("either interval or cron must be specified")
}

// NextRun predicts the first activation after now for a scheduler built from
// cfg and started at started. Fixed-rate schedules tick every interval from start.
func NextRun(cfg config.ScheduleConfig, loc *time.Location, started, now time.Time) (time.Time, error) {
	s, err := NewScheduler(cfg, loc)
	if err != nil {
		return time.Time{}, err
	}
	switch s := s.(type) {
	case *CronScheduler:
		return s.Next(now), nil
	case *FixedRateScheduler:
		if now.Before(started) {
			return started.Add(s.interval), nil
		}
		ticks := now.Sub(started)/s.interval + 1
		return started.Add(ticks * s.interval), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported scheduler %T", s)
	}
}
