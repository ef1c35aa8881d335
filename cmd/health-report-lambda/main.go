package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"health-report/internal/config"
	"health-report/internal/logger"
	"health-report/internal/task"
)

// Event optionally pins the report date; an empty payload means today.
type Event struct {
	Date string `json:"date"`
}

var (
	initOnce sync.Once
	executor *task.Executor
	location *time.Location
	initErr  error
)

func main() {
	lambda.Start(handler)
}

func setup(ctx context.Context) error {
	initOnce.Do(func() {
		cfg, err := config.Load(os.Getenv("HEALTH_REPORT_CONFIG"))
		if err != nil {
			initErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		if location, err = cfg.Report.Location(); err != nil {
			initErr = err
			return
		}
		executor, initErr = task.New(ctx, cfg)
	})
	return initErr
}

func handler(ctx context.Context, event Event) (*task.Result, error) {
	if err := setup(ctx); err != nil {
		return nil, err
	}

	day := time.Now()
	if event.Date != "" {
		d, err := time.ParseInLocation(task.DateLayout, event.Date, location)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", event.Date, err)
		}
		day = d.Add(12 * time.Hour)
	}

	logger.GetLogger().Infof("Report Lambda invoked (date: %s)", day.In(location).Format(task.DateLayout))
	return executor.RunFor(ctx, day)
}
