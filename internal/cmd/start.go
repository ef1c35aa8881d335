package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"health-report/internal/config"
	"health-report/internal/logger"
	"health-report/internal/scheduler"
	"health-report/internal/task"
)

var configPath string

func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run reports on the configured schedule",
		RunE:  runStart,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	executor, err := task.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	sched, err := scheduler.NewScheduler(cfg.Schedule, loc)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	reportTask := func() error {
		result, err := executor.TryRun(ctx)
		if errors.Is(err, task.ErrRunInProgress) {
			logger.GetLogger().Info("Previous report run still in progress, skipping this trigger")
			return nil
		}
		if err != nil {
			return err
		}
		logger.GetLogger().Info(result.Message)
		return nil
	}

	if err := sched.Start(reportTask); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if cfg.Schedule.RunOnStart {
		logger.GetLogger().Info("Executing initial report run on startup...")
		if err := reportTask(); err != nil {
			logger.GetLogger().Warnf("Initial report run failed: %v", err)
		}
	}

	logger.GetLogger().Info("Health report scheduler started. Press Ctrl+C to stop.")
	logger.GetLogger().Infof("Interval: %s, Cron: %s", cfg.Schedule.Interval, cfg.Schedule.Cron)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.GetLogger().Info("Stopping...")
	if err := sched.Stop(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	logger.GetLogger().Info("Stopped.")

	return nil
}
