package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"health-report/internal/config"
	"health-report/internal/logger"
	"health-report/internal/task"
)

var runConfigPath string
var runDate string
var runDryRun bool

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and publish one report now",
		Long: "Runs the full report pipeline once and prints the result as JSON.\n" +
			"With --dry-run every object goes to the local backend under storage.local_path;\n" +
			"the font is then read from <local_path>/<report_bucket>/fonts/.",
		RunE: runRun,
	}

	cmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&runDate, "date", "", "Report date (YYYY-MM-DD), defaults to today in report.timezone")
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Write artifacts to the local backend instead of the configured one")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if runDryRun {
		cfg.Storage.Backend = "local"
		cfg.Storage.PublicBaseURL = ""
		logger.GetLogger().Infof("Dry run: writing artifacts under %s", cfg.Storage.LocalPath)
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	day, err := parseRunDate(runDate, loc)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	executor, err := task.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	result, err := executor.RunFor(ctx, day)
	if err != nil {
		return fmt.Errorf("report run failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}

// parseRunDate returns now for an empty value, otherwise noon of the given day in loc.
func parseRunDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation(task.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return day.Add(12 * time.Hour), nil
}
