package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"health-report/internal/config"
)

var configConfigPath string

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE:  runConfig,
	}
	cmd.Flags().StringVarP(&configConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Configuration\n")
	fmt.Fprintf(os.Stdout, "=============\n\n")
	fmt.Fprintf(os.Stdout, "Database:\n")
	fmt.Fprintf(os.Stdout, "  Driver: %s\n", cfg.Database.Driver)
	if cfg.Database.DSN != "" {
		fmt.Fprintf(os.Stdout, "  DSN: %s\n", maskAPIKey(cfg.Database.DSN))
	} else {
		fmt.Fprintf(os.Stdout, "  Host: %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		fmt.Fprintf(os.Stdout, "  User: %s\n", cfg.Database.User)
		fmt.Fprintf(os.Stdout, "  Password: %s\n", maskAPIKey(cfg.Database.Password))
		fmt.Fprintf(os.Stdout, "  Name: %s\n", cfg.Database.Name)
	}
	fmt.Fprintf(os.Stdout, "\nStorage:\n")
	fmt.Fprintf(os.Stdout, "  Backend: %s\n", cfg.Storage.Backend)
	fmt.Fprintf(os.Stdout, "  Region: %s\n", cfg.Storage.Region)
	if cfg.Storage.Endpoint != "" {
		fmt.Fprintf(os.Stdout, "  Endpoint: %s (ssl: %v)\n", cfg.Storage.Endpoint, cfg.Storage.UseSSL)
	}
	fmt.Fprintf(os.Stdout, "  Access Key: %s\n", maskAPIKey(cfg.Storage.AccessKey))
	fmt.Fprintf(os.Stdout, "  Secret Key: %s\n", maskAPIKey(cfg.Storage.SecretKey))
	fmt.Fprintf(os.Stdout, "  Graph Bucket: %s\n", cfg.Storage.GraphBucket)
	fmt.Fprintf(os.Stdout, "  Report Bucket: %s\n", cfg.Storage.ReportBucket)
	fmt.Fprintf(os.Stdout, "  Local Path: %s\n", cfg.Storage.LocalPath)
	fmt.Fprintf(os.Stdout, "\nOpenAI:\n")
	fmt.Fprintf(os.Stdout, "  Base URL: %s\n", cfg.OpenAI.BaseURL)
	fmt.Fprintf(os.Stdout, "  Model: %s\n", cfg.OpenAI.Model)
	fmt.Fprintf(os.Stdout, "  Temperature: %.2f\n", cfg.OpenAI.Temperature)
	fmt.Fprintf(os.Stdout, "  Max Completion Tokens: %d\n", cfg.OpenAI.MaxCompletionTokens)
	fmt.Fprintf(os.Stdout, "  Timeout: %s\n", orDefault(cfg.OpenAI.Timeout, "(none)"))
	fmt.Fprintf(os.Stdout, "  API Key: %s\n", maskAPIKey(cfg.OpenAI.APIKey))
	fmt.Fprintf(os.Stdout, "\nReport:\n")
	fmt.Fprintf(os.Stdout, "  User: %s\n", cfg.Report.UserName)
	fmt.Fprintf(os.Stdout, "  Label: %s\n", cfg.Report.Label)
	fmt.Fprintf(os.Stdout, "  Timezone: %s\n", cfg.Report.Timezone)
	fmt.Fprintf(os.Stdout, "  Wrap Width: %d\n", cfg.Report.WrapWidth)
	fmt.Fprintf(os.Stdout, "  Font: %s\n", cfg.Report.FontFile)
	fmt.Fprintf(os.Stdout, "\nSchedule:\n")
	fmt.Fprintf(os.Stdout, "  Interval: %s\n", cfg.Schedule.Interval)
	fmt.Fprintf(os.Stdout, "  Cron: %s\n", orDefault(cfg.Schedule.Cron, "(not set)"))
	fmt.Fprintf(os.Stdout, "  Run On Start: %v\n", cfg.Schedule.RunOnStart)
	fmt.Fprintf(os.Stdout, "\nLog:\n")
	fmt.Fprintf(os.Stdout, "  Level: %s\n", cfg.Log.Level)
	fmt.Fprintf(os.Stdout, "  File: %s\n", orDefault(cfg.Log.FilePath, "(stdout only)"))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stdout, "\nValidation:\n  %v\n", err)
	}

	return nil
}

func maskAPIKey(key string) string {
	if len(key) == 0 {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
