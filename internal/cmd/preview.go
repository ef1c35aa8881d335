package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"health-report/internal/analyzer"
	"health-report/internal/config"
	"health-report/internal/storage"
)

var previewConfigPath string

func NewPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the fetched records and the prompts a run would send",
		Long:  "Reads the sleep and activity tables and prints the model prompts without calling the model or uploading anything.",
		RunE:  runPreview,
	}
	cmd.Flags().StringVarP(&previewConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(previewConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}
	source, err := storage.NewSQLSource(cfg.Database, loc)
	if err != nil {
		return fmt.Errorf("failed to initialize data source: %w", err)
	}

	ctx := cmd.Context()
	sleep, err := source.FetchSleep(ctx)
	if err != nil {
		return err
	}
	activity, err := source.FetchActivity(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Health Report Preview\n")
	fmt.Fprintf(os.Stdout, "=====================\n\n")
	fmt.Fprintf(os.Stdout, "Sleep records: %d\n", len(sleep))
	if len(sleep) > 0 {
		fmt.Fprintf(os.Stdout, "  Range: %s .. %s\n",
			sleep[0].Timestamp.Format("2006-01-02 15:04"), sleep[len(sleep)-1].Timestamp.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(os.Stdout, "Activity records: %d\n", len(activity))
	if len(activity) > 0 {
		fmt.Fprintf(os.Stdout, "  Range: %s .. %s\n",
			activity[0].Timestamp.Format("2006-01-02 15:04"), activity[len(activity)-1].Timestamp.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(os.Stdout, "\nModel: %s (temperature %.1f)\n", cfg.OpenAI.Model, cfg.OpenAI.Temperature)
	fmt.Fprintf(os.Stdout, "\n--- activity prompt ---\n%s\n", analyzer.FormatActivity(activity))
	fmt.Fprintf(os.Stdout, "\n--- sleep prompt ---\n%s\n", analyzer.FormatSleep(sleep))

	return nil
}
