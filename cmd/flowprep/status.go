package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowprep/internal/app"
	"github.com/felixgeelhaar/flowprep/internal/domain/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workflow environment status",
	Long: `Status runs the read-only environment query and prints its report.

Nothing is provisioned or changed; a degraded environment is reported,
not treated as an error.`,
	RunE: runStatus,
}

var statusConfigPath string

// statusClient is the application surface the status command needs.
type statusClient interface {
	Status(ctx context.Context, configPath string) (string, error)
	PrintStatus(report string)
}

var newStatusApp = func(out io.Writer) statusClient {
	return app.New(out, newLogger())
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusConfigPath, "config", "c", config.DefaultFileName, "Path to flowprep.yaml")
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	flowprep := newStatusApp(os.Stdout)

	report, err := flowprep.Status(ctx, statusConfigPath)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	flowprep.PrintStatus(report)
	return nil
}
