package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowprep/internal/app"
	"github.com/felixgeelhaar/flowprep/internal/domain/config"
	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what changes flowprep would make",
	Long: `Plan loads your configuration and previews the provisioning sequence.

Each step's guard is checked against the current state of the target.
The preview is advisory: during a real run later guards see the side
effects of earlier steps.`,
	RunE: runPlan,
}

var planConfigPath string

// planClient is the application surface the plan command needs.
type planClient interface {
	Plan(ctx context.Context, configPath string) (*provision.Plan, error)
	PrintPlan(plan *provision.Plan)
}

var newPlanApp = func(out io.Writer) planClient {
	return app.New(out, newLogger())
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planConfigPath, "config", "c", config.DefaultFileName, "Path to flowprep.yaml")
}

func runPlan(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	flowprep := newPlanApp(os.Stdout)

	plan, err := flowprep.Plan(ctx, planConfigPath)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	flowprep.PrintPlan(plan)
	return nil
}
