package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowprep/internal/domain/config"
	"github.com/felixgeelhaar/flowprep/internal/templates"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Init writes a commented starter flowprep.yaml to the current directory.

Existing files are never overwritten.`,
	RunE: runInit,
}

var (
	initProfile     string
	initInstallPath string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initProfile, "profile", "p", "default", "Profile name for the starter config")
	initCmd.Flags().StringVar(&initInstallPath, "install-path", "~/.flowprep", "Install path for the starter config")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := config.DefaultFileName

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", path)
	}

	content, err := templates.RenderConfig(templates.ConfigData{
		Profile:     initProfile,
		InstallPath: initInstallPath,
	})
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	cmd.Printf("Wrote %s. Edit the database credentials, then run 'flowprep plan'.\n", path)
	return nil
}
