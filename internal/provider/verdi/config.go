// Package verdi provides the workflow-manager CLI provisioning steps.
package verdi

import (
	"path/filepath"
)

// DefaultBinary is the workflow-manager CLI invoked by the steps.
const DefaultBinary = "verdi"

// Config carries the parameters shared by the workflow-manager steps.
type Config struct {
	// Binary overrides the CLI executable, mainly for tests.
	Binary string

	// Profile is the workflow profile name.
	Profile string
	// InstallPath is the base directory for persisted state.
	InstallPath string
	// Host is the target computer label.
	Host string

	// Database connection parameters handed to profile setup.
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
}

// binary returns the CLI executable name.
func (c Config) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

// MarkerPath is the profile's completion-evidence marker file. Its
// existence is the creation guard for the profile step.
func (c Config) MarkerPath() string {
	return filepath.Join(c.InstallPath, "."+c.Profile+".profile")
}

// RepositoryPath is the profile's file repository directory.
func (c Config) RepositoryPath() string {
	return filepath.Join(c.InstallPath, "repository-"+c.Profile)
}

// WorkDirPath is the scratch directory registered with the target
// computer.
func (c Config) WorkDirPath() string {
	return filepath.Join(c.InstallPath, "scratch")
}
