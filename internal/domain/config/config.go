// Package config loads and validates the flowprep run configuration.
package config

import (
	"fmt"
	"regexp"

	"github.com/felixgeelhaar/flowprep/internal/ports"
	"github.com/felixgeelhaar/flowprep/internal/validation"
)

// DefaultFileName is the config file looked up when --config is not given.
const DefaultFileName = "flowprep.yaml"

// profilePattern restricts profile names to identifiers that are safe as
// database names and file name fragments.
var profilePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// DatabaseConfig holds the connection parameters for the administrative
// database connection and the provisioned database's identity.
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// AdminURL is a complete DSN for the administrative connection.
	AdminURL string `yaml:"admin_url"`
	// Service names a section of a pg_service.conf style file to read
	// admin connection parameters from instead of AdminURL.
	Service string `yaml:"service"`
	// ServiceFile overrides the default pg_service.conf location.
	ServiceFile string `yaml:"service_file"`

	AdminUser     string `yaml:"admin_user"`
	AdminPassword string `yaml:"admin_password"`

	// Name is the database to provision; defaults to the profile name.
	Name string `yaml:"name"`
	// User is the workflow profile's database role; defaults to the
	// profile name.
	User string `yaml:"user"`
	// Owner is the role owning the provisioned database; empty keeps the
	// admin role as owner.
	Owner string `yaml:"owner"`
	// Password is the workflow profile's database password, passed to the
	// profile setup command. Never logged.
	Password string `yaml:"password"`
}

// Config is the run configuration for one provisioning target.
type Config struct {
	// Profile selects the isolation namespace for the provisioned
	// resources.
	Profile string `yaml:"profile"`
	// InstallPath is the base directory for persisted state (profile
	// marker, repository directory).
	InstallPath string `yaml:"install_path"`
	// Host is the target computer name registered with the workflow
	// manager.
	Host string `yaml:"host"`
	// BecomeUser is the identity the workflow CLI is provisioned for.
	BecomeUser string `yaml:"become_user"`

	Database DatabaseConfig `yaml:"database"`

	// EnableStatsExtension controls whether the optional statistics
	// extension step runs.
	EnableStatsExtension bool `yaml:"enable_stats_extension"`
	// WorkerCount is reserved for a disabled daemon-scaling step.
	WorkerCount int `yaml:"worker_count"`
}

// ApplyDefaults fills unset fields with their defaults and expands the
// install path.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Name == "" {
		c.Database.Name = c.Profile
	}
	if c.Database.User == "" {
		c.Database.User = c.Profile
	}
	if c.WorkerCount == 0 {
		c.WorkerCount = 1
	}
	c.InstallPath = ports.ExpandPath(c.InstallPath)
}

// Validate checks the configuration and returns a UserError describing
// the first problem found.
func (c *Config) Validate() error {
	if c.Profile == "" {
		return NewValidationError(
			"profile is required",
			"set 'profile' to the name of the workflow profile to provision",
		)
	}
	if !profilePattern.MatchString(c.Profile) {
		return NewValidationError(
			fmt.Sprintf("profile %q is not a valid name", c.Profile),
			"use lowercase letters, digits, hyphens and underscores, starting with a letter",
		)
	}
	if c.InstallPath == "" {
		return NewValidationError(
			"install_path is required",
			"set 'install_path' to the directory that holds the profile's persisted state",
		)
	}
	if err := validation.ValidatePathArgument(c.InstallPath); err != nil {
		return NewValidationError(
			fmt.Sprintf("install_path %q is not a safe path: %v", c.InstallPath, err),
			"use an absolute or home-relative path without parent references",
		)
	}
	if err := validation.ValidateHostname(c.Host); err != nil {
		return NewValidationError(
			fmt.Sprintf("host %q is not a valid hostname: %v", c.Host, err),
			"use an RFC 1123 hostname such as 'localhost' or 'node01.lab'",
		)
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return NewValidationError(
			fmt.Sprintf("database port %d is out of range", c.Database.Port),
			"use a port between 1 and 65535",
		)
	}
	if c.WorkerCount < 0 {
		return NewValidationError(
			fmt.Sprintf("worker_count %d is negative", c.WorkerCount),
			"worker_count is reserved for daemon scaling and must be >= 0",
		)
	}
	if c.Database.AdminURL != "" && c.Database.Service != "" {
		return NewValidationError(
			"database.admin_url and database.service are mutually exclusive",
			"configure either the full DSN or the pg_service.conf section, not both",
		)
	}
	return nil
}
