// Package postgres provides the database administration adapter.
package postgres

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/flowprep/internal/ports"
)

// DefaultMaintenanceDB is the database used for administrative connections.
const DefaultMaintenanceDB = "postgres"

// Config holds connection parameters for the administrative connection.
type Config struct {
	// URL is a complete DSN. When set it takes precedence over the
	// individual fields below.
	URL string

	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string

	// MaintenanceDB is the database to connect to for admin statements.
	MaintenanceDB string

	PingTimeout time.Duration
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.URL != "" {
		if _, err := url.Parse(c.URL); err != nil {
			return fmt.Errorf("invalid database URL: %w", err)
		}
		return nil
	}
	if c.Host == "" {
		return errors.New("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("database port %d out of range", c.Port)
	}
	if c.User == "" {
		return errors.New("database user is required")
	}
	return nil
}

// withDefaults fills in unset optional fields.
func (c Config) withDefaults() Config {
	if c.MaintenanceDB == "" {
		c.MaintenanceDB = DefaultMaintenanceDB
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 2 * time.Second
	}
	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}
	return c
}

// DSN builds a connection string for the given database. Fields are
// URL-encoded individually so values with special characters never leak
// into the connection string unescaped.
func (c Config) DSN(database string) string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}

	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// LookupService reads a pg_service.conf style INI file and overlays the
// named section's connection parameters onto the config. Only recognized
// keys are applied.
func LookupService(fs ports.FileSystem, path, service string) (Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read service file %s: %w", path, err)
	}

	file, err := ini.Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse service file %s: %w", path, err)
	}

	section, err := file.GetSection(service)
	if err != nil {
		return Config{}, fmt.Errorf("service %q not found in %s", service, path)
	}

	cfg := Config{}
	if k := section.Key("host"); k.String() != "" {
		cfg.Host = k.String()
	}
	if k := section.Key("port"); k.String() != "" {
		port, err := k.Int()
		if err != nil {
			return Config{}, fmt.Errorf("service %q: invalid port: %w", service, err)
		}
		cfg.Port = port
	}
	if k := section.Key("user"); k.String() != "" {
		cfg.User = k.String()
	}
	if k := section.Key("password"); k.String() != "" {
		cfg.Password = k.String()
	}
	if k := section.Key("dbname"); k.String() != "" {
		cfg.MaintenanceDB = k.String()
	}
	if k := section.Key("sslmode"); k.String() != "" {
		cfg.SSLMode = k.String()
	}

	return cfg, nil
}

// Merge overlays non-zero fields from other onto the config.
func (c Config) Merge(other Config) Config {
	if other.Host != "" {
		c.Host = other.Host
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.User != "" {
		c.User = other.User
	}
	if other.Password != "" {
		c.Password = other.Password
	}
	if other.MaintenanceDB != "" {
		c.MaintenanceDB = other.MaintenanceDB
	}
	if other.SSLMode != "" {
		c.SSLMode = other.SSLMode
	}
	return c
}
