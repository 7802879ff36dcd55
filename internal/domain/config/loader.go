package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads run configuration from the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, parses, defaults and validates the configuration at path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigNotFoundError(path)
		}
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, NewParseError(path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return nil, userErr.withContext(path)
		}
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML configuration. Unknown keys are rejected so typos
// surface as errors instead of silently ignored options.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// withContext returns a copy of the error with location context set.
func (e *UserError) withContext(ctx string) *UserError {
	return &UserError{
		Code:       e.Code,
		Message:    e.Message,
		Context:    ctx,
		Suggestion: e.Suggestion,
		Underlying: e.Underlying,
	}
}
