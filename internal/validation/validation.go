// Package validation provides input validation utilities to prevent
// command injection and related input-based attacks in values that end
// up on CLI command lines.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrInvalidHostname  = errors.New("invalid hostname")
	ErrCommandInjection = errors.New("potential command injection detected")
	ErrNewlineInjection = errors.New("newline injection detected")
)

// Compiled regex patterns for validation (compiled once for performance).
var (
	// Hostnames: RFC 1123 labels joined by dots.
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// shellMetachars are characters that could change command interpretation
// if a value were ever passed through a shell.
const shellMetachars = "$`;|&<>(){}[]*?!#~"

// ValidateHostname checks that a hostname is safe to pass as a command
// argument and resolvable as a host label.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return ErrEmptyInput
	}
	if len(hostname) > 253 {
		return fmt.Errorf("%w: exceeds 253 characters", ErrInvalidHostname)
	}
	if !hostnamePattern.MatchString(hostname) {
		return fmt.Errorf("%w: %q", ErrInvalidHostname, hostname)
	}
	return nil
}

// ValidateCommandArgument checks a free-form value that will be passed
// as a single argument to an external command. Arguments are passed via
// exec without a shell, but metacharacters are still rejected so a value
// can never be copy-pasted into a shell unsafely.
func ValidateCommandArgument(value string) error {
	if strings.ContainsAny(value, "\n\r") {
		return ErrNewlineInjection
	}
	if strings.ContainsAny(value, shellMetachars) {
		return fmt.Errorf("%w: %q", ErrCommandInjection, value)
	}
	return nil
}

// ValidatePathArgument checks a filesystem path that will be passed to
// an external command.
func ValidatePathArgument(path string) error {
	if path == "" {
		return ErrEmptyInput
	}
	if strings.ContainsAny(path, "\n\r") {
		return ErrNewlineInjection
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: %q contains a parent reference", ErrCommandInjection, path)
	}
	return nil
}
