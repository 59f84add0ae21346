package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "boot.timeout")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateBoot()...)
	errs = append(errs, c.validateCleanup()...)
	errs = append(errs, c.validateTools()...)
	errs = append(errs, c.validateLog()...)

	return errs
}

func (c *Config) validateBoot() []ValidationError {
	var errs []ValidationError

	if c.Boot.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "boot.timeout",
			Value:   c.Boot.Timeout,
			Message: "must be positive",
		})
	}
	if c.Boot.PollInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "boot.poll_interval",
			Value:   c.Boot.PollInterval,
			Message: "must be positive",
		})
	}
	if c.Boot.PollInterval > c.Boot.Timeout && c.Boot.Timeout > 0 {
		errs = append(errs, ValidationError{
			Field:   "boot.poll_interval",
			Value:   c.Boot.PollInterval,
			Message: fmt.Sprintf("must not exceed boot.timeout (%s)", c.Boot.Timeout),
		})
	}

	return errs
}

func (c *Config) validateCleanup() []ValidationError {
	if slices.Contains(ValidCleanupPolicies(), c.Cleanup.Policy) {
		return nil
	}
	return []ValidationError{{
		Field:   "cleanup.policy",
		Value:   c.Cleanup.Policy,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidCleanupPolicies(), ", ")),
	}}
}

func (c *Config) validateTools() []ValidationError {
	var errs []ValidationError

	tools := []struct {
		field string
		value string
	}{
		{"tools.emulator", c.Tools.Emulator},
		{"tools.adb", c.Tools.ADB},
		{"tools.react_native", c.Tools.ReactNative},
	}
	for _, t := range tools {
		if strings.TrimSpace(t.value) == "" {
			errs = append(errs, ValidationError{
				Field:   t.field,
				Value:   t.value,
				Message: "must not be empty",
			})
		}
	}

	return errs
}

func (c *Config) validateLog() []ValidationError {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" || slices.Contains(ValidLogLevels(), level) {
		return nil
	}
	return []ValidationError{{
		Field:   "log.level",
		Value:   c.Log.Level,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
	}}
}
