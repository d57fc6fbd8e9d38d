package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidTimeout indicates a non-positive wait timeout
	ErrInvalidTimeout = errors.New("invalid wait timeout")

	// ErrInvalidPollInterval indicates a non-positive poll interval
	ErrInvalidPollInterval = errors.New("invalid poll interval")

	// ErrEmptyPortEnv indicates a missing port environment variable name
	ErrEmptyPortEnv = errors.New("empty port environment variable")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Wait.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidTimeout, cfg.Wait.Timeout))
	}
	if cfg.Wait.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: poll_interval must be positive, got %v", ErrInvalidPollInterval, cfg.Wait.PollInterval))
	}
	if cfg.Wait.Timeout > 0 && cfg.Wait.PollInterval > cfg.Wait.Timeout {
		errs = append(errs, fmt.Errorf("%w: poll_interval (%v) should not exceed timeout (%v)", ErrInvalidPollInterval, cfg.Wait.PollInterval, cfg.Wait.Timeout))
	}

	if strings.TrimSpace(cfg.Handoff.PortEnv) == "" {
		errs = append(errs, fmt.Errorf("%w: port_env is required", ErrEmptyPortEnv))
	} else if strings.ContainsAny(cfg.Handoff.PortEnv, "= ") {
		errs = append(errs, fmt.Errorf("%w: %q is not a valid variable name", ErrEmptyPortEnv, cfg.Handoff.PortEnv))
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLogLevel, err))
	}

	return joinErrors(errs)
}

// validationErrors keeps every error reachable for errors.Is while
// rendering them as a list.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return validationErrors(errs)
	}
}
