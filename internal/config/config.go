// Package config provides configuration loading for the patience CLI.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (PATIENCE_*)
//  2. Config file (--config, or ~/.patience/config.yml)
//  3. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: PATIENCE_
//   - Nested fields: Use underscores (PATIENCE_WAIT_TIMEOUT=10s)
//   - Durations use Go syntax ("1ms", "30s", "2m")
//
// Example config.yml:
//
//	wait:
//	  timeout: 45s
//	  poll_interval: 2ms
//	handoff:
//	  port_env: APP_READY_PORT
//	  port_file: /tmp/app.port
//	log:
//	  level: debug
package config

import (
	"time"

	"github.com/mvp-joe/test-patience"
)

// Config holds the settings shared by all patience commands.
type Config struct {
	Wait    WaitConfig    `yaml:"wait" mapstructure:"wait"`
	Handoff HandoffConfig `yaml:"handoff" mapstructure:"handoff"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// WaitConfig controls the waiting side of the handshake.
type WaitConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`             // Upper bound for a single wait
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"` // Granularity of the accept loop
}

// HandoffConfig controls how the session port travels to the application.
type HandoffConfig struct {
	PortEnv  string `yaml:"port_env" mapstructure:"port_env"`   // Environment variable carrying the port
	PortFile string `yaml:"port_file" mapstructure:"port_file"` // Optional file carrying the port
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // logrus level name
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Wait: WaitConfig{
			Timeout:      30 * time.Second,
			PollInterval: patience.DefaultPollInterval,
		},
		Handoff: HandoffConfig{
			PortEnv: patience.PortEnv,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
