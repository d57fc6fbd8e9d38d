package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PATIENCE_*)
// 2. Config file: configFile if set, otherwise ~/.patience/config.yml
// 3. Default values
//
// A missing default config file is not an error; a missing explicit one is.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".patience"))
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("PATIENCE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvVars binds every key so Unmarshal sees env values even when the
// key is absent from the config file.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("wait.timeout")
	v.BindEnv("wait.poll_interval")

	v.BindEnv("handoff.port_env")
	v.BindEnv("handoff.port_file")

	v.BindEnv("log.level")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("wait.timeout", defaults.Wait.Timeout)
	v.SetDefault("wait.poll_interval", defaults.Wait.PollInterval)

	v.SetDefault("handoff.port_env", defaults.Handoff.PortEnv)
	v.SetDefault("handoff.port_file", defaults.Handoff.PortFile)

	v.SetDefault("log.level", defaults.Log.Level)
}
