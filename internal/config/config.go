package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. RNANDROID_BOOT_TIMEOUT.
const EnvPrefix = "RNANDROID"

// DefaultDocsURL is the setup guide shown on precondition failures.
const DefaultDocsURL = "https://reactnative.dev/docs/environment-setup"

// Cleanup policies for child processes.
const (
	CleanupNever     = "never"
	CleanupOnFailure = "on-failure"
	CleanupAlways    = "always"
)

// Config represents the complete rnandroid configuration
type Config struct {
	Boot    BootConfig    `mapstructure:"boot"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Tools   ToolsConfig   `mapstructure:"tools"`
	Log     LogConfig     `mapstructure:"log"`
	DocsURL string        `mapstructure:"docs_url"`
}

// BootConfig controls how long and how often the device bridge is polled
type BootConfig struct {
	// Timeout is the deadline for the emulator to report as booted
	Timeout time.Duration `mapstructure:"timeout"`
	// PollInterval is the delay between device bridge queries
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// CleanupConfig controls what happens to spawned children when rnandroid stops
type CleanupConfig struct {
	// Policy is one of "never", "on-failure", "always"
	Policy string `mapstructure:"policy"`
}

// ToolsConfig names the external executables
type ToolsConfig struct {
	Emulator    string `mapstructure:"emulator"`
	ADB         string `mapstructure:"adb"`
	ReactNative string `mapstructure:"react_native"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	// Level is one of ValidLogLevels
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Boot: BootConfig{
			Timeout:      60 * time.Second,
			PollInterval: 500 * time.Millisecond,
		},
		Cleanup: CleanupConfig{
			Policy: CleanupOnFailure,
		},
		Tools: ToolsConfig{
			Emulator:    "emulator",
			ADB:         "adb",
			ReactNative: "react-native",
		},
		Log: LogConfig{
			Level: "warn",
		},
		DocsURL: DefaultDocsURL,
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("boot.timeout", defaults.Boot.Timeout)
	v.SetDefault("boot.poll_interval", defaults.Boot.PollInterval)
	v.SetDefault("cleanup.policy", defaults.Cleanup.Policy)
	v.SetDefault("tools.emulator", defaults.Tools.Emulator)
	v.SetDefault("tools.adb", defaults.Tools.ADB)
	v.SetDefault("tools.react_native", defaults.Tools.ReactNative)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("docs_url", defaults.DocsURL)
}

// New returns a viper instance with defaults and environment overrides
// registered. If configFile is empty, the working directory and the user
// config directory are searched; a missing file is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".rnandroid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rnandroid")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rnandroid"
	}
	return filepath.Join(home, ".config", "rnandroid")
}

// ValidCleanupPolicies returns the list of valid cleanup policy values
func ValidCleanupPolicies() []string {
	return []string{CleanupNever, CleanupOnFailure, CleanupAlways}
}

// ValidLogLevels returns the list of valid log levels. Matching is
// case-insensitive and ignores surrounding whitespace.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "warning", "error"}
}

// KillOnFailure reports whether children are killed when the flow fails.
func (c *CleanupConfig) KillOnFailure() bool {
	return c.Policy == CleanupOnFailure || c.Policy == CleanupAlways
}

// KillOnInterrupt reports whether children are killed when the user stops
// rnandroid after a successful launch.
func (c *CleanupConfig) KillOnInterrupt() bool {
	return c.Policy == CleanupAlways
}
