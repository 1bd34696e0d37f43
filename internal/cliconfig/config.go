package cliconfig

import "fmt"

// Config holds CLI configuration for specred.
type Config struct {
	// DataRoot is the directory holding one folder per observation id.
	DataRoot string

	// MetadataCSV is the path to the external per-observation metadata
	// table (D-factors and sky coordinates).
	MetadataCSV string

	// RankDir is where the rank command writes its outputs. Derived from
	// DataRoot during Validate when empty.
	RankDir string

	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("data-root is required")
	}
	if c.RankDir == "" {
		c.RankDir = c.DataRoot + "/Blank_Sky"
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}
