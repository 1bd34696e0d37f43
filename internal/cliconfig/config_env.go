package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (SPECRED_*). It respects flags that have been explicitly set (changed
// map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("data-root", os.Getenv("SPECRED_DATA_ROOT"), &cfg.DataRoot)
	s.setString("metadata", os.Getenv("SPECRED_METADATA_CSV"), &cfg.MetadataCSV)
	s.setString("rank-dir", os.Getenv("SPECRED_RANK_DIR"), &cfg.RankDir)
	s.setString("log-level", os.Getenv("SPECRED_LOG_LEVEL"), &cfg.LogLevel)
}
