package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				DataRoot:    "/data/xmm",
				MetadataCSV: "/data/dfacs.csv",
				RankDir:     "/data/blank_sky",
				LogLevel:    "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				DataRoot:    "/data/xmm",
				MetadataCSV: "/data/dfacs.csv",
				RankDir:     "/data/blank_sky",
				LogLevel:    "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				DataRoot:    "/config/root",
				MetadataCSV: "/config/dfacs.csv",
			},
			changed: map[string]bool{"data-root": true},
			initial: Config{
				DataRoot: "/flag/root",
			},
			expected: Config{
				DataRoot:    "/flag/root", // unchanged because flag was set
				MetadataCSV: "/config/dfacs.csv",
			},
		},
		{
			name:       "empty file values leave config untouched",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial: Config{
				DataRoot: "/data/xmm",
				LogLevel: "info",
			},
			expected: Config{
				DataRoot: "/data/xmm",
				LogLevel: "info",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	content := `
data_root = "/data/xmm"
metadata_csv = "/data/dfacs.csv"
log_level = "warn"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.DataRoot != "/data/xmm" || fc.MetadataCSV != "/data/dfacs.csv" || fc.LogLevel != "warn" {
		t.Errorf("unexpected file config: %+v", fc)
	}
}

func TestLoadFileConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("data_root = [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
