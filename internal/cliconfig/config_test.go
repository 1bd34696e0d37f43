package cliconfig

import "testing"

func TestValidateRequiresDataRoot(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing data root")
	}
}

func TestValidateDerivesRankDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataRoot = "/data/xmm"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.RankDir != "/data/xmm/Blank_Sky" {
		t.Errorf("RankDir = %q, want %q", cfg.RankDir, "/data/xmm/Blank_Sky")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestValidateKeepsExplicitRankDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataRoot = "/data/xmm"
	cfg.RankDir = "/elsewhere"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.RankDir != "/elsewhere" {
		t.Errorf("RankDir = %q, want /elsewhere", cfg.RankDir)
	}
}
