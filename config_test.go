package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags([]string{"./predicate.sh", "case.c"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Strategy != string(Conservative) {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, Conservative)
	}
	if cfg.GiveUpThreshold != 10000 {
		t.Errorf("GiveUpThreshold = %d, want 10000", cfg.GiveUpThreshold)
	}
	if cfg.Predicate != "./predicate.sh" || len(cfg.Cases) != 1 || cfg.Cases[0] != "case.c" {
		t.Errorf("positional args parsed wrong: predicate=%q cases=%v", cfg.Predicate, cfg.Cases)
	}
}

func TestParseFlagsNonDeterministicLowersGiveUpThresholdByDefault(t *testing.T) {
	cfg, err := ParseFlags([]string{"--test-manager", "non-deterministic", "./predicate.sh", "case.c"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.GiveUpThreshold != 2000 {
		t.Fatalf("GiveUpThreshold = %d, want 2000 for non-deterministic", cfg.GiveUpThreshold)
	}
}

func TestParseFlagsExplicitGiveUpThresholdOverridesStrategyDefault(t *testing.T) {
	cfg, err := ParseFlags([]string{"--test-manager", "non-deterministic", "--give-up-threshold", "77", "./predicate.sh", "case.c"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.GiveUpThreshold != 77 {
		t.Fatalf("GiveUpThreshold = %d, want 77 (explicit flag must win)", cfg.GiveUpThreshold)
	}
}

func TestParseFlagsRejectsMutuallyExclusivePassGroupFlags(t *testing.T) {
	dir := t.TempDir()
	pg := filepath.Join(dir, "passes.json")
	if err := os.WriteFile(pg, []byte(`{}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := ParseFlags([]string{"--pass-group-file", pg, "--pass-group", "custom", "./predicate.sh", "case.c"})
	if err == nil {
		t.Fatal("expected an error for --pass-group-file combined with a non-default --pass-group")
	}
}

func TestParseFlagsConfigFileSuppliesDefaultsOverriddenByFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shrinker.yaml")
	body := "workers: 8\ntest_manager: fast-conservative\ngive_up_threshold: 500\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := ParseFlags([]string{"--config", path, "./predicate.sh", "case.c"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8 from config file", cfg.Workers)
	}
	if cfg.Strategy != "fast-conservative" {
		t.Errorf("Strategy = %q, want fast-conservative from config file", cfg.Strategy)
	}
	if cfg.GiveUpThreshold != 500 {
		t.Errorf("GiveUpThreshold = %d, want 500 from config file", cfg.GiveUpThreshold)
	}

	cfg2, err := ParseFlags([]string{"--config", path, "-n", "16", "./predicate.sh", "case.c"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if cfg2.Workers != 16 {
		t.Fatalf("Workers = %d, want 16 (explicit -n must override config file)", cfg2.Workers)
	}
}

func TestParseFlagsRejectsUnknownStrategy(t *testing.T) {
	_, err := ParseFlags([]string{"--test-manager", "bogus", "./predicate.sh", "case.c"})
	if err == nil {
		t.Fatal("expected an error for an unknown --test-manager value")
	}
}

func TestParseFlagsRejectsTooFewPositionalArgs(t *testing.T) {
	_, err := ParseFlags([]string{"./predicate.sh"})
	if err == nil {
		t.Fatal("expected an error when no test cases are given")
	}
}

func TestActiveOptionsReflectsSanitizeAndSlowFlags(t *testing.T) {
	cfg, err := ParseFlags([]string{"--sanitize", "--sllooww", "./predicate.sh", "case.c"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	active := cfg.ActiveOptions()
	if !active[OptionSanitize] || !active[OptionSlow] {
		t.Fatalf("ActiveOptions = %v, want both sanitize and slow active", active)
	}
}
