package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ClearanceMultiplier != 1 {
		t.Errorf("expected ClearanceMultiplier=1, got %d", cfg.ClearanceMultiplier)
	}
	rst := cfg.RoleRestrictions[LegacyFallbackRole]
	if len(rst) != 2 {
		t.Fatalf("expected 2 legacy restrictions, got %d", len(rst))
	}
	if rst[0].BuildingSuffix != "2" {
		t.Errorf("expected building suffix 2, got %q", rst[0].BuildingSuffix)
	}
	if rst[1].Floor != "f3" {
		t.Errorf("expected floor override f3, got %q", rst[1].Floor)
	}
	if devs := cfg.CapabilityDevices["video"]; len(devs) != 1 || devs[0] != "cam" {
		t.Errorf("expected video -> [cam], got %v", devs)
	}
	if cfg.Generalization.GroupBy != "static" || cfg.Generalization.Strategy != "default" {
		t.Errorf("unexpected generalization defaults: %+v", cfg.Generalization)
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	if _, err := Load("/nonexistent/abacgen.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadParseFailureIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("dimensions: [not: a: map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abacgen.yaml")

	content := `
dimensions:
  buildings: [b1, b2]
role_restrictions:
  auditor:
    - topic_template: "{b}/#"
      action: deny
      offset_name: perimeter
priority_offsets:
  perimeter: 2
max_rules: 50
seed: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := cfg.Dimensions["buildings"]; len(got) != 2 || got[0] != "b1" {
		t.Errorf("unexpected buildings: %v", got)
	}
	// Configured map keys merge with defaults rather than replacing them.
	if len(cfg.RoleRestrictions["auditor"]) != 1 {
		t.Errorf("expected auditor restriction from file")
	}
	if len(cfg.RoleRestrictions[LegacyFallbackRole]) != 2 {
		t.Errorf("legacy fallback restrictions must survive a partial override")
	}
	if cfg.MaxRules != 50 {
		t.Errorf("expected max_rules=50, got %d", cfg.MaxRules)
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Errorf("expected seed=7, got %v", cfg.Seed)
	}
	if off := cfg.RestrictionOffset(cfg.RoleRestrictions["auditor"][0]); off != 2 {
		t.Errorf("expected named offset 2, got %d", off)
	}
}

func TestDimensionValuesDefault(t *testing.T) {
	cfg := DefaultConfig()
	vals := cfg.DimensionValues("rooms")
	if len(vals) != 1 || vals[0] != "" {
		t.Errorf("unset dimension must expand as one empty value, got %v", vals)
	}
}

func TestPlaceholderNames(t *testing.T) {
	cfg := DefaultConfig()
	if names := cfg.PlaceholderNames("buildings"); len(names) != 1 || names[0] != "b" {
		t.Errorf("expected default alias b, got %v", names)
	}
	if names := cfg.PlaceholderNames("custom"); len(names) != 1 || names[0] != "custom" {
		t.Errorf("unaliased dimension must use its own name, got %v", names)
	}
}

func TestRolePriorityDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RolePriorities = map[string]int{"admin": 10}
	if got := cfg.RolePriority("admin"); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := cfg.RolePriority("unknown"); got != 1 {
		t.Errorf("expected default 1, got %d", got)
	}
}

func TestSampleYAMLLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abacgen.yaml")
	if err := os.WriteFile(path, []byte(SampleYAML()), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config must parse: %v", err)
	}
	if len(cfg.BasePolicies) != 2 {
		t.Errorf("expected 2 sample base policies, got %d", len(cfg.BasePolicies))
	}
	if len(cfg.Users) != 2 {
		t.Errorf("expected 2 sample users, got %d", len(cfg.Users))
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("expected sample seed 42, got %v", cfg.Seed)
	}
}
