package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkruglov/abacgen/internal/config"
)

func TestInitConfigWritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abacgen.yaml")
	initConfigPath = path

	if err := initConfigCmd.RunE(initConfigCmd, nil); err != nil {
		t.Fatalf("init-config: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("generated config must load: %v", err)
	}
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abacgen.yaml")
	if err := os.WriteFile(path, []byte("seed: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	initConfigPath = path

	if err := initConfigCmd.RunE(initConfigCmd, nil); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
