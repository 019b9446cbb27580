package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultStorage != "main" {
		t.Errorf("DefaultStorage = %q, want main", cfg.DefaultStorage)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "witchql.toml")
	contents := `
seed_path = "fixtures/demo.yaml"
repl_style = "plain"
default_storage = "people"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeedPath != "fixtures/demo.yaml" || cfg.ReplStyle != "plain" || cfg.DefaultStorage != "people" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDecodeTOMLString(t *testing.T) {
	cfg, err := DecodeTOMLString(`repl_style = "plain"`)
	if err != nil {
		t.Fatalf("DecodeTOMLString: %v", err)
	}
	if cfg.ReplStyle != "plain" {
		t.Errorf("ReplStyle = %q, want plain", cfg.ReplStyle)
	}
}
