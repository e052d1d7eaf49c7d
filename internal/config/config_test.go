package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "pulsedcm.yaml", "jobs: 4\naction: remove\npolicy: strict\nno_color: true\nexclude: \"scout/**\"\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Jobs == nil || *cfg.Jobs != 4 {
		t.Fatalf("expected jobs=4, got %#v", cfg.Jobs)
	}
	if cfg.Action == nil || *cfg.Action != "remove" {
		t.Fatalf("expected action=remove, got %#v", cfg.Action)
	}
	if cfg.Policy == nil || *cfg.Policy != "strict" {
		t.Fatalf("expected policy=strict, got %#v", cfg.Policy)
	}
	if cfg.NoColor == nil || !*cfg.NoColor {
		t.Fatalf("expected no_color=true")
	}
	if cfg.Exclude == nil || *cfg.Exclude != "scout/**" {
		t.Fatalf("expected exclude glob, got %#v", cfg.Exclude)
	}
	if cfg.Out != nil {
		t.Fatalf("expected out unset, got %q", *cfg.Out)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "bad.yml", "jobs: [1, 2\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "pulsedcm.yaml", "jobs: 1\n")
	writeTemp(t, dir, ".pulsedcm.yaml", "jobs: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Jobs == nil || *cfg.Jobs != 7 {
		t.Fatalf("expected jobs=7 from .pulsedcm.yaml, got %#v", cfg.Jobs)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	if _, err := LoadLocal(t.TempDir()); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "pulsedcm")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "policy: moderate\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Policy == nil || *cfg.Policy != "moderate" {
		t.Fatalf("expected policy=moderate from global config, got %#v", cfg.Policy)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".pulsedcm.yml")
	action, jobs := "replace", 3
	if err := Save(p, FileConfig{Action: &action, Jobs: &jobs}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Action == nil || *cfg.Action != "replace" || cfg.Jobs == nil || *cfg.Jobs != 3 {
		t.Fatalf("round trip mismatch: %#v", cfg)
	}
}
