package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ratreed.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "ratreed" || cfg.Addr != ":3960" {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.RebasePolicy != RebaseStrict {
		t.Fatalf("expected strict rebase policy, got %q", cfg.RebasePolicy)
	}
	limits := cfg.Wire.ToLimits()
	if limits.MaxStringLen != 8*1024*1024 || limits.MaxListDepth != 64 {
		t.Fatalf("got limits %+v", limits)
	}
}

func TestLoadRejectsInvalidRebasePolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ratreed.toml")
	contents := "name = \"x\"\naddr = \":1\"\nrebase_policy = \"bogus\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ratreed.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite existing config")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}
