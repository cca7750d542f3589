package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputDirPrependsTargetForBareName(t *testing.T) {
	cfg := &projectConfig{OutputDir: "target"}
	got := outputDir(cfg, "hello")
	want := "target/hello"
	if got != want {
		t.Errorf("outputDir(cfg, %q) = %q, want %q", "hello", got, want)
	}
}

func TestOutputDirHonorsConfiguredOutputDir(t *testing.T) {
	cfg := &projectConfig{OutputDir: "build"}
	got := outputDir(cfg, "hello")
	want := "build/hello"
	if got != want {
		t.Errorf("outputDir(cfg, %q) = %q, want %q", "hello", got, want)
	}
}

func TestOutputDirLeavesExplicitPathAlone(t *testing.T) {
	cfg := &projectConfig{OutputDir: "target"}
	got := outputDir(cfg, "bin/hello")
	want := "bin/hello"
	if got != want {
		t.Errorf("outputDir(cfg, %q) = %q, want %q", "bin/hello", got, want)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("os.Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.OutputDir != "target" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "target")
	}
	if len(cfg.SearchPaths) != 0 {
		t.Errorf("SearchPaths = %v, want empty", cfg.SearchPaths)
	}
}

func TestLoadConfigReadsZenToml(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	contents := "search_paths = [\"vendor\", \"lib\"]\noutput_dir = \"out\"\n"
	if err := os.WriteFile(filepath.Join(dir, "zen.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing zen.toml: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "out")
	}
	if len(cfg.SearchPaths) != 2 || cfg.SearchPaths[0] != "vendor" || cfg.SearchPaths[1] != "lib" {
		t.Errorf("SearchPaths = %v, want [vendor lib]", cfg.SearchPaths)
	}
}
