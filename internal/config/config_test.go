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
	p := writeTemp(t, dir, "codeqlreport.yaml", `github_owner: acme
output_file: report.xlsx
codeql:
  cron: "0 3 * * 1"
  mapping:
    c#: csharp
`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Owner == nil || *cfg.Owner != "acme" {
		t.Fatalf("expected github_owner=acme, got %#v", cfg.Owner)
	}
	if cfg.CodeQL == nil || cfg.CodeQL.Cron == nil || *cfg.CodeQL.Cron != "0 3 * * 1" {
		t.Fatalf("expected codeql.cron, got %#v", cfg.CodeQL)
	}
	if cfg.CodeQL.Mapping["c#"] != "csharp" {
		t.Fatalf("expected mapping c#->csharp, got %#v", cfg.CodeQL.Mapping)
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "codeqlreport.yaml", "github_repo: plain\n")
	writeTemp(t, dir, ".codeqlreport.yaml", "github_repo: dotted\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Repo == nil || *cfg.Repo != "dotted" {
		t.Fatalf("expected repo from .codeqlreport.yaml, got %#v", cfg.Repo)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "codeqlreport")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "output_file: global.xlsx\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.OutputFile == nil || *cfg.OutputFile != "global.xlsx" {
		t.Fatalf("expected output_file from global config, got %#v", cfg.OutputFile)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	env := writeTemp(t, dir, ".env", "GITHUB_OWNER=from-dotenv\nGITHUB_REPO=dotenv-repo\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(KeyOwner, "from-env")
	// registers cleanup, then unset so the dotenv value applies
	t.Setenv(KeyRepo, "")
	_ = os.Unsetenv(KeyRepo)

	s, err := Load(LoadOptions{EnvFile: env, Root: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := s.String(KeyOwner); v != "from-env" {
		t.Fatalf("expected environment to win, got %q", v)
	}
	if v, _ := s.String(KeyRepo); v != "dotenv-repo" {
		t.Fatalf("expected dotenv value, got %q", v)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if _, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "nope.env")}); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if _, err := Load(LoadOptions{ConfigPath: filepath.Join(dir, "missing.yml")}); err == nil {
		t.Fatal("expected error for explicit missing config")
	}
}
