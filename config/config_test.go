package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Address != ":3000" {
		t.Errorf("Address = %q, want :3000", cfg.Address)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	opts := cfg.KPIOptions("")
	if opts.Dir != "data" || opts.ConsolidatedFile != "gold_kpi_dashboard.json" ||
		opts.WeeklyFile != "gold_kpi_weekly.json" || opts.ColumnarMatch != "gold" {
		t.Errorf("KPIOptions = %+v", opts)
	}
	if got := cfg.KPIOptions("elsewhere").Dir; got != "elsewhere" {
		t.Errorf("KPIOptions(elsewhere).Dir = %q", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "DATA_DIR=/srv/gold\nKPI_READ_TIMEOUT=250ms\nLOG_FORMAT=json\nLOG_CALLER=true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process variables; clear them when the test ends.
	for _, k := range []string{"DATA_DIR", "KPI_READ_TIMEOUT", "LOG_FORMAT", "LOG_CALLER"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/srv/gold" || cfg.ReadTimeout != 250*time.Millisecond || cfg.LogFormat != "json" || !cfg.LogCaller {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for LOG_FORMAT=xml")
	}
}
