package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
operator: op-1
platform_recipient: plat-1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.EventBufferSize != DefaultEventBufferSize {
		t.Errorf("EventBufferSize = %d, want %d", cfg.EventBufferSize, DefaultEventBufferSize)
	}

	rate, err := cfg.Rate()
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rate.Sign() <= 0 {
		t.Errorf("default rate should be positive, got %s", rate)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("LAUNCH_CURVE_OPERATOR", "env-op")
	t.Setenv("LAUNCH_CURVE_PLATFORM_RECIPIENT", "env-plat")
	t.Setenv("LAUNCH_CURVE_LISTEN_ADDR", ":7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Operator != "env-op" {
		t.Errorf("Operator = %q, want %q", cfg.Operator, "env-op")
	}
	if cfg.PlatformRecipient != "env-plat" {
		t.Errorf("PlatformRecipient = %q, want %q", cfg.PlatformRecipient, "env-plat")
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":7777")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
operator: file-op
platform_recipient: plat-1
`)
	t.Setenv("LAUNCH_CURVE_OPERATOR", "env-op")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Operator != "env-op" {
		t.Errorf("Operator = %q, want env value to win", cfg.Operator)
	}
}

func TestLoad_MissingOperator(t *testing.T) {
	path := writeConfig(t, `
platform_recipient: plat-1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing operator")
	}
}

func TestLoad_BadRate(t *testing.T) {
	path := writeConfig(t, `
operator: op-1
platform_recipient: plat-1
eth_usd_rate: "minus-one"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable rate")
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9999"
postgres_url: "postgres://u:p@localhost:5432/curve"
clickhouse_url: "clickhouse://localhost:9000/curve"
operator: op-1
platform_recipient: plat-1
eth_usd_rate: "2500000000000000000000"
event_buffer_size: 64
debug_logging: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.PostgresURL == "" || cfg.ClickhouseURL == "" {
		t.Error("store URLs not loaded")
	}
	if !cfg.DebugLogging {
		t.Error("DebugLogging not loaded")
	}
	rate, err := cfg.Rate()
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rate.String() != "2500000000000000000000" {
		t.Errorf("rate = %s", rate)
	}
}
