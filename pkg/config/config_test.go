package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const minimalConfig = `
database:
  user: bridge
  password: secret
bridge:
  owner: "0x0101010101010101010101010101010101010101010101010101010101010101"
  token: "0x0202020202020202020202020202020202020202020202020202020202020202"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("database.host = %q, want localhost", cfg.Database.Host)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("database.ssl_mode = %q, want disable", cfg.Database.SSLMode)
	}
	if cfg.Bridge.HomeChain != "solana" {
		t.Errorf("bridge.home_chain = %q, want solana", cfg.Bridge.HomeChain)
	}
	if cfg.Bridge.RequestTimeout != 30*time.Second {
		t.Errorf("bridge.request_timeout = %v, want 30s", cfg.Bridge.RequestTimeout)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging.format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Shutdown.Timeout != 30*time.Second {
		t.Errorf("shutdown.timeout = %v, want 30s", cfg.Shutdown.Timeout)
	}
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
database:
  host: db.internal
  port: 6432
  user: bridge
  password: secret
  database: bridge_prod
  ssl_mode: require
bridge:
  owner: "0x0101010101010101010101010101010101010101010101010101010101010101"
  token: "0x0202020202020202020202020202020202020202020202020202020202020202"
  version: 2
  home_chain: "sol.devnet"
  request_timeout: 5s
jwks:
  url: http://localhost:9999/jwks.json
  issuer: bridge-dev
`))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Bridge.Version != 2 {
		t.Errorf("bridge.version = %d, want 2", cfg.Bridge.Version)
	}
	if cfg.Bridge.HomeChain != "sol.devnet" {
		t.Errorf("bridge.home_chain = %q, want sol.devnet", cfg.Bridge.HomeChain)
	}
	if cfg.Bridge.RequestTimeout != 5*time.Second {
		t.Errorf("bridge.request_timeout = %v, want 5s", cfg.Bridge.RequestTimeout)
	}
	if cfg.JWKS.URL != "http://localhost:9999/jwks.json" {
		t.Errorf("jwks.url = %q", cfg.JWKS.URL)
	}

	want := "host=db.internal port=6432 user=bridge password=secret dbname=bridge_prod sslmode=require"
	if got := cfg.Database.GetConnectionString(); got != want {
		t.Errorf("connection string = %q, want %q", got, want)
	}
}

func TestLoad_MissingOwner(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  user: bridge
bridge:
  token: "0x0202020202020202020202020202020202020202020202020202020202020202"
`))
	if err == nil {
		t.Fatal("Load() should fail without bridge.owner")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  user: bridge
bridge:
  owner: "0x0101010101010101010101010101010101010101010101010101010101010101"
`))
	if err == nil {
		t.Fatal("Load() should fail without bridge.token")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}
