package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/vexora/internal/history"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.History.MaxItems != history.DefaultMaxItems {
		t.Errorf("expected %d history items, got %d", history.DefaultMaxItems, cfg.History.MaxItems)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Loader{Path: filepath.Join(t.TempDir(), "absent.yaml"), LookupEnv: noEnv}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr, got %q", cfg.Server.ListenAddr)
	}
}

func TestLoader_FileThenEnvThenOverrides(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "vexora.yaml")
	yaml := `
server:
  listen_addr: ":9000"
  rate_limit: 2
probe:
  client: chromedp
  timeout: 3s
history:
  driver: postgres
  dsn: postgres://localhost/vexora
batch:
  concurrency: 8
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	env := envMap(map[string]string{
		"VEXORA_LISTEN_ADDR":       ":9100",
		"VEXORA_HISTORY_MAX_ITEMS": "20",
	})
	override := func(c *Config) { c.Logging.Level = "warn" }

	cfg, err := Loader{Path: path, LookupEnv: env, Overrides: []func(*Config){override}}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9100" {
		t.Errorf("env should win over file, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.RateLimit != 2 || cfg.Server.RateBurst != 20 {
		t.Errorf("file values should merge over defaults: %+v", cfg.Server)
	}
	if cfg.Probe.Client != "chromedp" || cfg.Probe.Timeout != 3*time.Second {
		t.Errorf("probe = %+v", cfg.Probe)
	}
	if cfg.History.Driver != "postgres" || cfg.History.MaxItems != 20 {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Batch.Concurrency != 8 {
		t.Errorf("batch concurrency = %d", cfg.Batch.Concurrency)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("override should win, got %q", cfg.Logging.Level)
	}
}

func TestLoader_RejectsBadValues(t *testing.T) {
	t.Parallel()
	cases := map[string]map[string]string{
		"unparseable number": {"VEXORA_BATCH_CONCURRENCY": "many"},
		"unknown driver":     {"VEXORA_HISTORY_DRIVER": "oracle"},
		"unknown client":     {"VEXORA_PROBE_CLIENT": "curl"},
		"watch without path": {"VEXORA_POLICY_WATCH": "true"},
		"zero concurrency":   {"VEXORA_BATCH_CONCURRENCY": "0"},
	}
	for name, env := range cases {
		if _, err := (Loader{LookupEnv: envMap(env)}).Load(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoader_BadYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Loader{Path: path, LookupEnv: noEnv}.Load()
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestConfig_HistoryConfigDefaultsToDataDir(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	hc, err := cfg.HistoryConfig()
	if err != nil {
		t.Fatalf("HistoryConfig: %v", err)
	}
	if hc.DSN != "file:"+filepath.Join(cfg.DataDir, "history.db") {
		t.Errorf("dsn = %q", hc.DSN)
	}
	if _, err := os.Stat(cfg.DataDir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}

	cfg.History = history.Config{Driver: history.DriverMySQL, DSN: "u:p@/db"}
	hc, _ = cfg.HistoryConfig()
	if hc.DSN != "u:p@/db" {
		t.Errorf("explicit dsn replaced: %q", hc.DSN)
	}
}

func TestConfig_WebClientConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Probe.Timeout = 4 * time.Second
	wc := cfg.WebClientConfig()
	if string(wc.Client) != "nethttp" || wc.Timeout != 4*time.Second {
		t.Errorf("unexpected webclient config: %+v", wc)
	}
}
