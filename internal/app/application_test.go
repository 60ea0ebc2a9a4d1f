package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raysh454/vexora/internal/model"
	"github.com/raysh454/vexora/internal/testutil"
)

func newTestApplication(t *testing.T, cfg *Config) *Application {
	t.Helper()
	cfg.DataDir = t.TempDir()
	a, err := NewApplication(context.Background(), cfg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestNewApplication_WiresServices(t *testing.T) {
	t.Parallel()
	a := newTestApplication(t, DefaultConfig())

	if a.Analyzer == nil || a.History == nil || a.Orch == nil || a.Policy == nil || a.Metrics == nil {
		t.Fatalf("services not wired: %+v", a)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Allow-listed domains never reach the network.
	res := a.Analyzer.AnalyzeURL(context.Background(), "https://google.com")
	if res.Status != model.StatusSafe || res.Confidence != 100 {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := a.History.Save(context.Background(), model.KindURL, "https://google.com", res); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestNewApplication_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Batch.Concurrency = 0
	if _, err := NewApplication(context.Background(), cfg, &testutil.DummyLogger{}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestNewApplication_MissingPolicyFile(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Policy.Path = filepath.Join(cfg.DataDir, "missing.yaml")
	if _, err := NewApplication(context.Background(), cfg, &testutil.DummyLogger{}); err == nil {
		t.Fatal("expected error for missing policy file")
	}
}

func TestApplication_PolicyWatchReloads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("version: v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Policy = PolicyConfig{Path: path, Watch: true}
	a := newTestApplication(t, cfg)
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := a.Policy.Current().Version; got != "v1" {
		t.Fatalf("initial version = %q", got)
	}

	// give the watcher loop time to start before writing
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("version: v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if a.Policy.Current().Version == "v2" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("policy not reloaded, version %q", a.Policy.Current().Version)
}

func TestApplication_ShutdownIdempotent(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	a, err := NewApplication(context.Background(), cfg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
