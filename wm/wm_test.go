package wm_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/wmtest"
	"github.com/luciancaetano/glazeipc/wm"
)

// TestNewConfig tests the local endpoint configuration
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := wm.NewConfig(wm.DefaultPort)
	if cfg.URL != "ws://localhost:6123" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.RateLimitConfig == nil || !cfg.RateLimitConfig.Enabled {
		t.Error("expected the default rate limit")
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.RequestTimeout)
	}
	if cfg.Logger != nil {
		t.Error("expected no logger")
	}

	logger := zerolog.Nop()
	if wm.WithLogger(cfg, logger).Logger == nil {
		t.Error("WithLogger did not set the logger")
	}
}

// TestFromFile tests loading a configuration file from disk
func TestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "port = 6200\n\n[logging]\nlevel = \"warn\"\nformat = \"json\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := wm.FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if cfg.URL != "ws://localhost:6200" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Logger == nil || cfg.Logger.GetLevel() != zerolog.WarnLevel {
		t.Error("logger not built from the logging section")
	}

	if err := os.WriteFile(path, []byte("port = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wm.FromFile(path); err == nil {
		t.Error("FromFile() expected validation error")
	}
}

// TestNewClientRoundTrip tests a client built by New against a local endpoint
func TestNewClientRoundTrip(t *testing.T) {
	t.Parallel()

	router := &wmtest.Router{Queries: map[string]any{
		glazeipc.QueryNameTilingDirection: glazeipc.TilingDirectionResponse{TilingDirection: "horizontal"},
	}}
	srv := wmtest.NewServer(router.Handle)
	defer srv.Close()

	cfg := wm.NewConfig(wm.DefaultPort)
	cfg.URL = srv.URL()
	client := wm.New(cfg)
	defer client.Close()

	if client.State() != glazeipc.StateAbsent {
		t.Errorf("State() = %s, want absent", client.State())
	}

	resp, err := client.QueryTilingDirection(context.Background())
	if err != nil {
		t.Fatalf("QueryTilingDirection() error = %v", err)
	}
	if resp.TilingDirection != "horizontal" {
		t.Errorf("TilingDirection = %q", resp.TilingDirection)
	}
	if client.State() != glazeipc.StateOpen {
		t.Errorf("State() = %s, want open", client.State())
	}
}
