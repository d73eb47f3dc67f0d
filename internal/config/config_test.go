package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/luciancaetano/glazeipc"
)

// TestDefaultIsValid tests that the defaults pass validation
func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Port != glazeipc.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, glazeipc.DefaultPort)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
}

// TestLoadMissingFile tests that a missing file yields defaults
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if exists {
		t.Error("exists = true, want false")
	}
	if cfg.Port != glazeipc.DefaultPort || cfg.Host != "localhost" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

// TestLoadFile tests that file values override defaults and are normalized
func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "glazectl.toml")
	content := `
port = 7000
request_timeout_seconds = 0

[rate_limit]
enabled = false

[logging]
level = " DEBUG "
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !exists {
		t.Error("exists = false, want true")
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.RequestTimeout() != 0 {
		t.Errorf("RequestTimeout() = %v, want 0", cfg.RequestTimeout())
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.DialTimeout() != 5*time.Second {
		t.Errorf("DialTimeout() = %v", cfg.DialTimeout())
	}
}

// TestLoadUnknownKey tests that typos in the file are rejected
func TestLoadUnknownKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "glazectl.toml")
	if err := os.WriteFile(path, []byte("prot = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for unknown key")
	}
}

// TestValidate tests validation failures
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: "port"},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port"},
		{name: "negative dial timeout", mutate: func(c *Config) { c.DialTimeoutSeconds = -1 }, wantErr: "dial_timeout_seconds"},
		{name: "negative request timeout", mutate: func(c *Config) { c.RequestTimeoutSeconds = -1 }, wantErr: "request_timeout_seconds"},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit.MessagesPerSecond = 0 }, wantErr: "messages_per_second"},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: "burst"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

// TestDisabledRateLimitSkipsChecks tests that rate values are ignored when disabled
func TestDisabledRateLimitSkipsChecks(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.RateLimit = RateLimit{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

// TestMarshalParse tests that a marshalled config parses back
func TestMarshalParse(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Port = 6200
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Port != 6200 {
		t.Errorf("Port = %d, want 6200", got.Port)
	}
}
