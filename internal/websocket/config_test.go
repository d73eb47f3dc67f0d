package websocket

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/glazeipc/internal/config"
)

// TestDefaultRateLimitConfig tests the default rate limit configuration
func TestDefaultRateLimitConfig(t *testing.T) {
	t.Parallel()

	config := DefaultRateLimitConfig()

	if config == nil {
		t.Fatal("DefaultRateLimitConfig() returned nil")
	}

	if !config.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if config.MessagesPerSecond != 100 {
		t.Errorf("MessagesPerSecond = %v, want 100", config.MessagesPerSecond)
	}

	if config.Burst != 200 {
		t.Errorf("Burst = %v, want 200", config.Burst)
	}
}

// TestNewLimiter tests which configurations produce a limiter
func TestNewLimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		config    *RateLimitConfig
		wantNil   bool
		wantLimit rate.Limit
		wantBurst int
	}{
		{
			name:    "nil config",
			config:  nil,
			wantNil: true,
		},
		{
			name:    "no rate limit",
			config:  NoRateLimit(),
			wantNil: true,
		},
		{
			name:      "default config",
			config:    DefaultRateLimitConfig(),
			wantLimit: 100,
			wantBurst: 200,
		},
		{
			name: "custom config",
			config: &RateLimitConfig{
				MessagesPerSecond: 50,
				Burst:             100,
				Enabled:           true,
			},
			wantLimit: 50,
			wantBurst: 100,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			limiter := newLimiter(tt.config)
			if tt.wantNil {
				if limiter != nil {
					t.Error("expected no limiter")
				}
				return
			}
			if limiter == nil {
				t.Fatal("expected a limiter")
			}
			if limiter.Limit() != tt.wantLimit {
				t.Errorf("Limit() = %v, want %v", limiter.Limit(), tt.wantLimit)
			}
			if limiter.Burst() != tt.wantBurst {
				t.Errorf("Burst() = %v, want %v", limiter.Burst(), tt.wantBurst)
			}
		})
	}
}

// TestURLForPort tests endpoint URL formatting
func TestURLForPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 6123, "ws://localhost:6123"},
		{"localhost", 7000, "ws://localhost:7000"},
		{"127.0.0.1", 6123, "ws://127.0.0.1:6123"},
	}

	for _, tt := range tests {
		tt := tt
		if got := URLForPort(tt.host, tt.port); got != tt.want {
			t.Errorf("URLForPort(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}

	if DefaultURL != "ws://localhost:6123" {
		t.Errorf("DefaultURL = %q", DefaultURL)
	}
}

// TestNewClientDefaults tests that a zero config still yields a usable client
func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient(nil)
	if c.conn.URL() != DefaultURL {
		t.Errorf("URL() = %q, want %q", c.conn.URL(), DefaultURL)
	}
	if c.ID() == "" {
		t.Error("ID() is empty")
	}
	if other := NewClient(nil); other.ID() == c.ID() {
		t.Errorf("two clients share ID %s", c.ID())
	}
}

// TestConfigFromFile tests conversion of the configuration file
func TestConfigFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*config.Config)
		wantURL     string
		wantTimeout time.Duration
		wantLimited bool
	}{
		{
			name:        "defaults",
			mutate:      func(*config.Config) {},
			wantURL:     "ws://localhost:6123",
			wantTimeout: 30 * time.Second,
			wantLimited: true,
		},
		{
			name: "custom endpoint without limits",
			mutate: func(c *config.Config) {
				c.Host = "127.0.0.1"
				c.Port = 7000
				c.RequestTimeoutSeconds = 0
				c.RateLimit.Enabled = false
			},
			wantURL:     "ws://127.0.0.1:7000",
			wantTimeout: 0,
			wantLimited: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fileCfg := config.Default()
			tt.mutate(&fileCfg)

			cfg := ConfigFromFile(&fileCfg, zerolog.Nop())
			if cfg.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", cfg.URL, tt.wantURL)
			}
			if cfg.RequestTimeout != tt.wantTimeout {
				t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, tt.wantTimeout)
			}
			if cfg.DialTimeout != 5*time.Second {
				t.Errorf("DialTimeout = %v", cfg.DialTimeout)
			}
			if cfg.RateLimitConfig.Enabled != tt.wantLimited {
				t.Errorf("rate limit enabled = %v, want %v", cfg.RateLimitConfig.Enabled, tt.wantLimited)
			}
		})
	}
}
