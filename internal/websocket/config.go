package websocket

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/config"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// URL of the IPC endpoint, e.g. "ws://localhost:6123".
	URL string
	// DialTimeout bounds a single connection attempt. Zero means 5 seconds.
	DialTimeout time.Duration
	// RequestTimeout bounds the wait for each reply. Zero waits forever.
	RequestTimeout time.Duration
	// RateLimitConfig throttles outbound requests. Nil disables throttling.
	RateLimitConfig *RateLimitConfig
	// Dialer opens the stream. Nil uses gorilla/websocket.
	Dialer Dialer
	// Logger receives client logs. Nil disables logging.
	Logger *zerolog.Logger
}

// RateLimitConfig defines outbound rate limiting for a client
type RateLimitConfig struct {
	// MessagesPerSecond defines how many requests may be sent per second
	MessagesPerSecond rate.Limit
	// Burst defines the maximum burst size (token bucket capacity)
	Burst int
	// Enabled determines if rate limiting is active
	Enabled bool
}

// DefaultRateLimitConfig returns the default rate limit configuration
// Allows 100 messages per second with burst of 200
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled: false,
	}
}

// ConfigFromFile converts a loaded configuration file into a client
// configuration that logs to logger.
func ConfigFromFile(cfg *config.Config, logger zerolog.Logger) *ClientConfig {
	rl := NoRateLimit()
	if cfg.RateLimit.Enabled {
		rl = &RateLimitConfig{
			MessagesPerSecond: rate.Limit(cfg.RateLimit.MessagesPerSecond),
			Burst:             cfg.RateLimit.Burst,
			Enabled:           true,
		}
	}
	return &ClientConfig{
		URL:             URLForPort(cfg.Host, cfg.Port),
		DialTimeout:     cfg.DialTimeout(),
		RequestTimeout:  cfg.RequestTimeout(),
		RateLimitConfig: rl,
		Logger:          &logger,
	}
}

// URLForPort returns the local endpoint URL for port.
func URLForPort(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("ws://%s:%d", host, port)
}

// DefaultURL is the endpoint used when ClientConfig.URL is empty.
var DefaultURL = URLForPort("localhost", glazeipc.DefaultPort)

const defaultDialTimeout = 5 * time.Second

func newLimiter(cfg *RateLimitConfig) *rate.Limiter {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return rate.NewLimiter(cfg.MessagesPerSecond, cfg.Burst)
}
