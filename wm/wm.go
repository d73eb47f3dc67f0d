package wm

import (
	"github.com/rs/zerolog"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/config"
	"github.com/luciancaetano/glazeipc/internal/logging"
	"github.com/luciancaetano/glazeipc/internal/websocket"
)

type RateLimitConfig = websocket.RateLimitConfig
type Dialer = websocket.Dialer
type Stream = websocket.Stream
type DialerFunc = websocket.DialerFunc
type ClientConfig = *websocket.ClientConfig

// DefaultPort is the port GlazeWM listens on.
const DefaultPort = glazeipc.DefaultPort

// New creates a client for the endpoint described by cfg.
//
// No connection is made until the first request or an explicit Connect.
//
// Example:
//
//	client := wm.New(wm.NewConfig(wm.DefaultPort))
//	defer client.Close()
func New(cfg ClientConfig) glazeipc.Client {
	return websocket.NewClient(cfg)
}

// NewConfig returns a configuration for the local endpoint on port with the
// default rate limit and no request timeout.
func NewConfig(port int) ClientConfig {
	return &websocket.ClientConfig{
		URL:             websocket.URLForPort("localhost", port),
		RateLimitConfig: DefaultRateLimitConfig(),
	}
}

// WithLogger attaches logger to cfg and returns cfg.
func WithLogger(cfg ClientConfig, logger zerolog.Logger) ClientConfig {
	cfg.Logger = &logger
	return cfg
}

// FromFile loads a TOML configuration file and converts it into a client
// configuration with a logger built from its logging section. A missing file
// yields the defaults.
func FromFile(path string) (ClientConfig, error) {
	cfg, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, "glazeipc")
	if err != nil {
		return nil, err
	}
	return websocket.ConfigFromFile(cfg, logger), nil
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return websocket.DefaultRateLimitConfig()
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return websocket.NoRateLimit()
}
