package config

import "github.com/luciancaetano/glazeipc"

const (
	defaultHost                  = "localhost"
	defaultDialTimeoutSeconds    = 5
	defaultRequestTimeoutSeconds = 30
	defaultRateLimitEnabled      = true
	defaultMessagesPerSecond     = 100
	defaultBurst                 = 200
	defaultLogLevel              = "info"
	defaultLogFormat             = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Host:                  defaultHost,
		Port:                  glazeipc.DefaultPort,
		DialTimeoutSeconds:    defaultDialTimeoutSeconds,
		RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		RateLimit: RateLimit{
			Enabled:           defaultRateLimitEnabled,
			MessagesPerSecond: defaultMessagesPerSecond,
			Burst:             defaultBurst,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
