package config

import (
	"errors"
	"fmt"
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port: %d out of range 1-65535", c.Port))
	}
	if c.DialTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("dial_timeout_seconds: must not be negative"))
	}
	if c.RequestTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds: must not be negative"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MessagesPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.messages_per_second: must be positive"))
		}
		if c.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst: must be at least 1"))
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
