package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/luciancaetano/glazeipc"
	"github.com/luciancaetano/glazeipc/internal/config"
	"github.com/luciancaetano/glazeipc/internal/logging"
	"github.com/luciancaetano/glazeipc/internal/websocket"
	"github.com/luciancaetano/glazeipc/wm"
)

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration file once and applies flag overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path, err := c.resolveConfigPath()
		if err != nil {
			c.configErr = err
			return
		}
		cfg, exists, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config %s: %w", path, err)
			return
		}

		if host := strings.TrimSpace(c.flags.host); host != "" {
			cfg.Host = host
		}
		if c.flags.port != 0 {
			cfg.Port = c.flags.port
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}

		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) resolveConfigPath() (string, error) {
	if path := strings.TrimSpace(c.flags.config); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

// withClient runs fn with a client built from the loaded configuration and
// closes it afterwards.
func (c *commandContext) withClient(cmd *cobra.Command, fn func(glazeipc.Client) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Out:    cmd.ErrOrStderr(),
		App:    "glazectl",
	})
	if err != nil {
		return err
	}

	client := wm.New(websocket.ConfigFromFile(cfg, logger))
	defer client.Close()

	if err := client.Connect(cmd.Context()); err != nil {
		return wrapDialError(err)
	}
	return fn(client)
}

func wrapDialError(err error) error {
	var connErr *glazeipc.ConnectionError
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.As(err, &connErr):
		return fmt.Errorf("connect to window manager at %s: %w; verify GlazeWM is running", connErr.URL, connErr.Err)
	default:
		return fmt.Errorf("connect to window manager: %w", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
