package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateProbe() error {
	if c.Probe.TimeoutSeconds < 0 {
		return errors.New("probe.timeout_seconds must not be negative")
	}
	if c.Probe.Workers < 1 {
		return errors.New("probe.workers must be at least 1")
	}
	if c.Probe.CacheEnabled && c.Probe.CachePath == "" {
		return errors.New("probe.cache_path must be set when probe.cache_enabled is true")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Backend {
	case "etree", "minimal":
		return nil
	default:
		return fmt.Errorf("output.backend must be \"etree\" or \"minimal\", got %q", c.Output.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
