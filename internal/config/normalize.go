package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeProbe(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeProbe() error {
	c.Probe.FFprobeBinary = strings.TrimSpace(c.Probe.FFprobeBinary)
	if c.Probe.FFprobeBinary == "" {
		if value, ok := os.LookupEnv("HROXGEN_FFPROBE"); ok && strings.TrimSpace(value) != "" {
			c.Probe.FFprobeBinary = strings.TrimSpace(value)
		} else {
			c.Probe.FFprobeBinary = defaultFFprobeBinary
		}
	}
	if c.Probe.TimeoutSeconds == 0 {
		c.Probe.TimeoutSeconds = defaultProbeTimeout
	}
	if c.Probe.Workers == 0 {
		c.Probe.Workers = defaultProbeWorkers
	}
	if strings.TrimSpace(c.Probe.CachePath) == "" {
		c.Probe.CachePath = defaultCachePath
	}
	var err error
	if c.Probe.CachePath, err = expandPath(c.Probe.CachePath); err != nil {
		return fmt.Errorf("probe.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	c.Output.Backend = strings.ToLower(strings.TrimSpace(c.Output.Backend))
	if c.Output.Backend == "" {
		c.Output.Backend = defaultOutputBackend
	}
	c.Output.TargetRelease = strings.TrimSpace(c.Output.TargetRelease)
	if c.Output.TargetRelease == "" {
		c.Output.TargetRelease = defaultTargetRelease
	}
	c.Output.TargetVersion = strings.TrimSpace(c.Output.TargetVersion)
	if c.Output.TargetVersion == "" {
		c.Output.TargetVersion = defaultTargetVersion
	}
	if strings.TrimSpace(c.Output.PathBase) != "" {
		var err error
		if c.Output.PathBase, err = expandPath(c.Output.PathBase); err != nil {
			return fmt.Errorf("output.path_base: %w", err)
		}
	} else {
		c.Output.PathBase = ""
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
