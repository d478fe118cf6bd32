package config

const (
	defaultFFprobeBinary    = "ffprobe"
	defaultProbeTimeout     = 10
	defaultProbeWorkers     = 4
	defaultCachePath        = "~/.cache/hroxgen/durations.db"
	defaultOutputBackend    = "etree"
	defaultTargetRelease    = "12.2v2"
	defaultTargetVersion    = "11"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Probe: Probe{
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultProbeTimeout,
			Workers:        defaultProbeWorkers,
			CacheEnabled:   true,
			CachePath:      defaultCachePath,
		},
		Output: Output{
			Backend:       defaultOutputBackend,
			TargetRelease: defaultTargetRelease,
			TargetVersion: defaultTargetVersion,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
