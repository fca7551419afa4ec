// Package config loads the Runner's ambient YAML configuration: default
// reporting frequency, output directory, and default sink/summary
// toggles, with environment-variable expansion in string fields.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be expressed as a plain string
// ("5s", "1m30s") in YAML instead of nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler, accepting either a duration
// string or a bare integer number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			if seconds, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
				*d = Duration(time.Duration(seconds) * time.Second)
				return nil
			}
			return fmt.Errorf("config: invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds int64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("config: duration must be a string or integer seconds: %w", err)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Config is the Runner's ambient configuration, loaded from a
// loadcraft.yaml file.
type Config struct {
	// ReportingFrequency is the action dispatcher's throttle window.
	// Zero selects the engine default (5s).
	ReportingFrequency Duration `yaml:"reporting_frequency"`
	// OutputDirectory is the directory exported report files are
	// written into.
	OutputDirectory string `yaml:"output_directory"`
	// UseDefaultSink registers the built-in terminal reporting sink.
	UseDefaultSink bool `yaml:"use_default_sink"`
	// UseDefaultOutputFiles registers the default txt/csv/json export
	// trio.
	UseDefaultOutputFiles bool `yaml:"use_default_output_files"`
	// UseSummary enables the end-of-run terminal summary print.
	UseSummary bool `yaml:"use_summary"`
}

// Load reads and parses the YAML configuration at path, expanding
// ${VAR}/$VAR references in every string field against the process
// environment before unmarshaling.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
