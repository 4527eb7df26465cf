// Package config loads reviewbridge's configuration, following the
// teacher's internal/config split between a plain Config struct and a
// Load(LoaderOptions) function wired through spf13/viper. The config file
// is JSON (`.reviewbridge.json`, per spec.md §6) rather than the teacher's
// YAML, kept on Viper since it natively supports SetConfigType("json").
package config

// Config is reviewbridge's full configuration surface.
type Config struct {
	TimeoutSeconds  int             `mapstructure:"timeout_seconds"`
	ReasoningEffort string          `mapstructure:"reasoning_effort"`
	Instructions    string          `mapstructure:"instructions"`
	MaxChunkSize    int             `mapstructure:"max_chunk_size"`
	Precommit       PrecommitConfig `mapstructure:"precommit"`
	DBPath          string          `mapstructure:"db_path"`
	LogLevel        string          `mapstructure:"log_level"`
	LogFormat       string          `mapstructure:"log_format"`
	IdleStdinTimeoutSeconds int     `mapstructure:"idle_stdin_timeout_seconds"`
}

// PrecommitConfig configures which severities block a precommit review.
type PrecommitConfig struct {
	BlockOn []string `mapstructure:"block_on"`
}

var validReasoningEfforts = map[string]bool{"low": true, "medium": true, "high": true}

// validSeverities is the union of plan and code finding severities: a
// precommit.block_on entry may legitimately be either kind's severity name
// since findings feeding into a precommit review share the code-review
// rubric while plan-only names are also accepted for forward compatibility
// with a plan-derived precommit source.
var validSeverities = map[string]bool{"critical": true, "major": true, "minor": true, "nitpick": true, "suggestion": true}
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"json": true, "human": true}

// DefaultConfig is returned when no config file is present (spec.md §8
// invariant 10).
func DefaultConfig() Config {
	return Config{
		TimeoutSeconds:          120,
		ReasoningEffort:         "medium",
		Instructions:            "",
		MaxChunkSize:            80 * 1024,
		Precommit:               PrecommitConfig{BlockOn: []string{"critical"}},
		DBPath:                  "reviews.db",
		LogLevel:                "info",
		LogFormat:               "json",
		IdleStdinTimeoutSeconds: 5,
	}
}
