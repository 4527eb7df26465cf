package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
)

// LoaderOptions controls where Load looks for the config file and which
// environment variable names it honors, following the teacher's
// LoaderOptions shape.
type LoaderOptions struct {
	// Dir is the directory searched for .reviewbridge.json. Defaults to
	// the current working directory.
	Dir string
	// EnvDBVar is the environment variable that overrides the resolved
	// sqlite path. Defaults to REVIEW_BRIDGE_DB.
	EnvDBVar string
}

const configFileName = ".reviewbridge"

// Load discovers and parses .reviewbridge.json in opts.Dir, merges
// defaults, applies the REVIEW_BRIDGE_DB environment override, and
// validates the result. A missing config file yields DefaultConfig(), not
// an error (spec.md §8 invariant 10).
func Load(opts LoaderOptions) (Config, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, bridgeerr.New(bridgeerr.CodeConfigError, "cannot determine working directory: %v", err)
		}
		dir = wd
	}

	envVar := opts.EnvDBVar
	if envVar == "" {
		envVar = "REVIEW_BRIDGE_DB"
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	path := filepath.Join(dir, configFileName+".json")
	if _, statErr := os.Stat(path); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, bridgeerr.New(bridgeerr.CodeConfigError, "%v", err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return Config{}, bridgeerr.New(bridgeerr.CodeConfigError, "%v", statErr)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, bridgeerr.New(bridgeerr.CodeConfigError, "%v", err)
	}

	if dbOverride := os.Getenv(envVar); dbOverride != "" {
		cfg.DBPath = dbOverride
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("timeout_seconds", cfg.TimeoutSeconds)
	v.SetDefault("reasoning_effort", cfg.ReasoningEffort)
	v.SetDefault("instructions", cfg.Instructions)
	v.SetDefault("max_chunk_size", cfg.MaxChunkSize)
	v.SetDefault("precommit.block_on", cfg.Precommit.BlockOn)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("idle_stdin_timeout_seconds", cfg.IdleStdinTimeoutSeconds)
}

func validate(cfg Config) error {
	if cfg.TimeoutSeconds <= 0 {
		return bridgeerr.New(bridgeerr.CodeConfigError, "timeout_seconds must be a positive integer, got %d", cfg.TimeoutSeconds)
	}
	if !validReasoningEfforts[cfg.ReasoningEffort] {
		return bridgeerr.New(bridgeerr.CodeConfigError, "reasoning_effort must be one of low, medium, high, got %q", cfg.ReasoningEffort)
	}
	if !validLogLevels[cfg.LogLevel] {
		return bridgeerr.New(bridgeerr.CodeConfigError, "log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if !validLogFormats[cfg.LogFormat] {
		return bridgeerr.New(bridgeerr.CodeConfigError, "log_format must be one of json, human, got %q", cfg.LogFormat)
	}
	for _, sev := range cfg.Precommit.BlockOn {
		if !validSeverities[sev] {
			return bridgeerr.New(bridgeerr.CodeConfigError, "precommit.block_on entry %q is not a valid severity", sev)
		}
	}
	return nil
}
