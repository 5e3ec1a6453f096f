// Package config loads a Medley build or query job's parameters from a
// config file merged with environment variables, following the same
// viper-based precedence rules the teacher project uses for its own job
// configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/hpcc-systems/Medley/errors"
)

// EnvPrefix is the prefix every environment variable override must
// carry, e.g. MEDLEY_MAX_EDIT_DISTANCE.
const EnvPrefix = "MEDLEY"

// IndexPaths mirrors index.Paths without importing the index package,
// keeping config free of a dependency on the storage layer.
type IndexPaths struct {
	Hash2ID  string `mapstructure:"hash2id"`
	ID2Hash  string `mapstructure:"id2hash"`
	Match2ID string `mapstructure:"match2id"`
	ID2Match string `mapstructure:"id2match"`
}

// Job is a fully-resolved build or query job configuration.
type Job struct {
	Directives      []string   `mapstructure:"directives"`
	MaxEditDistance int        `mapstructure:"max_edit_distance"`
	Paths           IndexPaths `mapstructure:"paths"`
}

// Load reads job configuration from configPath if non-empty, or from a
// medley.toml discovered by walking up from the current directory
// otherwise, then overlays MEDLEY_-prefixed environment variables. An
// empty configPath with no medley.toml found is not an error: every field
// is also settable purely through flags/env, so it just yields the
// defaults (max_edit_distance 1, every other field its zero value). An
// explicit configPath that cannot be read is an error.
func Load(configPath string) (Job, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("max_edit_distance", 1)

	if configPath == "" {
		if found := findProjectConfig("medley.toml"); found != "" {
			configPath = found
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Job{}, errors.Wrapf(err, "config: reading %s", configPath)
		}
	}

	var job Job
	if err := v.Unmarshal(&job); err != nil {
		return Job{}, errors.Wrap(err, "config: decoding job configuration")
	}
	if job.MaxEditDistance < 0 {
		job.MaxEditDistance = 0
	}
	return job, nil
}

// findProjectConfig walks upward from the current working directory
// looking for name, stopping at the filesystem root. Returns "" if not
// found.
func findProjectConfig(name string) string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
