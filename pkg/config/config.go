// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads pipeline-expand settings from a config file and
PIPELINE_EXPAND_* environment variables. Command line flags take
precedence over both; that is handled by the caller.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "PIPELINE_EXPAND"
	ProjectFileName = ".pipeline-expand.yaml"
)

type Config struct {
	AzureCompatible   bool              `mapstructure:"azure_compatible"`
	RepositoryBaseDir string            `mapstructure:"repository_base_dir"`
	ResourceLocations map[string]string `mapstructure:"resource_locations"`
	RequireAtLeast    string            `mapstructure:"require_at_least"`
	Debug             bool              `mapstructure:"debug"`
	WatchDebounce     time.Duration     `mapstructure:"watch_debounce"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `mapstructure:"-"`
}

func Defaults() Config {
	return Config{
		ResourceLocations: map[string]string{},
		WatchDebounce:     300 * time.Millisecond,
	}
}

type LoadOpts struct {
	// ConfigFile must exist when set.
	ConfigFile string
	// WorkDir is searched for ProjectFileName; defaults to the process CWD.
	WorkDir string
	// HomeDir is searched for .config/pipeline-expand/config.yaml;
	// defaults to the user's home directory.
	HomeDir string
}

// Load resolves the config file in order: opts.ConfigFile, the project
// file in WorkDir, then the user config. No file at all is not an error.
func Load(opts LoadOpts) (Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("azure_compatible", defaults.AzureCompatible)
	v.SetDefault("repository_base_dir", defaults.RepositoryBaseDir)
	v.SetDefault("resource_locations", defaults.ResourceLocations)
	v.SetDefault("require_at_least", defaults.RequireAtLeast)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("watch_debounce", defaults.WatchDebounce)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	switch {
	case opts.ConfigFile != "":
		v.SetConfigFile(opts.ConfigFile)

	default:
		workDir := opts.WorkDir
		if workDir == "" {
			workDir, _ = os.Getwd()
		}
		projectFile := filepath.Join(workDir, ProjectFileName)

		if _, err := os.Stat(projectFile); err == nil {
			v.SetConfigFile(projectFile)
		} else {
			homeDir := opts.HomeDir
			if homeDir == "" {
				homeDir, _ = os.UserHomeDir()
			}
			v.AddConfigPath(filepath.Join(homeDir, ".config", "pipeline-expand"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.ConfigFile != "" {
			return Config{}, fmt.Errorf("Reading config file: %s", err)
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("Decoding config: %s", err)
	}

	if cfg.ResourceLocations == nil {
		cfg.ResourceLocations = map[string]string{}
	}
	cfg.FileUsed = v.ConfigFileUsed()

	return cfg, nil
}
