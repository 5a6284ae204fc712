// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	cfg, err := config.Load(config.LoadOpts{WorkDir: t.TempDir(), HomeDir: t.TempDir()})
	require.NoError(t, err)

	assert.False(t, cfg.AzureCompatible)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 300*time.Millisecond, cfg.WatchDebounce)
	assert.Empty(t, cfg.ResourceLocations)
	assert.Equal(t, "", cfg.FileUsed)
}

func TestLoadProjectFile(t *testing.T) {
	workDir := t.TempDir()
	writeFile(t, filepath.Join(workDir, config.ProjectFileName), `
azure_compatible: true
repository_base_dir: /src/repo
require_at_least: 0.0.1
watch_debounce: 1s
resource_locations:
  tools: ../tools
`)

	cfg, err := config.Load(config.LoadOpts{WorkDir: workDir, HomeDir: t.TempDir()})
	require.NoError(t, err)

	assert.True(t, cfg.AzureCompatible)
	assert.Equal(t, "/src/repo", cfg.RepositoryBaseDir)
	assert.Equal(t, "0.0.1", cfg.RequireAtLeast)
	assert.Equal(t, time.Second, cfg.WatchDebounce)
	assert.Equal(t, map[string]string{"tools": "../tools"}, cfg.ResourceLocations)
	assert.Equal(t, filepath.Join(workDir, config.ProjectFileName), cfg.FileUsed)
}

func TestLoadHomeFileWhenNoProjectFile(t *testing.T) {
	homeDir := t.TempDir()
	writeFile(t, filepath.Join(homeDir, ".config", "pipeline-expand", "config.yaml"), "debug: true\n")

	cfg, err := config.Load(config.LoadOpts{WorkDir: t.TempDir(), HomeDir: homeDir})
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestLoadProjectFileWinsOverHomeFile(t *testing.T) {
	workDir := t.TempDir()
	homeDir := t.TempDir()
	writeFile(t, filepath.Join(workDir, config.ProjectFileName), "repository_base_dir: project\n")
	writeFile(t, filepath.Join(homeDir, ".config", "pipeline-expand", "config.yaml"), "repository_base_dir: home\n")

	cfg, err := config.Load(config.LoadOpts{WorkDir: workDir, HomeDir: homeDir})
	require.NoError(t, err)
	assert.Equal(t, "project", cfg.RepositoryBaseDir)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "azure_compatible: true\n")

	cfg, err := config.Load(config.LoadOpts{ConfigFile: path, WorkDir: t.TempDir(), HomeDir: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, cfg.AzureCompatible)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := config.Load(config.LoadOpts{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reading config file")
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	workDir := t.TempDir()
	writeFile(t, filepath.Join(workDir, config.ProjectFileName), "azure_compatible: false\n")
	t.Setenv("PIPELINE_EXPAND_AZURE_COMPATIBLE", "true")
	t.Setenv("PIPELINE_EXPAND_REPOSITORY_BASE_DIR", "/from/env")

	cfg, err := config.Load(config.LoadOpts{WorkDir: workDir, HomeDir: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, cfg.AzureCompatible)
	assert.Equal(t, "/from/env", cfg.RepositoryBaseDir)
}
