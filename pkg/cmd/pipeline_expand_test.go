// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd"
	cmdexpand "github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `
parameters:
- name: env
  default: dev
steps:
- bash: echo ${{ parameters.env }}
- ${{ if eq(parameters.env, 'prod') }}:
  - template: templates/deploy.yml
`

const deployYAML = `
steps:
- script: echo deploying to ${{ variables.region }}
`

type fixture struct {
	dir        string
	pipeline   string
	configFile string
}

func newFixture(t *testing.T, config string) fixture {
	dir := t.TempDir()
	write := func(rel, content string) string {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}
	write("templates/deploy.yml", deployYAML)
	return fixture{
		dir:        dir,
		pipeline:   write("azure-pipelines.yml", pipelineYAML),
		configFile: write("config.yaml", config),
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	opts := cmdexpand.NewOptions()
	opts.Stdout = stdout
	opts.Stderr = stderr

	command := cmd.NewPipelineExpandCmd(opts)
	command.SetArgs(args)
	command.SetOut(stderr)
	command.SetErr(stderr)

	err := command.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExpandDefaults(t *testing.T) {
	f := newFixture(t, "debug: false\n")

	out, _, err := run(t, f.pipeline, "--config", f.configFile)
	require.NoError(t, err)

	assert.Equal(t, `steps:
  - task: Bash@3
    inputs:
      script: echo dev
`, out)
}

func TestExpandWithParametersAndVariables(t *testing.T) {
	f := newFixture(t, "debug: false\n")

	out, _, err := run(t, f.pipeline, "--config", f.configFile, "-p", "env=prod", "--variable", "region=eu")
	require.NoError(t, err)

	assert.Equal(t, `steps:
  - task: Bash@3
    inputs:
      script: echo prod
  - task: CmdLine@2
    inputs:
      script: echo deploying to eu
`, out)
}

func TestExpandFlagsOverrideOverridesFile(t *testing.T) {
	f := newFixture(t, "debug: false\n")
	overrides := filepath.Join(f.dir, "overrides.toml")
	require.NoError(t, os.WriteFile(overrides, []byte("[parameters]\nenv = \"prod\"\n\n[variables]\nregion = \"us\"\n"), 0644))

	out, _, err := run(t, f.pipeline, "--config", f.configFile, "--overrides", overrides, "--variable", "region=eu")
	require.NoError(t, err)
	assert.Contains(t, out, "script: echo prod")
	assert.Contains(t, out, "script: echo deploying to eu")
}

func TestExpandCompatFromConfig(t *testing.T) {
	f := newFixture(t, "azure_compatible: true\n")

	out, _, err := run(t, f.pipeline, "--config", f.configFile)
	require.NoError(t, err)
	assert.Equal(t, `steps:
  - task: Bash@3
    inputs:
      script: echo dev


`, out)

	out, _, err = run(t, f.pipeline, "--config", f.configFile, "--azure-compatible=false")
	require.NoError(t, err)
	assert.Equal(t, `steps:
  - task: Bash@3
    inputs:
      script: echo dev
`, out)
}

func TestExpandWritesOutputFile(t *testing.T) {
	f := newFixture(t, "debug: false\n")
	outPath := filepath.Join(f.dir, "out", "expanded.yml")

	out, _, err := run(t, f.pipeline, "--config", f.configFile, "-o", outPath)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "script: echo dev")
}

func TestExpandDebugOutput(t *testing.T) {
	f := newFixture(t, "debug: true\n")

	_, stderr, err := run(t, f.pipeline, "--config", f.configFile, "-p", "env=prod")
	require.NoError(t, err)
	assert.Contains(t, stderr, "## config "+f.configFile)
	assert.Contains(t, stderr, "## template templates/deploy.yml")
	assert.Contains(t, stderr, "total: ")
}

func TestExpandRequireAtLeast(t *testing.T) {
	f := newFixture(t, "require_at_least: 999.0.0\n")

	_, _, err := run(t, f.pipeline, "--config", f.configFile)
	require.Error(t, err)
	assert.Equal(t, "pipeline-expand version "+version.Version+" does not meet the minimum required version 999.0.0", err.Error())
}

func TestExpandReportsValidationErrors(t *testing.T) {
	f := newFixture(t, "debug: false\n")

	_, _, err := run(t, f.pipeline, "--config", f.configFile, "-p", "stage=x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameters: stage")
}

func TestExpandRequiresOneArgument(t *testing.T) {
	_, _, err := run(t)
	require.Error(t, err)

	_, _, err = run(t, "a.yml", "b.yml")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pipeline-expand version "+version.Version+"\n", out)
}
