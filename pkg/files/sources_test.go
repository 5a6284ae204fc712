// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files_test

import (
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSourceReadsThroughFS(t *testing.T) {
	fs := files.NewMemFS()
	require.NoError(t, fs.WriteFile("/repo/azure-pipelines.yml", []byte("steps: []\n")))

	src := files.NewLocalSource("/repo/azure-pipelines.yml", fs)
	data, err := src.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "steps: []\n", string(data))
	assert.Equal(t, "/repo/azure-pipelines.yml", src.Path())
	assert.Equal(t, "file '/repo/azure-pipelines.yml'", src.Description())
}

func TestLocalSourceMissingFile(t *testing.T) {
	_, err := files.NewLocalSource("/nope.yml", files.NewMemFS()).Bytes()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reading file '/nope.yml'")
}

func TestFSQueries(t *testing.T) {
	fs := files.NewMemFS()
	require.NoError(t, fs.WriteFile("/repo/templates/a.yml", []byte("x: 1")))

	assert.True(t, fs.Exists("/repo/templates"))
	assert.True(t, fs.IsDir("/repo/templates"))
	assert.False(t, fs.IsFile("/repo/templates"))
	assert.True(t, fs.IsFile("/repo/templates/a.yml"))
	assert.False(t, fs.Exists("/repo/templates/b.yml"))
}

func TestOutputFileCreate(t *testing.T) {
	fs := files.NewMemFS()
	out := files.NewOutputFile("out/pipeline.yml", []byte("a: 1\n"))
	require.NoError(t, out.Create(fs, "/tmp"))

	data, err := fs.ReadFile("/tmp/out/pipeline.yml")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))
	assert.Equal(t, "/tmp/out/pipeline.yml", out.Path("/tmp"))
	assert.Equal(t, "/abs.yml", files.NewOutputFile("/abs.yml", nil).Path("/tmp"))
}
