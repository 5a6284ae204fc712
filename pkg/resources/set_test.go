// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package resources_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/resources"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, text string) *resources.Set {
	tree, err := yamlmeta.ParseValue(text)
	require.NoError(t, err)
	set, err := resources.Normalize(tree)
	require.NoError(t, err)
	return set
}

func TestNormalizeListAndMapForms(t *testing.T) {
	list := normalize(t, `
repositories:
- repository: templates
  type: git
  name: org/templates
  ref: refs/heads/main
  trigger: none
pipelines:
- pipeline: upstream
`)
	require.Len(t, list.Repositories, 1)
	repo := list.Lookup("templates")
	require.NotNil(t, repo)
	assert.Equal(t, "git", repo.Type)
	assert.Equal(t, "org/templates", repo.Name)
	assert.Equal(t, "none", repo.Extra["trigger"])
	assert.True(t, list.Other.Has("pipelines"))

	mapped := normalize(t, `
repositories:
  tools:
    type: github
    name: org/tools
`)
	require.NotNil(t, mapped.Lookup("tools"))
	assert.Equal(t, "github", mapped.Lookup("tools").Type)
}

func TestNormalizeRejectsBadShapes(t *testing.T) {
	tree, err := yamlmeta.ParseValue("repositories: 3")
	require.NoError(t, err)
	_, err = resources.Normalize(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected resources.repositories to be a list or mapping")
}

func TestMergeOverridesByAlias(t *testing.T) {
	base := normalize(t, `
repositories:
- repository: templates
  type: git
  name: org/templates
  ref: refs/heads/main
- repository: other
  type: git
  name: org/other
containers:
- container: old
`)
	override := normalize(t, `
repositories:
- repository: templates
  ref: refs/heads/feature
  location: /src/templates
- repository: added
  location: /src/added
containers:
- container: new
`)

	merged, err := resources.Merge(base, override)
	require.NoError(t, err)

	var aliases []string
	for _, repo := range merged.Repositories {
		aliases = append(aliases, repo.Alias)
	}
	assert.Equal(t, []string{"templates", "other", "added"}, aliases)

	templates := merged.Lookup("templates")
	assert.Equal(t, "refs/heads/feature", templates.Ref)
	assert.Equal(t, "org/templates", templates.Name)
	assert.Equal(t, "/src/templates", templates.Location)

	containers, _ := merged.Other.Get("containers")
	assert.Len(t, containers, 1)

	// base is untouched
	assert.Equal(t, "refs/heads/main", base.Lookup("templates").Ref)
}

func TestMergeWithMatchCriteria(t *testing.T) {
	base := normalize(t, `
repositories:
- repository: a
  type: git
  name: org/a
- repository: b
  type: github
  name: org/b
`)
	override := normalize(t, `
repositories:
- __match:
    type: github
  location: /checkouts/github
`)

	merged, err := resources.Merge(base, override)
	require.NoError(t, err)
	require.Len(t, merged.Repositories, 2)
	assert.Equal(t, "", merged.Lookup("a").Location)
	assert.Equal(t, "/checkouts/github", merged.Lookup("b").Location)
}

func TestResolveRepository(t *testing.T) {
	set := normalize(t, `
repositories:
- repository: templates
  type: git
  name: org/templates
`)
	locations := map[string]string{"templates": "/src/templates", "extra": "/src/extra"}

	repo, found := set.ResolveRepository("templates", locations)
	require.True(t, found)
	assert.Equal(t, "/src/templates", repo.Location)

	repo, found = set.ResolveRepository("extra", locations)
	require.True(t, found)
	assert.Equal(t, "extra", repo.Alias)
	assert.NotNil(t, set.Lookup("extra"))

	_, found = set.ResolveRepository("missing", locations)
	assert.False(t, found)
}

func TestResolveLocation(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	repo := &resources.Repository{Alias: "tools", Path: "~/src/tools"}
	location, found, err := repo.ResolveLocation(nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, filepath.Join(home, "src/tools"), location)
	assert.Equal(t, location, repo.Location)

	interpolated := &resources.Repository{Alias: "x", Location: "/src/${{ parameters.name }}"}
	calls := 0
	interpolate := func(s string) (string, error) {
		calls++
		return "/src/x", nil
	}
	location, found, err = interpolated.ResolveLocation(interpolate)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/src/x", location)
	assert.Equal(t, "/src/x", interpolated.LocalLocation)

	_, _, err = interpolated.ResolveLocation(interpolate)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "expected cached location")

	_, found, err = (&resources.Repository{Alias: "none"}).ResolveLocation(nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAsTreeExposesRepositories(t *testing.T) {
	set := normalize(t, `
repositories:
- repository: templates
  type: git
  name: org/templates
`)
	tree := set.AsTree()
	repos, found := tree.Get("repositories")
	require.True(t, found)

	first := repos.([]interface{})[0]
	assert.Equal(t, []string{"repository", "type", "name"}, first.(interface{ Keys() []string }).Keys())
}
