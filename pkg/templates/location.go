// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
)

type templateLocation struct {
	// identifier is the reference as written, used in messages and stacks.
	identifier        string
	path              string
	repositoryBaseDir string
}

func (r *Resolver) locate(ref *orderedmap.Map, sc *scope.Scope, e *expand.Expander) (templateLocation, error) {
	rawPath, _ := ref.Get("template")
	text, ok := rawPath.(string)
	if !ok {
		return templateLocation{}, fmt.Errorf("Expected template reference to be a string, but was %T%s",
			rawPath, CallStack(sc.TemplateStack).suffix())
	}
	text = strings.TrimSpace(e.Interpolate(text, sc.At("template")))

	relPath, alias := splitAlias(text)
	location := templateLocation{identifier: text}

	var candidates []string
	if alias != "" {
		repoBase, err := r.repositoryBase(alias, text, sc, e)
		if err != nil {
			return location, err
		}
		location.repositoryBaseDir = repoBase

		if sc.RepositoryBaseDir == repoBase && sc.BaseDir != "" && sc.BaseDir != repoBase && !strings.HasPrefix(relPath, "/") {
			candidates = append(candidates, filepath.Join(sc.BaseDir, relPath))
		}
		candidates = append(candidates, filepath.Join(repoBase, trimRelative(relPath)))
	} else {
		location.repositoryBaseDir = sc.RepositoryBaseDir
		candidates = r.localCandidates(relPath, sc)
	}

	location.path = candidates[0]
	for _, candidate := range candidates {
		if r.fs.IsFile(candidate) {
			location.path = candidate
			break
		}
	}

	if !r.fs.IsFile(location.path) {
		return location, TemplateNotFoundError{
			Identifier: text,
			Path:       location.path,
			Stack:      CallStack(sc.TemplateStack),
		}
	}
	return location, nil
}

// splitAlias separates a trailing @alias from a template path. An @
// followed by a path separator belongs to a directory name instead.
func splitAlias(text string) (string, string) {
	idx := strings.LastIndex(text, "@")
	if idx <= 0 || idx == len(text)-1 {
		return text, ""
	}
	alias := text[idx+1:]
	if strings.ContainsAny(alias, `/\`) {
		return text, ""
	}
	return text[:idx], alias
}

func (r *Resolver) localCandidates(relPath string, sc *scope.Scope) []string {
	if strings.HasPrefix(relPath, "/") {
		root := sc.RepositoryBaseDir
		if root == "" {
			root = sc.BaseDir
		}
		if root != "" {
			return []string{filepath.Join(root, trimRelative(relPath))}
		}
		return []string{filepath.FromSlash(relPath)}
	}
	if filepath.IsAbs(relPath) {
		return []string{relPath}
	}

	var candidates []string
	if sc.BaseDir != "" {
		candidates = append(candidates, filepath.Join(sc.BaseDir, relPath))
	}
	if sc.RepositoryBaseDir != "" && sc.RepositoryBaseDir != sc.BaseDir {
		candidates = append(candidates, filepath.Join(sc.RepositoryBaseDir, relPath))
	}
	if len(candidates) == 0 {
		abs, err := filepath.Abs(relPath)
		if err != nil {
			abs = relPath
		}
		candidates = append(candidates, abs)
	}
	return candidates
}

// repositoryBase finds the local directory a repository alias points to.
func (r *Resolver) repositoryBase(alias, identifier string, sc *scope.Scope, e *expand.Expander) (string, error) {
	if alias == selfAlias {
		if sc.Resources.Lookup(selfAlias) == nil && sc.ResourceLocations[selfAlias] == "" {
			if sc.RepositoryBaseDir != "" {
				return sc.RepositoryBaseDir, nil
			}
			return sc.BaseDir, nil
		}
	}

	repo, found := sc.Resources.ResolveRepository(alias, sc.ResourceLocations)
	if !found {
		return "", RepositoryUndefinedError{Alias: alias, Identifier: identifier, Stack: CallStack(sc.TemplateStack)}
	}

	loc, found, err := repo.ResolveLocation(func(text string) (string, error) {
		return e.Interpolate(text, sc), nil
	})
	if err != nil {
		return "", fmt.Errorf("Resolving repository '%s': %s%s", alias, err, CallStack(sc.TemplateStack).suffix())
	}
	if !found {
		return "", RepositoryUndefinedError{
			Alias: alias, Identifier: identifier, MissingLocation: true, Stack: CallStack(sc.TemplateStack),
		}
	}

	if !filepath.IsAbs(loc) {
		if abs, err := filepath.Abs(loc); err == nil {
			loc = abs
		}
	}
	r.ui.Debugf("## repository %s (%s)\n", alias, loc)

	if r.fs.IsFile(loc) {
		return filepath.Dir(loc), nil
	}
	return loc, nil
}
