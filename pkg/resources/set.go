// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package resources

import (
	"fmt"
	"strconv"

	"dario.cat/mergo"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
)

// Set is a normalized resources block.
type Set struct {
	Repositories []*Repository
	// Other holds every category besides repositories (pipelines,
	// containers, builds, packages, webhooks).
	Other *orderedmap.Map
}

func NewSet() *Set {
	return &Set{Other: orderedmap.NewMap()}
}

// Normalize builds a Set from a resources block. repositories may be a
// list of entries or a mapping from alias to entry.
func Normalize(raw interface{}) (*Set, error) {
	set := NewSet()
	if raw == nil {
		return set, nil
	}

	block, ok := raw.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected resources to be a mapping, but was %T", raw)
	}

	err := block.IterateErr(func(category string, val interface{}) error {
		if category != "repositories" {
			set.Other.Set(category, orderedmap.DeepCopyValue(val))
			return nil
		}

		switch typedVal := val.(type) {
		case nil:
		case []interface{}:
			for i, item := range typedVal {
				entry, ok := item.(*orderedmap.Map)
				if !ok {
					return fmt.Errorf("Expected resources.repositories[%d] to be a mapping, but was %T", i, item)
				}
				set.Repositories = append(set.Repositories, NewRepositoryFromMap(entry))
			}
		case *orderedmap.Map:
			return typedVal.IterateErr(func(alias string, item interface{}) error {
				entry, ok := item.(*orderedmap.Map)
				if !ok {
					return fmt.Errorf("Expected resources.repositories.%s to be a mapping, but was %T", alias, item)
				}
				repo := NewRepositoryFromMap(entry)
				if repo.Alias == "" {
					repo.Alias = alias
				}
				set.Repositories = append(set.Repositories, repo)
				return nil
			})
		default:
			return fmt.Errorf("Expected resources.repositories to be a list or mapping, but was %T", val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// key is the alias, or a synthetic positional key for unnamed entries.
func key(repo *Repository, idx int) string {
	if repo.Alias != "" {
		return repo.Alias
	}
	return "#" + strconv.Itoa(idx)
}

// Lookup finds an entry by alias.
func (s *Set) Lookup(alias string) *Repository {
	if s == nil {
		return nil
	}
	for _, repo := range s.Repositories {
		if repo.Alias == alias {
			return repo
		}
	}
	return nil
}

func (s *Set) Clone() *Set {
	result := NewSet()
	if s == nil {
		return result
	}
	for _, repo := range s.Repositories {
		result.Repositories = append(result.Repositories, repo.Clone())
	}
	result.Other = s.Other.DeepCopy()
	return result
}

// Merge applies overrides on top of base and returns a new Set. Categories
// other than repositories are replaced wholesale. Repositories merge by
// alias with override fields winning; overrides with match criteria only
// patch entries they match; new entries are appended after base entries.
func Merge(base, override *Set) (*Set, error) {
	result := base.Clone()
	if override == nil {
		return result, nil
	}

	override.Other.Iterate(func(category string, val interface{}) {
		result.Other.Set(category, orderedmap.DeepCopyValue(val))
	})

	indexByKey := map[string]int{}
	for i, repo := range result.Repositories {
		indexByKey[key(repo, i)] = i
	}

	for i, overrideRepo := range override.Repositories {
		if overrideRepo.Match != nil {
			err := result.patchMatching(overrideRepo)
			if err != nil {
				return nil, err
			}
			continue
		}

		k := key(overrideRepo, len(result.Repositories)+i)
		if idx, found := indexByKey[k]; found && overrideRepo.Alias != "" {
			err := mergeRepository(result.Repositories[idx], overrideRepo)
			if err != nil {
				return nil, err
			}
			continue
		}

		indexByKey[k] = len(result.Repositories)
		result.Repositories = append(result.Repositories, overrideRepo.Clone())
	}

	return result, nil
}

func (s *Set) patchMatching(overrideRepo *Repository) error {
	for _, repo := range s.Repositories {
		if overrideRepo.Alias != "" && repo.Alias != overrideRepo.Alias {
			continue
		}
		if !repo.Matches(overrideRepo.Match) {
			continue
		}
		err := mergeRepository(repo, overrideRepo)
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeRepository(dst, src *Repository) error {
	patch := src.Clone()
	err := mergo.Merge(dst, *patch, mergo.WithOverride)
	if err != nil {
		return fmt.Errorf("Merging repository '%s': %w", dst.Alias, err)
	}
	// a new location invalidates what was resolved before
	if patch.rawLocation() != "" && patch.ResolvedLocation == "" {
		dst.ResolvedLocation = ""
	}
	return nil
}

// ResolveRepository returns the entry for alias. Missing locations are
// filled from locations, and aliases only known there get a minimal entry.
func (s *Set) ResolveRepository(alias string, locations map[string]string) (*Repository, bool) {
	repo := s.Lookup(alias)
	location, hasLocation := locations[alias]

	if repo != nil {
		if !repo.HasLocation() && hasLocation && location != "" {
			repo.Location = location
		}
		return repo, true
	}

	if hasLocation && location != "" {
		repo = &Repository{Alias: alias, Location: location}
		s.Repositories = append(s.Repositories, repo)
		return repo, true
	}
	return nil, false
}

// AsTree is the view expressions see as resources. Entries without an
// alias stay positional.
func (s *Set) AsTree() *orderedmap.Map {
	result := orderedmap.NewMap()
	if s == nil {
		return result
	}
	var repos []interface{}
	for _, repo := range s.Repositories {
		repos = append(repos, repo.AsMap())
	}
	if repos != nil {
		result.Set("repositories", repos)
	}
	s.Other.Iterate(func(k string, v interface{}) {
		result.Set(k, orderedmap.DeepCopyValue(v))
	})
	return result
}
