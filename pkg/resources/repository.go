// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
)

// Repository is one resources.repositories entry. Fields without a
// dedicated slot are kept in Extra and passed through.
type Repository struct {
	Alias            string
	Type             string
	Name             string
	Ref              string
	Endpoint         string
	Location         string
	Path             string
	Directory        string
	LocalPath        string
	LocalLocation    string
	ResolvedLocation string
	Extra            map[string]interface{}

	// Match restricts an override to entries with equal fields.
	Match map[string]interface{}
}

var repositoryFields = map[string]func(r *Repository) *string{
	"repository":         func(r *Repository) *string { return &r.Alias },
	"type":               func(r *Repository) *string { return &r.Type },
	"name":               func(r *Repository) *string { return &r.Name },
	"ref":                func(r *Repository) *string { return &r.Ref },
	"endpoint":           func(r *Repository) *string { return &r.Endpoint },
	"location":           func(r *Repository) *string { return &r.Location },
	"path":               func(r *Repository) *string { return &r.Path },
	"directory":          func(r *Repository) *string { return &r.Directory },
	"localPath":          func(r *Repository) *string { return &r.LocalPath },
	"localLocation":      func(r *Repository) *string { return &r.LocalLocation },
	"__resolvedLocation": func(r *Repository) *string { return &r.ResolvedLocation },
}

// Ordered output of known fields.
var repositoryFieldOrder = []string{"repository", "type", "name", "ref", "endpoint",
	"location", "path", "directory", "localPath", "localLocation", "__resolvedLocation"}

func NewRepositoryFromMap(m *orderedmap.Map) *Repository {
	repo := &Repository{}
	m.Iterate(func(k string, v interface{}) {
		if k == "__match" {
			if criteria, ok := v.(*orderedmap.Map); ok {
				repo.Match = orderedmap.Conversion{Object: criteria.DeepCopy()}.AsUnorderedStringMaps().(map[string]interface{})
			}
			return
		}
		if field, found := repositoryFields[k]; found {
			if _, isContainer := v.(*orderedmap.Map); !isContainer && v != nil {
				*field(repo) = expr.Stringify(v)
				return
			}
		}
		if repo.Extra == nil {
			repo.Extra = map[string]interface{}{}
		}
		repo.Extra[k] = orderedmap.DeepCopyValue(v)
	})
	return repo
}

// Field returns a field by its YAML key.
func (r *Repository) Field(key string) (interface{}, bool) {
	if field, found := repositoryFields[key]; found {
		val := *field(r)
		return val, val != ""
	}
	val, found := r.Extra[key]
	return val, found
}

// Matches reports whether every criterion equals the entry's field.
func (r *Repository) Matches(criteria map[string]interface{}) bool {
	for key, want := range criteria {
		got, found := r.Field(key)
		if !found || expr.CompareValues(got, want) != 0 {
			return false
		}
	}
	return true
}

func (r *Repository) Clone() *Repository {
	result := *r
	if r.Extra != nil {
		result.Extra = map[string]interface{}{}
		for k, v := range r.Extra {
			result.Extra[k] = orderedmap.DeepCopyValue(v)
		}
	}
	result.Match = nil
	return &result
}

func (r *Repository) AsMap() *orderedmap.Map {
	result := orderedmap.NewMap()
	for _, key := range repositoryFieldOrder {
		if val := *repositoryFields[key](r); val != "" {
			result.Set(key, val)
		}
	}
	var extraKeys []string
	for k := range r.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		result.Set(k, orderedmap.DeepCopyValue(r.Extra[k]))
	}
	return result
}

// rawLocation is the first of location, path, directory and localPath.
func (r *Repository) rawLocation() string {
	for _, candidate := range []string{r.Location, r.Path, r.Directory, r.LocalPath} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func (r *Repository) HasLocation() bool {
	return r.ResolvedLocation != "" || r.rawLocation() != ""
}

// ResolveLocation returns the local directory the repository lives in.
// interpolate expands directives inside the configured location. The
// result is cached on the entry.
func (r *Repository) ResolveLocation(interpolate func(string) (string, error)) (string, bool, error) {
	if r.ResolvedLocation != "" {
		return r.ResolvedLocation, true, nil
	}

	location := r.rawLocation()
	if location == "" {
		return "", false, nil
	}

	if strings.Contains(location, "${{") && interpolate != nil {
		interpolated, err := interpolate(location)
		if err != nil {
			return "", false, fmt.Errorf("Interpolating location of repository '%s': %w", r.Alias, err)
		}
		location = interpolated
	}

	location = expandHome(location)

	r.ResolvedLocation = location
	if r.Location == "" {
		r.Location = location
	} else {
		r.LocalLocation = location
	}
	return location, true, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
