// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlmeta"
)

// Overrides is the content of an --overrides file.
type Overrides struct {
	Parameters        *orderedmap.Map
	Variables         *orderedmap.Map
	Resources         interface{}
	Locals            *orderedmap.Map
	ResourceLocations map[string]string
}

var overridesKeys = []string{"parameters", "variables", "resources", "locals", "resourceLocations"}

// LoadOverrides reads YAML or JSON, or TOML when the file ends in .toml.
func LoadOverrides(path string, fs files.FS) (Overrides, error) {
	data, err := files.NewLocalSource(path, fs).Bytes()
	if err != nil {
		return Overrides{}, err
	}

	var root interface{}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var decoded map[string]interface{}
		_, err = toml.Decode(string(data), &decoded)
		if err != nil {
			return Overrides{}, fmt.Errorf("Unmarshaling TOML overrides '%s': %s", path, err)
		}
		root = orderedmap.Conversion{Object: decoded}.FromUnorderedMaps()
	} else {
		root, err = yamlmeta.ParseValue(string(data))
		if err != nil {
			return Overrides{}, fmt.Errorf("Unmarshaling overrides '%s': %s", path, err)
		}
	}

	return newOverrides(root, path)
}

func newOverrides(root interface{}, path string) (Overrides, error) {
	var result Overrides
	if root == nil {
		return result, nil
	}

	rootMap, ok := root.(*orderedmap.Map)
	if !ok {
		return result, fmt.Errorf("Expected overrides '%s' to be a mapping, but was %T", path, root)
	}

	var unknown []string
	for _, key := range rootMap.Keys() {
		if !isOverridesKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return result, fmt.Errorf("Unknown keys in overrides '%s': %s (expected one of %s)",
			path, strings.Join(unknown, ", "), strings.Join(overridesKeys, ", "))
	}

	var err error

	result.Parameters, err = overridesMap(rootMap, "parameters", path)
	if err != nil {
		return result, err
	}
	result.Variables, err = overridesMap(rootMap, "variables", path)
	if err != nil {
		return result, err
	}
	result.Locals, err = overridesMap(rootMap, "locals", path)
	if err != nil {
		return result, err
	}
	result.Resources, _ = rootMap.Get("resources")

	locations, err := overridesMap(rootMap, "resourceLocations", path)
	if err != nil {
		return result, err
	}
	if locations != nil {
		result.ResourceLocations = map[string]string{}
		locations.Iterate(func(alias string, val interface{}) {
			result.ResourceLocations[alias] = fmt.Sprintf("%v", val)
		})
	}

	return result, nil
}

func overridesMap(root *orderedmap.Map, key, path string) (*orderedmap.Map, error) {
	val, found := root.Get(key)
	if !found || val == nil {
		return nil, nil
	}
	typedVal, ok := val.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected '%s' in overrides '%s' to be a mapping, but was %T", key, path, val)
	}
	return typedVal, nil
}

func isOverridesKey(key string) bool {
	for _, k := range overridesKeys {
		if k == key {
			return true
		}
	}
	return false
}

// mergeMaps returns a copy of base with every key of overlay set on top.
func mergeMaps(base, overlay *orderedmap.Map) *orderedmap.Map {
	if base == nil && overlay == nil {
		return nil
	}
	result := orderedmap.NewMap()
	if base != nil {
		result = base.Copy()
	}
	overlay.Iterate(func(k string, v interface{}) { result.Set(k, v) })
	return result
}
