// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"fmt"
	"sort"
)

type Conversion struct {
	Object interface{}
}

func (c Conversion) AsUnorderedStringMaps() interface{} {
	return c.asUnorderedStringMaps(c.Object)
}

func (c Conversion) asUnorderedStringMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[interface{}]interface{}:
		panic("Expected *orderedmap.Map instead of map[interface{}]interface{} in asUnorderedStringMaps")

	case map[string]interface{}:
		panic("Expected *orderedmap.Map instead of map[string]interface{} in asUnorderedStringMaps")

	case *Map:
		result := map[string]interface{}{}
		typedObj.Iterate(func(k string, v interface{}) {
			result[k] = c.asUnorderedStringMaps(v)
		})
		return result

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.asUnorderedStringMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

// FromUnorderedMaps converts decoded JSON/TOML/YAML maps into
// *Map values with keys sorted, since their source order is lost.
func (c Conversion) FromUnorderedMaps() interface{} {
	return c.fromUnorderedMaps(c.Object)
}

func (c Conversion) fromUnorderedMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[interface{}]interface{}:
		result := NewMap()
		byKey := map[string]interface{}{}
		for k, v := range typedObj {
			byKey[fmt.Sprintf("%v", k)] = v
		}
		for _, key := range c.sortedMapKeys(byKey) {
			result.Set(key, c.fromUnorderedMaps(byKey[key]))
		}
		return result

	case map[string]interface{}:
		result := NewMap()
		for _, key := range c.sortedMapKeys(typedObj) {
			result.Set(key, c.fromUnorderedMaps(typedObj[key]))
		}
		return result

	case []map[string]interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.fromUnorderedMaps(item)
		}
		return result

	case *Map:
		panic("Expected map[string]interface{} instead of *orderedmap.Map in fromUnorderedMaps")

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.fromUnorderedMaps(item)
		}
		return result

	case int64:
		return int(typedObj)

	default:
		return typedObj
	}
}

func (Conversion) sortedMapKeys(m map[string]interface{}) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
