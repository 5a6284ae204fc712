// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap_test

import (
	"reflect"
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUnorderedMaps(t *testing.T) {
	inputA := map[string]interface{}{
		"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
	}
	inputB := map[string]interface{}{
		"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
	}

	orderedmap.Conversion{Object: inputA}.FromUnorderedMaps()

	if !reflect.DeepEqual(inputA, inputB) {
		t.Errorf("Nested object was modified. Got: %v, Expected: %v", inputA, inputB)
	}
}

func TestFromUnorderedMapsSortsKeys(t *testing.T) {
	result := orderedmap.Conversion{Object: map[string]interface{}{
		"zeta": int64(1), "alpha": map[interface{}]interface{}{"b": true, "a": "x"},
	}}.FromUnorderedMaps()

	m, ok := result.(*orderedmap.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "zeta"}, m.Keys())

	zeta, _ := m.Get("zeta")
	assert.Equal(t, 1, zeta)

	alpha, _ := m.Get("alpha")
	assert.Equal(t, []string{"a", "b"}, alpha.(*orderedmap.Map).Keys())
}

func TestAsUnorderedStringMapsRoundTrip(t *testing.T) {
	m := orderedmap.NewMap()
	m.Set("b", []interface{}{"x"})
	m.Set("a", 1)

	result := orderedmap.Conversion{Object: m}.AsUnorderedStringMaps()
	assert.Equal(t, map[string]interface{}{"b": []interface{}{"x"}, "a": 1}, result)
}
