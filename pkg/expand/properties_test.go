// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand_test

import (
	"fmt"
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func singleKey(key string, val interface{}) *orderedmap.Map {
	return orderedmap.NewMapWithItems([]orderedmap.MapItem{{Key: key, Value: val}})
}

func TestEachYieldsOneItemPerElementInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,8}`)).Draw(t, "names")

		items := []interface{}{}
		for _, name := range names {
			items = append(items, name)
		}
		sc := scope.New()
		sc.Parameters.Set("names", items)

		tree := []interface{}{
			singleKey("${{ each n in parameters.names }}", singleKey("job", "${{ n }}")),
		}
		out, err := expand.NewExpander(nil, nil).Expand(tree, sc)
		require.NoError(t, err)

		result := out.([]interface{})
		require.Len(t, result, len(names))
		for i, name := range names {
			job, _ := result[i].(*orderedmap.Map).Get("job")
			require.Equal(t, name, job)
		}
	})
}

func TestEachInMappingMergesOneKeyPerElement(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 15).Draw(t, "count")

		items := []interface{}{}
		for i := 0; i < count; i++ {
			items = append(items, fmt.Sprintf("key%d", i))
		}
		sc := scope.New()
		sc.Parameters.Set("keys", items)

		tree := singleKey("${{ each k in parameters.keys }}", singleKey("${{ k }}", "${{ kIndex }}"))
		out, err := expand.NewExpander(nil, nil).Expand(tree, sc)
		require.NoError(t, err)

		result := out.(*orderedmap.Map)
		require.Equal(t, count, result.Len())
		for i, key := range result.Keys() {
			require.Equal(t, fmt.Sprintf("key%d", i), key)
			val, _ := result.Get(key)
			require.Equal(t, i, val)
		}
	})
}

func TestConditionalChainTakesAtMostOneBranch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		conditions := rapid.SliceOfN(rapid.Bool(), 1, 5).Draw(t, "conditions")
		withElse := rapid.Bool().Draw(t, "withElse")

		sc := scope.New()
		tree := []interface{}{}
		for i, cond := range conditions {
			sc.Parameters.Set(fmt.Sprintf("c%d", i), cond)
			keyword := "elseif"
			if i == 0 {
				keyword = "if"
			}
			key := fmt.Sprintf("${{ %s parameters.c%d }}", keyword, i)
			tree = append(tree, singleKey(key, []interface{}{singleKey("branch", i)}))
		}
		if withElse {
			tree = append(tree, singleKey("${{ else }}", []interface{}{singleKey("branch", "else")}))
		}

		out, err := expand.NewExpander(nil, nil).Expand(tree, sc)
		require.NoError(t, err)
		result := out.([]interface{})

		var expected interface{}
		for i, cond := range conditions {
			if cond {
				expected = i
				break
			}
		}
		if expected == nil && withElse {
			expected = "else"
		}

		if expected == nil {
			require.Empty(t, result)
			return
		}
		require.Len(t, result, 1)
		branch, _ := result[0].(*orderedmap.Map).Get("branch")
		require.Equal(t, expected, branch)
	})
}
