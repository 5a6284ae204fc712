// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"fmt"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlmeta"
	"github.com/spf13/cobra"
)

type ParameterFlags struct {
	KVsFromStrings    []string
	KVsFromYAML       []string
	Variables         []string
	ResourceLocations []string
}

func (s *ParameterFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.KVsFromStrings, "parameter", "p", nil, "Set template parameter to given value, as string (format: name=value or obj.key=value) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.KVsFromYAML, "parameter-yaml", nil, "Set template parameter to given value, parsed as YAML (format: name=true) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.Variables, "variable", nil, "Set pipeline variable visible to expressions (format: name=value) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.ResourceLocations, "resource-location", nil, "Set local directory of repository resource (format: alias=path) (can be specified multiple times)")
}

type parameterFlagsSource struct {
	Values        []string
	TransformFunc func(string) (interface{}, error)
}

// Parameters returns parameters with dotted names nested into objects.
func (s *ParameterFlags) Parameters() (*orderedmap.Map, error) {
	plainValFunc := func(rawVal string) (interface{}, error) { return rawVal, nil }
	yamlValFunc := func(rawVal string) (interface{}, error) {
		val, err := yamlmeta.ParseValue(rawVal)
		if err != nil {
			return nil, fmt.Errorf("Deserializing YAML value: %s", err)
		}
		return val, nil
	}

	result := []*orderedmap.Map{}

	for _, src := range []parameterFlagsSource{{s.KVsFromStrings, plainValFunc}, {s.KVsFromYAML, yamlValFunc}} {
		for _, kv := range src.Values {
			vals, err := s.kv(kv, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting parameter from KV: %s", err)
			}
			result = append(result, vals)
		}
	}

	return s.convertIntoNestedMap(result)
}

// VariablesMap keeps names as given since variable names may contain dots.
func (s *ParameterFlags) VariablesMap() (*orderedmap.Map, error) {
	result := orderedmap.NewMap()
	for _, kv := range s.Variables {
		pieces := strings.SplitN(kv, "=", 2)
		if len(pieces) != 2 {
			return nil, fmt.Errorf("Extracting variable from KV: Expected format key=value")
		}
		result.Set(pieces[0], pieces[1])
	}
	return result, nil
}

func (s *ParameterFlags) ResourceLocationsMap() (map[string]string, error) {
	result := map[string]string{}
	for _, kv := range s.ResourceLocations {
		pieces := strings.SplitN(kv, "=", 2)
		if len(pieces) != 2 || pieces[0] == "" {
			return nil, fmt.Errorf("Extracting resource location from KV: Expected format alias=path")
		}
		result[pieces[0]] = pieces[1]
	}
	return result, nil
}

func (s *ParameterFlags) kv(kv string, valueFunc func(string) (interface{}, error)) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 {
		return nil, fmt.Errorf("Expected format key=value")
	}

	val, err := valueFunc(pieces[1])
	if err != nil {
		return nil, fmt.Errorf("Deserializing value for key '%s': %s", pieces[0], err)
	}

	result.Set(pieces[0], val)

	return result, nil
}

func (s *ParameterFlags) convertIntoNestedMap(multipleVals []*orderedmap.Map) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	for _, vals := range multipleVals {
		err := vals.IterateErr(func(key string, val interface{}) error {
			keyPieces := strings.Split(key, ".")
			currMap := result

			for _, keyPiece := range keyPieces[:len(keyPieces)-1] {
				subMap, found := currMap.Get(keyPiece)
				if found {
					if typedSubMap, ok := subMap.(*orderedmap.Map); ok {
						currMap = typedSubMap
					} else {
						return fmt.Errorf("Expected key '%s' to not conflict with other parameters at piece '%s'", key, keyPiece)
					}
				} else {
					newCurrMap := orderedmap.NewMap()
					currMap.Set(keyPiece, newCurrMap)
					currMap = newCurrMap
				}
			}

			currMap.Set(keyPieces[len(keyPieces)-1], val)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
