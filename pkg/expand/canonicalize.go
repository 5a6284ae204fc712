// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/formatting"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
)

const CheckoutTask = "6d15af64-176c-496d-b583-fd2ae21d4df4@1"

type shorthand struct {
	Key       string
	Task      string
	InputKey  string
	InputKeys []string
	Extra     []orderedmap.MapItem
}

var shorthands = []shorthand{
	{
		Key: "bash", Task: "Bash@3", InputKey: "script",
		InputKeys: []string{"workingDirectory", "failOnStderr"},
	},
	{
		Key: "script", Task: "CmdLine@2", InputKey: "script",
		InputKeys: []string{"workingDirectory", "failOnStderr"},
	},
	{
		Key: "pwsh", Task: "PowerShell@2", InputKey: "script",
		InputKeys: []string{"workingDirectory", "failOnStderr", "errorActionPreference", "ignoreLASTEXITCODE"},
		Extra:     []orderedmap.MapItem{{Key: "pwsh", Value: true}},
	},
	{
		Key: "powershell", Task: "PowerShell@2", InputKey: "script",
		InputKeys: []string{"workingDirectory", "failOnStderr", "errorActionPreference", "ignoreLASTEXITCODE"},
	},
	{
		Key: "checkout", Task: CheckoutTask, InputKey: "repository",
		InputKeys: []string{
			"clean", "fetchDepth", "fetchTags", "lfs", "submodules", "path", "persistCredentials",
			"sparseCheckoutDirectories", "sparseCheckoutPatterns", "workspaceRepo", "workingDirectory",
		},
	},
}

// Canonicalize rewrites step shorthands into task form and normalizes
// the shape of pool, dependsOn and variables. Step shorthands apply only
// to items of a steps list and pool or dependsOn only to the pipeline,
// stage and job level. Quote styles recorded for moved values follow
// them to their new paths.
func Canonicalize(m *orderedmap.Map, sc *scope.Scope) *orderedmap.Map {
	var path formatting.Path
	if sc != nil {
		path = sc.ExpansionPath
	}
	if inDataBlock(path) {
		return m
	}

	result := m
	if isStepItem(path) {
		result = canonicalizeStep(m, sc)
	}

	if isPipelineUnit(path) {
		if pool, found := result.Get("pool"); found {
			if poolName, ok := pool.(string); ok {
				result.Set("pool", orderedmap.NewMapWithItems([]orderedmap.MapItem{{Key: "name", Value: poolName}}))
				relocate(sc, path.Append("pool"), path.Append("pool", "name"), poolName)
			}
		}

		if dependsOn, found := result.Get("dependsOn"); found {
			if name, ok := dependsOn.(string); ok {
				result.Set("dependsOn", []interface{}{name})
				relocate(sc, path.Append("dependsOn"), path.Append("dependsOn", 0), name)
			}
		}
	}

	if vars, found := result.Get("variables"); found {
		if varsMap, ok := vars.(*orderedmap.Map); ok {
			result.Set("variables", VariablesAsList(varsMap, sc.At("variables")))
		}
	}

	return result
}

// dataBlocks hold user data whose keys are names, never pipeline syntax.
var dataBlocks = map[string]bool{
	"variables":  true,
	"env":        true,
	"matrix":     true,
	"parameters": true,
	"inputs":     true,
}

func inDataBlock(path formatting.Path) bool {
	for _, name := range path.Names() {
		if dataBlocks[name] {
			return true
		}
	}
	return false
}

// listOwner returns the key of the sequence the path points into, or
// "" when the path does not end at a sequence item. A path made only of
// indexes is the item of a sequence rooted template.
func listOwner(path formatting.Path) (string, bool) {
	normalized := path.Normalize()
	if len(normalized) == 0 {
		return "", false
	}
	if _, ok := normalized[len(normalized)-1].(int); !ok {
		return "", false
	}
	for i := len(normalized) - 1; i >= 0; i-- {
		if name, ok := normalized[i].(string); ok {
			return name, true
		}
	}
	return "", true
}

func isStepItem(path formatting.Path) bool {
	owner, ok := listOwner(path)
	return ok && (owner == "steps" || owner == "")
}

func isPipelineUnit(path formatting.Path) bool {
	if len(path.Normalize()) == 0 {
		return true
	}
	owner, ok := listOwner(path)
	return ok && (owner == "stages" || owner == "jobs" || owner == "")
}

func canonicalizeStep(m *orderedmap.Map, sc *scope.Scope) *orderedmap.Map {
	if m.Has("task") || m.Has("inputs") || m.Has("targetType") {
		return m
	}

	for _, sh := range shorthands {
		val, found := m.Get(sh.Key)
		if !found {
			continue
		}

		moved := map[string]bool{sh.Key: true}
		inputs := orderedmap.NewMap()
		inputs.Set(sh.InputKey, val)
		if str, ok := val.(string); ok {
			relocate(sc, sc.ExpansionPath.Append(sh.Key), sc.ExpansionPath.Append("inputs", sh.InputKey), str)
		}
		for _, key := range sh.InputKeys {
			if inputVal, found := m.Get(key); found {
				inputs.Set(key, inputVal)
				moved[key] = true
				if str, ok := inputVal.(string); ok {
					relocate(sc, sc.ExpansionPath.Append(key), sc.ExpansionPath.Append("inputs", key), str)
				}
			}
		}
		for _, extra := range sh.Extra {
			inputs.Set(extra.Key, extra.Value)
		}

		result := orderedmap.NewMap()
		result.Set("task", sh.Task)
		m.Iterate(func(k string, v interface{}) {
			if !moved[k] {
				result.Set(k, v)
			}
		})
		if sh.Key == "checkout" && val == "none" && !result.Has("condition") {
			result.Set("condition", false)
		}
		result.Set("inputs", inputs)
		return result
	}
	return m
}

// VariablesAsList converts the mapping form of a variables block into
// the canonical list of name/value entries.
func VariablesAsList(vars *orderedmap.Map, sc *scope.Scope) []interface{} {
	result := []interface{}{}
	idx := 0
	vars.Iterate(func(name string, val interface{}) {
		entry := orderedmap.NewMap()
		entry.Set("name", name)
		entry.Set("value", val)
		result = append(result, entry)
		if str, ok := val.(string); ok {
			relocate(sc, sc.ExpansionPath.Append(name), sc.ExpansionPath.Append(idx, "value"), str)
		}
		idx++
	})
	return result
}

func relocate(sc *scope.Scope, from, to formatting.Path, content string) {
	if sc == nil || sc.Formatting == nil {
		return
	}
	sc.Formatting.Relocate(from, to, content)
}
