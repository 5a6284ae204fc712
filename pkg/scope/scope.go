// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package scope

import (
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/formatting"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/resources"
)

// Scope is the environment visible at one point of an expansion. Scopes
// are treated as immutable: every derivation returns a new Scope and the
// parent is never changed, except for the shared formatting table.
type Scope struct {
	Parameters *orderedmap.Map
	// ParameterMap is where each top-level parameter's default was
	// declared, used to carry its quote style to substitution sites.
	ParameterMap map[string]formatting.Path
	Variables    *orderedmap.Map
	// HostVariables are the variables supplied by the caller of the
	// whole expansion; steps-only templates see only these.
	HostVariables *orderedmap.Map
	Resources     *resources.Set
	Locals        *orderedmap.Map

	BaseDir           string
	RepositoryBaseDir string
	ResourceLocations map[string]string

	TemplateStack []string
	ExpansionPath formatting.Path

	Formatting *formatting.Table
}

var _ expr.Context = &Scope{}

func New() *Scope {
	return &Scope{
		Parameters:        orderedmap.NewMap(),
		ParameterMap:      map[string]formatting.Path{},
		Variables:         orderedmap.NewMap(),
		HostVariables:     orderedmap.NewMap(),
		Resources:         resources.NewSet(),
		Locals:            orderedmap.NewMap(),
		ResourceLocations: map[string]string{},
		Formatting:        formatting.NewTable(),
	}
}

func (s *Scope) shallowCopy() *Scope {
	result := *s
	return &result
}

// At descends into a child key or index.
func (s *Scope) At(segments ...interface{}) *Scope {
	result := s.shallowCopy()
	result.ExpansionPath = s.ExpansionPath.Append(segments...)
	return result
}

// ForIteration binds a loop variable and its index as locals.
func (s *Scope) ForIteration(name string, item interface{}, index int) *Scope {
	result := s.shallowCopy()
	result.Locals = s.Locals.Copy()
	result.Locals.Set(name, item)
	result.Locals.Set(name+"Index", index)
	return result
}

// WithVariables extends variables with vars; later names win.
func (s *Scope) WithVariables(vars *orderedmap.Map) *Scope {
	if vars.Len() == 0 {
		return s
	}
	result := s.shallowCopy()
	result.Variables = s.Variables.Copy()
	vars.Iterate(func(k string, v interface{}) { result.Variables.Set(k, v) })
	return result
}

// TemplateFrame describes the scope a template body expands in.
type TemplateFrame struct {
	Identifier        string
	Parameters        *orderedmap.Map
	ParameterMap      map[string]formatting.Path
	Variables         *orderedmap.Map
	BaseDir           string
	RepositoryBaseDir string
}

// ForTemplate starts a new frame: parameters and variables are replaced,
// locals reset and the expansion path restarts at the template's root.
func (s *Scope) ForTemplate(frame TemplateFrame) *Scope {
	result := s.shallowCopy()
	result.Parameters = frame.Parameters
	result.ParameterMap = frame.ParameterMap
	result.Variables = frame.Variables.Copy()
	result.Locals = orderedmap.NewMap()
	result.BaseDir = frame.BaseDir
	result.RepositoryBaseDir = frame.RepositoryBaseDir
	result.TemplateStack = append(append([]string{}, s.TemplateStack...), frame.Identifier)
	result.ExpansionPath = nil
	return result
}

func (s *Scope) Local(name string) (interface{}, bool)     { return s.Locals.Get(name) }
func (s *Scope) Parameter(name string) (interface{}, bool) { return s.Parameters.Get(name) }
func (s *Scope) Variable(name string) (interface{}, bool)  { return s.Variables.Get(name) }

func (s *Scope) Collection(name string) (interface{}, bool) {
	switch name {
	case "parameters":
		return s.Parameters, true
	case "variables":
		return s.Variables, true
	case "locals":
		return s.Locals, true
	case "resources":
		return s.Resources.AsTree(), true
	}
	return nil, false
}
