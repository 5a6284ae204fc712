// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/formatting"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlmeta"
)

const (
	DefaultMaxDepth = 50
	selfAlias       = "self"
)

// bodyKeys are tried in order to find what a template contributes.
var bodyKeys = []string{"stages", "jobs", "steps", "variables", "stage", "job", "deployment", "deployments"}

// templateKinds are the keys that make a template more than a step list.
var templateKinds = []string{"stages", "jobs", "variables", "stage", "job", "deployment", "deployments", "extends"}

type loadedTemplate struct {
	doc   *yamlmeta.Document
	table *formatting.Table
}

// Resolver loads template files and expands them in their own scope.
// One Resolver serves one root expansion.
type Resolver struct {
	fs       files.FS
	ui       files.UI
	MaxDepth int

	loaded      map[string]*loadedTemplate
	loadedFiles []string
	merged      map[*formatting.Table]map[string]bool
}

var _ expand.TemplateResolver = &Resolver{}

func NewResolver(fs files.FS, ui files.UI) *Resolver {
	if ui == nil {
		ui = files.NoopUI{}
	}
	return &Resolver{
		fs:       fs,
		ui:       ui,
		MaxDepth: DefaultMaxDepth,
		loaded:   map[string]*loadedTemplate{},
		merged:   map[*formatting.Table]map[string]bool{},
	}
}

// LoadedFiles lists every template file read, in load order.
func (r *Resolver) LoadedFiles() []string {
	return append([]string{}, r.loadedFiles...)
}

// ResolveTemplate expands a template reference into the items it adds
// to the caller. Templates rooted at a sequence contribute their items
// directly.
func (r *Resolver) ResolveTemplate(ref *orderedmap.Map, sc *scope.Scope, e *expand.Expander) ([]interface{}, error) {
	expanded, _, err := r.resolve(ref, sc, e)
	if err != nil {
		return nil, err
	}
	switch typedExpanded := expanded.(type) {
	case *orderedmap.Map:
		return extractBody(typedExpanded), nil
	case []interface{}:
		return typedExpanded, nil
	default:
		return []interface{}{}, nil
	}
}

// ResolveDocument expands a template reference and returns the whole
// expanded template without its parameter declarations.
func (r *Resolver) ResolveDocument(ref *orderedmap.Map, sc *scope.Scope, e *expand.Expander) (*orderedmap.Map, error) {
	expanded, location, err := r.resolve(ref, sc, e)
	if err != nil {
		return nil, err
	}
	switch typedExpanded := expanded.(type) {
	case *orderedmap.Map:
		return typedExpanded, nil
	case nil:
		return orderedmap.NewMap(), nil
	default:
		return nil, ParseError{
			Identifier: location.identifier,
			Err:        fmt.Errorf("Expected template to be a mapping, but was %T", expanded),
			Stack:      CallStack(sc.TemplateStack).with(location.identifier),
		}
	}
}

func (r *Resolver) resolve(ref *orderedmap.Map, sc *scope.Scope, e *expand.Expander) (interface{}, templateLocation, error) {
	location, err := r.locate(ref, sc, e)
	if err != nil {
		return nil, location, err
	}

	stack := CallStack(sc.TemplateStack)
	if r.MaxDepth > 0 && len(sc.TemplateStack) >= r.MaxDepth {
		return nil, location, TemplateDepthError{Identifier: location.identifier, MaxDepth: r.MaxDepth, Stack: stack.with(location.identifier)}
	}

	tpl, err := r.load(location, stack)
	if err != nil {
		return nil, location, err
	}
	r.mergeFormatting(sc.Formatting, location.path, tpl.table)

	r.ui.Debugf("## template %s (%s)\n", location.identifier, location.path)

	if tpl.doc.Empty || tpl.doc.Tree == nil {
		return orderedmap.NewMap(), location, nil
	}

	switch typedTree := tpl.doc.Tree.(type) {
	case *orderedmap.Map:
		expanded, err := r.resolveMapping(typedTree, ref, sc, e, location)
		return expanded, location, err

	case []interface{}:
		// no declarations to check; whatever the caller passes is visible
		provided, err := r.providedParameters(ref, sc, e, location)
		if err != nil {
			return nil, location, err
		}
		child := sc.ForTemplate(scope.TemplateFrame{
			Identifier:        location.identifier,
			Parameters:        provided,
			ParameterMap:      map[string]formatting.Path{},
			Variables:         sc.Variables,
			BaseDir:           filepath.Dir(location.path),
			RepositoryBaseDir: location.repositoryBaseDir,
		})
		expanded, err := e.Expand(typedTree, child)
		return expanded, location, err

	default:
		return nil, location, ParseError{
			Identifier: location.identifier,
			Err:        fmt.Errorf("Expected template to be a mapping or a sequence, but was %T", tpl.doc.Tree),
			Stack:      stack.with(location.identifier),
		}
	}
}

func (r *Resolver) resolveMapping(docMap *orderedmap.Map, ref *orderedmap.Map, sc *scope.Scope,
	e *expand.Expander, location templateLocation) (*orderedmap.Map, error) {

	stack := CallStack(sc.TemplateStack)

	rawDecls, _ := docMap.Get("parameters")
	decls, err := ExtractParameters(rawDecls)
	if err != nil {
		return nil, ParseError{Identifier: location.identifier, Err: err, Stack: stack.with(location.identifier)}
	}

	provided, err := r.providedParameters(ref, sc, e, location)
	if err != nil {
		return nil, err
	}

	err = decls.Validate(location.identifier, provided, stack.with(location.identifier))
	if err != nil {
		return nil, err
	}

	params := decls.Defaults()
	paramPaths := map[string]formatting.Path{}
	for name, path := range decls.Paths {
		paramPaths[name] = path
	}
	provided.Iterate(func(k string, v interface{}) {
		params.Set(k, v)
		// the value's quote style was recorded where the caller wrote it
		paramPaths[k] = sc.ExpansionPath.Append("parameters", k)
	})

	variables := sc.Variables
	if isStepsOnly(docMap) {
		variables = sc.HostVariables
	}

	child := sc.ForTemplate(scope.TemplateFrame{
		Identifier:        location.identifier,
		Parameters:        params,
		ParameterMap:      paramPaths,
		Variables:         variables,
		BaseDir:           filepath.Dir(location.path),
		RepositoryBaseDir: location.repositoryBaseDir,
	})

	body := docMap.Copy()
	body.Delete("parameters")

	return e.ExpandMapping(body, child)
}

func (r *Resolver) providedParameters(ref *orderedmap.Map, sc *scope.Scope,
	e *expand.Expander, location templateLocation) (*orderedmap.Map, error) {

	raw, found := ref.Get("parameters")
	if !found || raw == nil {
		return orderedmap.NewMap(), nil
	}

	expanded, err := e.ExpandPreservingTemplates(raw, sc.At("parameters"))
	if err != nil {
		return nil, err
	}
	switch typedExpanded := expanded.(type) {
	case nil:
		return orderedmap.NewMap(), nil
	case *orderedmap.Map:
		return typedExpanded, nil
	default:
		return nil, ParseError{
			Identifier: location.identifier,
			Err:        fmt.Errorf("Expected parameters to be a mapping, but was %T", expanded),
			Stack:      CallStack(sc.TemplateStack).with(location.identifier),
		}
	}
}

func (r *Resolver) load(location templateLocation, stack CallStack) (*loadedTemplate, error) {
	if tpl, found := r.loaded[location.path]; found {
		return tpl, nil
	}

	data, err := r.fs.ReadFile(location.path)
	if err != nil {
		return nil, fmt.Errorf("Reading template '%s': %s%s", location.identifier, err, stack.suffix())
	}

	doc, err := yamlmeta.ParseBytes(data, location.identifier)
	if err != nil {
		return nil, ParseError{Identifier: location.identifier, Err: err, Stack: stack.with(location.identifier)}
	}

	tpl := &loadedTemplate{doc: doc, table: formatting.NewTable()}
	if doc.Node != nil {
		tpl.table.Capture(doc.Node)
	}

	r.loaded[location.path] = tpl
	r.loadedFiles = append(r.loadedFiles, location.path)
	return tpl, nil
}

func (r *Resolver) mergeFormatting(table *formatting.Table, path string, captured *formatting.Table) {
	if table == nil {
		return
	}
	seen, found := r.merged[table]
	if !found {
		seen = map[string]bool{}
		r.merged[table] = seen
	}
	if seen[path] {
		return
	}
	table.Merge(captured)
	seen[path] = true
}

func isStepsOnly(docMap *orderedmap.Map) bool {
	if !docMap.Has("steps") {
		return false
	}
	for _, key := range templateKinds {
		if docMap.Has(key) {
			return false
		}
	}
	return true
}

func extractBody(expanded *orderedmap.Map) []interface{} {
	for _, key := range bodyKeys {
		val, found := expanded.Get(key)
		if !found {
			continue
		}
		var items []interface{}
		switch typedVal := val.(type) {
		case []interface{}:
			items = typedVal
		case nil:
			items = []interface{}{}
		default:
			items = []interface{}{typedVal}
		}
		if key == "variables" {
			return normalizeVariables(items)
		}
		return items
	}

	for _, key := range expanded.Keys() {
		if key != "parameters" {
			return []interface{}{expanded}
		}
	}
	return []interface{}{}
}

// normalizeVariables rewrites {name: value} shorthand entries into
// name/value pairs.
func normalizeVariables(items []interface{}) []interface{} {
	result := make([]interface{}, 0, len(items))
	for _, item := range items {
		entry, ok := item.(*orderedmap.Map)
		if !ok || entry.Len() != 1 || entry.Has("name") || entry.Has("group") || entry.Has("template") {
			result = append(result, item)
			continue
		}
		only := entry.Items()[0]
		result = append(result, orderedmap.NewMapWithItems([]orderedmap.MapItem{
			{Key: "name", Value: only.Key},
			{Key: "value", Value: only.Value},
		}))
	}
	return result
}

func trimRelative(path string) string {
	return strings.TrimPrefix(filepath.FromSlash(path), string(filepath.Separator))
}
