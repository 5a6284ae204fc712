// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expr"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/formatting"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/resources"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/templates"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlfmt"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlmeta"
)

const defaultFileName = "azure-pipelines.yml"

// ExpandFile reads the document at path and expands it.
func ExpandFile(path string, opts Options) (Result, error) {
	return ExpandSource(files.NewLocalSource(path, opts.FS), opts)
}

// ExpandSource expands the document src supplies. Unless opts names the
// document, the source path is used for relative template lookups.
func ExpandSource(src files.Source, opts Options) (Result, error) {
	data, err := src.Bytes()
	if err != nil {
		return Result{}, err
	}
	if opts.FileName == "" {
		opts.FileName = src.Path()
	}
	return Expand(data, opts)
}

// Expand expands a pipeline document and prints it.
func Expand(data []byte, opts Options) (Result, error) {
	startTime := time.Now()

	ui := opts.UI
	if ui == nil {
		ui = files.NoopUI{}
	}

	name := opts.FileName
	if name == "" {
		name = defaultFileName
	}
	identifier := filepath.Base(name)

	doc, err := yamlmeta.ParseBytes(data, identifier)
	if err != nil {
		return Result{}, err
	}
	if doc.Empty || doc.Tree == nil {
		return Result{YAML: yamlfmt.TouchUp("", opts.AzureCompatible)}, nil
	}

	table := formatting.Capture(doc.Node)

	sc, err := rootScope(doc, table, opts, identifier)
	if err != nil {
		return Result{}, err
	}

	resolver := templates.NewResolver(opts.FS, ui)
	expander := expand.NewExpander(expr.NewEvaluator(nil), resolver)

	tree, err := expandRoot(doc.Tree, sc, resolver, expander)
	if err != nil {
		return Result{}, err
	}
	ui.Debugf("expanded: %s\n", time.Since(startTime))

	node := yamlmeta.NewDocumentNode(tree)
	formatting.Restore(table, node, formatting.RestoreOpts{Compat: opts.AzureCompatible})

	out, err := yamlfmt.NewPrinter(yamlfmt.PrinterOpts{Compat: opts.AzureCompatible}).PrintStr(node)
	if err != nil {
		return Result{}, err
	}

	ui.Debugf("total: %s\n", time.Since(startTime))

	return Result{
		Tree:        tree,
		YAML:        out,
		Scope:       sc,
		LoadedFiles: resolver.LoadedFiles(),
	}, nil
}

func rootScope(doc *yamlmeta.Document, table *formatting.Table, opts Options, identifier string) (*scope.Scope, error) {
	sc := scope.New()
	sc.Formatting = table

	root, _ := doc.Tree.(*orderedmap.Map)

	rawDecls, _ := root.Get("parameters")
	decls, err := templates.ExtractParameters(rawDecls)
	if err != nil {
		return nil, fmt.Errorf("Reading parameters of '%s': %s", identifier, err)
	}

	provided := opts.Parameters
	if provided == nil {
		provided = orderedmap.NewMap()
	}
	err = decls.Validate(identifier, provided, templates.CallStack{identifier})
	if err != nil {
		return nil, err
	}

	sc.Parameters = decls.Defaults()
	provided.Iterate(func(k string, v interface{}) { sc.Parameters.Set(k, v) })
	sc.ParameterMap = decls.Paths

	if opts.Variables != nil {
		sc.Variables = opts.Variables.Copy()
		sc.HostVariables = opts.Variables.Copy()
	}
	if opts.Locals != nil {
		sc.Locals = opts.Locals.Copy()
	}

	rawResources, _ := root.Get("resources")
	sc.Resources, err = resources.Normalize(rawResources)
	if err != nil {
		return nil, err
	}
	if opts.Resources != nil {
		overrides, err := resources.Normalize(opts.Resources)
		if err != nil {
			return nil, fmt.Errorf("Reading resource overrides: %s", err)
		}
		sc.Resources, err = resources.Merge(sc.Resources, overrides)
		if err != nil {
			return nil, err
		}
	}

	sc.BaseDir, err = baseDir(opts)
	if err != nil {
		return nil, err
	}
	sc.RepositoryBaseDir = opts.RepositoryBaseDir
	if sc.RepositoryBaseDir == "" {
		sc.RepositoryBaseDir = sc.BaseDir
	}
	for alias, location := range opts.ResourceLocations {
		sc.ResourceLocations[alias] = location
	}

	sc.TemplateStack = append([]string{}, opts.TemplateStack...)
	if len(sc.TemplateStack) == 0 {
		sc.TemplateStack = []string{identifier}
	}
	return sc, nil
}

func baseDir(opts Options) (string, error) {
	switch {
	case opts.BaseDir != "":
		return filepath.Abs(opts.BaseDir)
	case opts.FileName != "":
		abs, err := filepath.Abs(opts.FileName)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	default:
		return os.Getwd()
	}
}

// expandRoot expands the document body. The parameters block is dropped
// and an extends template contributes its keys after the document's own.
func expandRoot(tree interface{}, sc *scope.Scope, resolver *templates.Resolver, expander *expand.Expander) (interface{}, error) {
	root, ok := tree.(*orderedmap.Map)
	if !ok {
		return expander.Expand(tree, sc)
	}

	body := root.Copy()
	body.Delete("parameters")

	rawExtends, hasExtends := body.Get("extends")
	body.Delete("extends")

	result, err := expander.ExpandMapping(body, sc)
	if err != nil {
		return nil, err
	}

	if !hasExtends {
		return result, nil
	}
	extends, ok := rawExtends.(*orderedmap.Map)
	if !ok || !extends.Has("template") {
		return nil, fmt.Errorf("Expected extends to be a mapping with a template key, but was %T", rawExtends)
	}

	rootVars, _ := result.Get("variables")
	extended, err := resolver.ResolveDocument(extends, sc.WithVariables(expand.VariablesToMap(rootVars)).At("extends"), expander)
	if err != nil {
		return nil, err
	}
	extended.Iterate(func(k string, v interface{}) {
		if !result.Has(k) {
			result.Set(k, v)
		}
	})
	return result, nil
}
