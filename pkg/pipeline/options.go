// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
)

// Options is everything a caller can supply for one expansion.
type Options struct {
	// Parameters override the root document's parameter defaults.
	Parameters *orderedmap.Map
	// Variables are host variables visible to every expression.
	Variables *orderedmap.Map
	// Resources is a resources block merged over the document's own.
	Resources interface{}
	Locals    *orderedmap.Map

	BaseDir           string
	FileName          string
	RepositoryBaseDir string
	// ResourceLocations maps repository aliases to local directories.
	ResourceLocations map[string]string

	AzureCompatible bool
	TemplateStack   []string

	FS files.FS
	UI files.UI
}

type Result struct {
	// Tree is the expanded document before printing.
	Tree interface{}
	YAML string
	// Scope is the root scope after expansion, including the quote
	// style table.
	Scope       *scope.Scope
	LoadedFiles []string
}
