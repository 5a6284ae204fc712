// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of
pipeline-expand.

Packages are layered so that each one depends on the others only to the degree
required. In the inventory below, each package is named alongside its coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

# Entry Point

pipeline-expand is built into one executable:

	./cmd/pipeline-expand      // a command-line tool

# Commands

The root command expands a single document; "version" prints the version.
Configuration comes from flags, an overrides file and a config file.

	(1) => pkg/cmd => (3)
	(2) => pkg/cmd/expand => (8)
	(1) => pkg/config => (0)
	(1) => pkg/watch => (0)

# The Driver

A document is parsed, expanded in a root scope, canonicalized, rebuilt as a
YAML node tree, given back its original quoting and printed.

	(1) => pkg/pipeline => (10)

# Expansion

Directives (conditionals, loops, insert and interpolation) are expanded by
walking the plain value tree. Template references are handed to the resolver,
which locates the file (possibly in another repository), validates parameters
and expands the template in its own scope.

	(2) => pkg/expand => (4)
	(1) => pkg/templates => (7)
	(3) => pkg/scope => (4)
	(2) => pkg/resources => (2)

# Expressions

The ${{ }} expression language: lexer, parser, evaluator and built-in
functions.

	(7) => pkg/expr => (1)

# YAML Structures

Parsing delegates to https://github.com/go-yaml/yaml/tree/v3 and keeps its node
tree, which carries the quote and block styles the formatting table records.

	(3) => pkg/yamlmeta => (3)
	(4) => pkg/formatting => (1)
	(1) => pkg/yamlfmt => (0)

# Utilities

	(8) => pkg/orderedmap => (0)
	(4) => pkg/files => (0)
	(2) => pkg/cmd/ui => (1)
	(2) => pkg/version => (0)
	(1) => pkg/filepos => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/cmd/expand
	- pkg/cmd/ui
	- pkg/version
	pkg/cmd/expand:
	- pkg/pipeline
	- pkg/config
	- pkg/watch
	- pkg/version
	- pkg/files
	- pkg/cmd/ui
	- pkg/orderedmap
	- pkg/yamlmeta
	pkg/cmd/ui:
	- pkg/files
	pkg/pipeline:
	- pkg/templates
	- pkg/expand
	- pkg/scope
	- pkg/resources
	- pkg/formatting
	- pkg/yamlfmt
	- pkg/yamlmeta
	- pkg/expr
	- pkg/files
	- pkg/orderedmap
	pkg/templates:
	- pkg/expand
	- pkg/scope
	- pkg/formatting
	- pkg/yamlmeta
	- pkg/expr
	- pkg/files
	- pkg/orderedmap
	pkg/expand:
	- pkg/scope
	- pkg/formatting
	- pkg/expr
	- pkg/orderedmap
	pkg/scope:
	- pkg/resources
	- pkg/formatting
	- pkg/expr
	- pkg/orderedmap
	pkg/resources:
	- pkg/expr
	- pkg/orderedmap
	pkg/yamlmeta:
	- pkg/expr
	- pkg/filepos
	- pkg/orderedmap
	pkg/formatting:
	- pkg/expr
	pkg/expr:
	- pkg/orderedmap
*/
package pkg
