// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlmeta converts between YAML text and the plain value trees the
expander operates on.

Parsing keeps the yaml.v3 node tree next to the plain tree so quote and
block styles of the source can be read. Building goes the other way and
produces the node tree that is printed after expansion.
*/
package yamlmeta
