// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package formatting carries quote and block scalar presentation from the
source document through expansion into the rendered output.

Capture records the style of every string scalar keyed by its normalized
structural path and content. Expansion adds entries when values move
(parameter substitution, step shorthand, variables reshaping). Restore then
walks the final document and applies the closest matching style. Missing
entries are never an error.
*/
package formatting
