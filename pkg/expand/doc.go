// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package expand rewrites a parsed pipeline tree into one without ${{ }}
directives.

Mapping keys select conditional branches (if, elseif, else), repeat a body
per collection item (each) or splice a mapping into its parent (insert).
Whole-value expressions keep the type of their result and any other
string is interpolated. Template references are handed to a
TemplateResolver. After a mapping is expanded, step shorthands and a few
shape variations are rewritten into their canonical form.
*/
package expand
