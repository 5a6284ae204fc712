// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlfmt prints the final YAML node tree with two-space indentation
and applies the text touch-ups of the selected output convention.
*/
package yamlfmt
