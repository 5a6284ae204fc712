// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package templates resolves template references.

A reference names a file relative to the current template, or a file in
another repository with a trailing @alias. The referenced file is parsed
once per run, its declared parameters are checked against the ones the
caller passes and its body is expanded in a fresh scope. Failures carry
the chain of templates that led to them.
*/
package templates
