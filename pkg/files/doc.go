// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files provides access to the file system the expander reads pipeline
documents and templates from, and writes results to.

Access goes through FS, a thin wrapper over an afero file system, so the same
code runs against the real disk and against in-memory fixtures.

A Source supplies the root document: a local file, standard input or raw
bytes. An OutputFile is a rendered result destined for disk.
*/
package files
