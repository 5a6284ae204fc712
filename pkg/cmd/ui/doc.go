// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui writes command output: expanded YAML to stdout, warnings and
--debug traces to stderr.
*/
package ui
