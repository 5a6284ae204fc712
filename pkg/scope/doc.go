// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package scope holds the layered name environment used while expanding a
document: locals, parameters, variables and resources, plus bookkeeping
about where the expansion currently is (path, template call stack) and the
formatting table shared by one expansion run.
*/
package scope
