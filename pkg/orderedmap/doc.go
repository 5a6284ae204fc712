// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides the insertion-ordered mapping used for every
pipeline document tree. Mapping key order is significant for pipeline
output, so plain Go maps are only used at the edges (decoded overrides).
*/
package orderedmap
