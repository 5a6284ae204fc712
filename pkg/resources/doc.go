// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package resources normalizes and merges resources blocks and resolves
repository aliases to local directories for cross-repository templates.
*/
package resources
