// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package watch notifies when any of a set of files changes, coalescing
bursts of writes into one notification.
*/
package watch
