// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos locates YAML parse failures: the pipeline or template file a
decoder rejected and, when the decoder reports one, the line.
*/
package filepos
