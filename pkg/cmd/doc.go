// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to pipeline-expand's "commands": instances of cobra.Command
(not to be confused with ./cmd which contains the bootstrapping for the binary).

The root command expands one document:

	$ pipeline-expand azure-pipelines.yml -p env=prod

"expand" is the same command as a subcommand, and "version" prints the version.
*/
package cmd
