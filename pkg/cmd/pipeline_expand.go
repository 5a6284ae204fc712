// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	cmdexpand "github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

func NewPipelineExpandCmd(o *cmdexpand.Options) *cobra.Command {
	cmd := cmdexpand.NewCmd(o)

	cmd.Use = "pipeline-expand FILE"
	cmd.Version = version.Version
	cmd.Short = "pipeline-expand expands template expressions of Azure Pipelines YAML"
	cmd.Long = `pipeline-expand expands ${{ }} template expressions, conditionals, loops
and template references of an Azure Pipelines document into plain YAML.

Use '-' as FILE to read the document from stdin.`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions(o)))
	cmd.AddCommand(cmdexpand.NewCmd(cmdexpand.NewOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
