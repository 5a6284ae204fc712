// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	cmdexpand "github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd/ui"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/version"
	"github.com/spf13/cobra"
)

type VersionOptions struct {
	expandOpts *cmdexpand.Options
}

func NewVersionOptions(expandOpts *cmdexpand.Options) *VersionOptions {
	return &VersionOptions{expandOpts}
}

func NewVersionCmd(o *VersionOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	return cmd
}

func (o *VersionOptions) Run() error {
	ui.NewCustomWriterTTY(false, o.expandOpts.Stdout, o.expandOpts.Stderr).
		Printf("pipeline-expand version %s\n", version.Version)

	return nil
}
