// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd"
	cmdexpand "github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd/expand"
	uierrs "github.com/cppforlife/go-cli-ui/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	opts := cmdexpand.NewOptions()
	command := cmd.NewPipelineExpandCmd(opts)

	err := command.ExecuteContext(ctx)
	stop()

	if err != nil {
		if opts.Debug {
			err = uierrs.NewMultiLineError(err)
		}
		fmt.Fprintf(os.Stderr, "Failed to expand pipeline: %s\n", err)
		os.Exit(1)
	}
}
