// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/cmd/ui"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/config"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/pipeline"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/version"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/watch"
	"github.com/spf13/cobra"
)

const stdinArg = "-"

type Options struct {
	Debug             bool
	AzureCompatible   bool
	BaseDir           string
	RepositoryBaseDir string
	OutputPath        string
	OverridesPath     string
	ConfigFile        string
	Watch             bool

	ParameterFlags ParameterFlags

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	flagChanged func(string) bool
}

func NewOptions() *Options {
	return &Options{}
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand FILE",
		Short: "Expand template expressions of a pipeline document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.flagChanged = cmd.Flags().Changed
			return o.Run(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	cmd.Flags().BoolVar(&o.AzureCompatible, "azure-compatible", false, "Format output the way the Azure DevOps expander does (boolean casing, blank lines, two trailing blank lines)")
	cmd.Flags().StringVar(&o.BaseDir, "base-dir", "", "Directory relative template paths resolve against (default: directory of FILE)")
	cmd.Flags().StringVar(&o.RepositoryBaseDir, "repository-base-dir", "", "Root of the repository containing FILE, used for '/'-prefixed and @self template paths")
	cmd.Flags().StringVarP(&o.OutputPath, "output", "o", "", "Write expanded YAML to file instead of stdout")
	cmd.Flags().StringVar(&o.OverridesPath, "overrides", "", "YAML, JSON or TOML file with parameters, variables, resources, locals and resourceLocations")
	cmd.Flags().StringVar(&o.ConfigFile, "config", "", "Config file (default: ./.pipeline-expand.yaml, then ~/.config/pipeline-expand/config.yaml)")
	cmd.Flags().BoolVar(&o.Watch, "watch", false, "Expand again whenever FILE or a template it loads changes")
	o.ParameterFlags.Set(cmd)
	return cmd
}

func (o *Options) Run(ctx context.Context, path string) error {
	if o.Watch && path == stdinArg {
		return fmt.Errorf("Watching requires a file argument instead of '-'")
	}

	cfg, err := config.Load(config.LoadOpts{ConfigFile: o.ConfigFile})
	if err != nil {
		return err
	}

	o.applyConfig(cfg)

	ui := ui.NewCustomWriterTTY(o.Debug, o.Stdout, o.Stderr)
	if cfg.FileUsed != "" {
		ui.Debugf("## config %s\n", cfg.FileUsed)
	}

	if cfg.RequireAtLeast != "" {
		err := version.RequireAtLeast(cfg.RequireAtLeast)
		if err != nil {
			return err
		}
	}

	opts, err := o.pipelineOptions(cfg, ui)
	if err != nil {
		return err
	}

	result, err := o.RunWithFile(path, opts, ui)
	if err != nil {
		return err
	}

	if !o.Watch {
		return nil
	}
	return o.watch(ctx, path, opts, result, cfg.WatchDebounce, ui)
}

// RunWithFile expands the document at path (or stdin for '-') and writes
// the result to the configured output.
func (o *Options) RunWithFile(path string, opts pipeline.Options, ui ui.UI) (pipeline.Result, error) {
	result, err := o.expand(path, opts)
	if err != nil {
		return result, err
	}

	if o.OutputPath == "" {
		ui.Printf("%s", result.YAML)
		return result, nil
	}

	err = files.NewOutputFile(o.OutputPath, []byte(result.YAML)).Create(opts.FS, "")
	if err != nil {
		return result, fmt.Errorf("Writing output file '%s': %s", o.OutputPath, err)
	}
	ui.Debugf("## wrote %s\n", o.OutputPath)

	return result, nil
}

func (o *Options) expand(path string, opts pipeline.Options) (pipeline.Result, error) {
	var src files.Source = files.NewLocalSource(path, opts.FS)
	if path == stdinArg {
		src = files.NewStdinSource()
	}
	return pipeline.ExpandSource(src, opts)
}

func (o *Options) watch(ctx context.Context, path string, opts pipeline.Options, result pipeline.Result, debounce time.Duration, ui ui.UI) error {
	w, err := watch.New(watch.Config{Paths: watchedPaths(path, result), Debounce: debounce})
	if err != nil {
		return err
	}
	defer w.Stop()

	onChange := w.Start()
	ui.Warnf("Watching %s for changes\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-onChange:
			ui.Debugf("## change detected\n")

			result, err := o.RunWithFile(path, opts, ui)
			if err != nil {
				ui.Warnf("Failed to expand pipeline: %s\n", err)
				continue
			}

			err = w.SetPaths(watchedPaths(path, result))
			if err != nil {
				ui.Warnf("%s\n", err)
			}
		}
	}
}

func watchedPaths(path string, result pipeline.Result) []string {
	return append([]string{path}, result.LoadedFiles...)
}

// applyConfig fills settings from the config file that were not given
// as flags.
func (o *Options) applyConfig(cfg config.Config) {
	changed := o.flagChanged
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if !changed("debug") {
		o.Debug = o.Debug || cfg.Debug
	}
	if !changed("azure-compatible") {
		o.AzureCompatible = o.AzureCompatible || cfg.AzureCompatible
	}
	if !changed("repository-base-dir") && o.RepositoryBaseDir == "" {
		o.RepositoryBaseDir = cfg.RepositoryBaseDir
	}
}

func (o *Options) pipelineOptions(cfg config.Config, ui ui.UI) (pipeline.Options, error) {
	fs := files.NewOSFS()

	opts := pipeline.Options{
		BaseDir:           o.BaseDir,
		RepositoryBaseDir: o.RepositoryBaseDir,
		AzureCompatible:   o.AzureCompatible,
		ResourceLocations: map[string]string{},
		FS:                fs,
		UI:                ui,
	}

	for alias, location := range cfg.ResourceLocations {
		opts.ResourceLocations[alias] = location
	}

	if o.OverridesPath != "" {
		overrides, err := LoadOverrides(o.OverridesPath, fs)
		if err != nil {
			return opts, err
		}
		opts.Parameters = overrides.Parameters
		opts.Variables = overrides.Variables
		opts.Locals = overrides.Locals
		opts.Resources = overrides.Resources
		for alias, location := range overrides.ResourceLocations {
			opts.ResourceLocations[alias] = location
		}
	}

	params, err := o.ParameterFlags.Parameters()
	if err != nil {
		return opts, err
	}
	opts.Parameters = mergeMaps(opts.Parameters, params)

	vars, err := o.ParameterFlags.VariablesMap()
	if err != nil {
		return opts, err
	}
	opts.Variables = mergeMaps(opts.Variables, vars)

	locations, err := o.ParameterFlags.ResourceLocationsMap()
	if err != nil {
		return opts, err
	}
	for alias, location := range locations {
		opts.ResourceLocations[alias] = location
	}

	return opts, nil
}
