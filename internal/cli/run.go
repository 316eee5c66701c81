package cli

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/pipeline"
)

// pipelineFlags are the flags shared by commands that run the pipeline.
// Zero values mean "use the configuration".
type pipelineFlags struct {
	duplicates  string
	strict      bool
	concurrency int
	maxPath     int
	top         int
	noCache     bool
	refresh     bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.duplicates, "duplicates", "", "duplicate FQN policy: last-wins or first-wins")
	fs.BoolVar(&f.strict, "strict", false, "fail on duplicate declarations and invalid graphs")
	fs.IntVarP(&f.concurrency, "concurrency", "j", 0, "parallel file readers")
	fs.IntVar(&f.maxPath, "max-path", 0, "longest path node limit")
	fs.IntVar(&f.top, "top", 0, "entries in path and connectivity rankings")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

// pipelineOptions merges the configuration with explicitly set flags.
func (c *CLI) pipelineOptions(cmd *cobra.Command, f *pipelineFlags, inputs []string) pipeline.Options {
	cfg := c.Config
	opts := pipeline.Options{
		Inputs:       inputs,
		Concurrency:  cfg.Build.Concurrency,
		Duplicates:   cfg.Build.Duplicates,
		Strict:       cfg.Build.Strict,
		MaxPathNodes: cfg.Validate.MaxPathNodes,
		TopN:         cfg.Validate.TopN,
		Refresh:      f.refresh,
		Logger:       c.Logger,
	}
	changed := cmd.Flags().Changed
	if changed("duplicates") {
		opts.Duplicates = f.duplicates
	}
	if changed("strict") {
		opts.Strict = f.strict
	}
	if changed("concurrency") {
		opts.Concurrency = f.concurrency
	}
	if changed("max-path") {
		opts.MaxPathNodes = f.maxPath
	}
	if changed("top") {
		opts.TopN = f.top
	}
	return opts
}

// runPipeline executes the pipeline behind a spinner. When the run fails
// strict validation the result is still returned alongside the error.
func (c *CLI) runPipeline(ctx context.Context, f *pipelineFlags, opts pipeline.Options) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	spin := c.startSpinner(ctx, "building graph")
	defer spin.Stop()

	watch := startStopwatch(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if result != nil {
		spin.Stop()
		watch.done("pipeline finished",
			"nodes", result.Graph.NodeCount(),
			"edges", result.Graph.EdgeCount(),
			"cached", result.CacheInfo.BuildHit)
	}
	return result, err
}

// startSpinner starts a spinner on stderr when it is an interactive
// terminal and verbose logging is off. Otherwise the spinner draws nowhere.
func (c *CLI) startSpinner(ctx context.Context, message string) *Spinner {
	var w io.Writer = io.Discard
	if !c.verbose && isatty.IsTerminal(os.Stderr.Fd()) {
		w = os.Stderr
	}
	s := newSpinner(ctx, w, message)
	s.Start()
	return s
}
