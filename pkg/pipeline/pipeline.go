// Package pipeline runs the load → build → validate → render pipeline used by
// the CLI and the HTTP server.
//
// Centralizing the stages here keeps caching, logging and hook calls the same
// for every entry point.
//
// # Stages
//
//  1. Load: read record files (or take records already in memory) and merge
//     them in canonical order
//  2. Build: create the graph and its statistics
//  3. Validate: structural analysis of the graph
//  4. Render: optional DOT/SVG/PNG/PDF/JSON outputs
//
// Build, validate and render results are cached through a [cache.Cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Inputs:  []string{"declarations/"},
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Stages can also be run on their own:
//
//	records, err := runner.Load(ctx, opts)
//	built, err := runner.Build(ctx, records, opts)
//	report, err := runner.Validate(ctx, built.Graph, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/cache"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/render"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Inputs      []string        `json:"inputs,omitempty"`
	Records     []source.Record `json:"records,omitempty"` // used instead of Inputs when set
	Concurrency int             `json:"concurrency,omitempty"`

	// Build options
	Duplicates string `json:"duplicates,omitempty"`
	Strict     bool   `json:"strict,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`

	// Validate options
	MaxPathNodes int `json:"max_path_nodes,omitempty"`
	TopN         int `json:"top_n,omitempty"`

	// Render options
	Formats []string       `json:"formats,omitempty"`
	Render  render.Options `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built dependency graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph wire format.
	GraphHash string

	// Stats are the build statistics.
	Stats build.Stats

	// Report is the validation report.
	Report *validate.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Timing records how long each stage took.
	Timing Timing

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Timing contains per-stage durations.
type Timing struct {
	Load     time.Duration
	Build    time.Duration
	Validate time.Duration
	Render   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph and stats came from cache
	ReportHit bool // Whether the validation report came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Inputs) == 0 && o.Records == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no input files or records given")
	}
	for _, p := range o.Inputs {
		if p == "" {
			return errors.New(errors.ErrCodeInvalidPath, "input path cannot be empty")
		}
	}
	policy, err := build.ParseDuplicatePolicy(o.Duplicates)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "duplicates")
	}
	o.Duplicates = string(policy)
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "formats")
		}
	}
	if o.Concurrency <= 0 {
		o.Concurrency = source.DefaultConcurrency
	}
	if o.MaxPathNodes <= 1 {
		o.MaxPathNodes = validate.DefaultMaxPathNodes
	}
	if o.TopN <= 0 {
		o.TopN = validate.DefaultTopN
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// BuildOptions returns the builder options.
func (o *Options) BuildOptions() build.Options {
	return build.Options{Duplicates: build.DuplicatePolicy(o.Duplicates)}
}

// ValidateOptions returns the validator options.
func (o *Options) ValidateOptions() validate.Options {
	return validate.Options{MaxPathNodes: o.MaxPathNodes, TopN: o.TopN}
}

// BuildKeyOpts returns cache key options for the build stage.
func (o *Options) BuildKeyOpts() cache.BuildKeyOpts {
	return cache.BuildKeyOpts{Duplicates: o.Duplicates}
}

// ReportKeyOpts returns cache key options for the validate stage.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{MaxPathNodes: o.MaxPathNodes, TopN: o.TopN}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format: format,
		Layout: fmt.Sprintf("%s/%t/%t/%v", o.Render.RankDir, o.Render.Detailed, o.Render.Clusters, o.Render.Highlight),
	}
}
