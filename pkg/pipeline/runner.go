package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/cache"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/render"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it so caching logic exists once.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// cachedBuild is the cache payload of the build stage.
type cachedBuild struct {
	Graph graph.Data  `json:"graph"`
	Stats build.Stats `json:"stats"`
}

// Execute runs load → build → validate, then renders every requested format.
//
// With Strict set, duplicate declarations fail the run with
// DUPLICATE_DECLARATION before validation, and an invalid report fails it
// with INVALID_GRAPH. In the second case the Result is returned alongside
// the error so callers can still show the report.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	start := time.Now()
	records, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Timing.Load = time.Since(start)

	// Stage 2: Build
	start = time.Now()
	built, buildHit, err := r.BuildWithCacheInfo(ctx, records, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = built.Graph
	result.Stats = built.Stats
	result.Timing.Build = time.Since(start)
	result.CacheInfo.BuildHit = buildHit

	r.Logger.Info("built graph",
		"nodes", built.Stats.NodeCount,
		"edges", built.Stats.EdgeCount,
		"conflicts", len(built.Stats.Conflicts),
		"cached", buildHit,
		"duration", result.Timing.Build)

	if opts.Strict && len(built.Stats.Conflicts) > 0 {
		c := built.Stats.Conflicts[0]
		return nil, errors.New(errors.ErrCodeDuplicate,
			"%d duplicate declarations (first: %s in %s and %s)",
			len(built.Stats.Conflicts), c.FQN, c.DroppedFile, c.KeptFile)
	}

	data, err := graph.MarshalGraph(built.Graph)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	result.GraphHash = cache.Hash(data)

	// Stage 3: Validate
	start = time.Now()
	report, reportHit, err := r.validate(ctx, built.Graph, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Report = report
	result.Timing.Validate = time.Since(start)
	result.CacheInfo.ReportHit = reportHit

	r.Logger.Info("validated graph",
		"valid", report.IsValid,
		"cycles", len(report.CircularDependencies),
		"orphans", len(report.OrphanedNodes),
		"components", report.SubgraphCount,
		"duration", result.Timing.Validate)

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		start = time.Now()
		artifacts, renderHit, err := r.render(ctx, built.Graph, result.GraphHash, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Timing.Render = time.Since(start)
		result.CacheInfo.RenderHit = renderHit

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Timing.Render)
	}

	if opts.Strict && !report.IsValid {
		return result, errors.New(errors.ErrCodeInvalidGraph,
			"%d multiple inheritance cases, %d cycles",
			len(report.MultipleInheritance), len(report.CircularDependencies))
	}
	return result, nil
}

// Load returns opts.Records when set, otherwise reads every record file
// reachable from opts.Inputs.
func (r *Runner) Load(ctx context.Context, opts Options) ([]source.Record, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Records != nil {
		return opts.Records, nil
	}

	paths, err := source.ExpandPaths(opts.Inputs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no record files found in %v", opts.Inputs)
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, len(paths))
	start := time.Now()
	records, err := source.LoadFiles(ctx, paths, opts.Concurrency)
	hooks.OnLoadComplete(ctx, len(records), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded records", "files", len(paths), "records", len(records))
	return records, nil
}

// BuildWithCacheInfo builds the graph with caching and returns cache hit info.
// Builds are keyed by the hash of the record input and the build options.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, records []source.Record, opts Options) (*build.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	inputHash, err := cache.HashJSON(records)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.BuildKey(inputHash, opts.BuildKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit := r.get(ctx, "build", cacheKey); hit {
			var cached cachedBuild
			if err := json.Unmarshal(data, &cached); err == nil {
				return &build.Result{Graph: graph.Import(cached.Graph), Stats: cached.Stats}, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(records))
	built := build.NewBuilder(opts.BuildOptions()).Build(records)
	hooks.OnBuildComplete(ctx, summarize(built.Stats), built.Stats.BuildTime, nil)

	if data, err := json.Marshal(cachedBuild{Graph: graph.Export(built.Graph), Stats: built.Stats}); err == nil {
		r.set(ctx, "build", cacheKey, data)
	}
	return built, false, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Build(ctx context.Context, records []source.Record, opts Options) (*build.Result, error) {
	built, _, err := r.BuildWithCacheInfo(ctx, records, opts)
	return built, err
}

// ValidateWithCacheInfo validates g with caching and returns cache hit info.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*validate.Report, bool, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("hash graph: %w", err)
	}
	return r.validate(ctx, g, cache.Hash(data), opts)
}

// Validate is a convenience wrapper that calls ValidateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Validate(ctx context.Context, g *graph.Graph, opts Options) (*validate.Report, error) {
	report, _, err := r.ValidateWithCacheInfo(ctx, g, opts)
	return report, err
}

func (r *Runner) validate(ctx context.Context, g *graph.Graph, graphHash string, opts Options) (*validate.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.ReportKey(graphHash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if data, hit := r.get(ctx, "report", cacheKey); hit {
			var report validate.Report
			if err := json.Unmarshal(data, &report); err == nil {
				return &report, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnValidateStart(ctx, g.NodeCount())
	start := time.Now()
	report, err := validate.ValidateContext(ctx, g, opts.ValidateOptions())
	valid := err == nil && report.IsValid
	hooks.OnValidateComplete(ctx, valid, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(report); err == nil {
		r.set(ctx, "report", cacheKey, data)
	}
	return report, false, nil
}

// RenderWithCacheInfo renders g in every format of opts.Formats with caching
// and returns whether all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("hash graph: %w", err)
	}
	return r.render(ctx, g, cache.Hash(data), opts)
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, g *graph.Graph, graphHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(graphHash, opts.RenderKeyOpts(format))
		if !opts.Refresh {
			if data, hit := r.get(ctx, "render", cacheKey); hit {
				artifacts[format] = data
				continue
			}
		}
		allCached = false

		data, err := render.Render(ctx, g, format, opts.Render)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = data
		r.set(ctx, "render", cacheKey, data)
	}
	return artifacts, allCached && len(opts.Formats) > 0, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads a cache entry. Backend errors count as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func summarize(s build.Stats) observability.BuildSummary {
	return observability.BuildSummary{
		Nodes:     s.NodeCount,
		Edges:     s.EdgeCount,
		Missing:   s.Dependencies.Total.Missing,
		Circular:  s.Dependencies.Total.Circular,
		Conflicts: len(s.Conflicts),
	}
}
