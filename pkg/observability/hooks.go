// Package observability lets a host program watch classgraph at work.
//
// The pipeline, the caches in front of it and the HTTP server report events
// to three hook sets. Each defaults to a no-op; the CLI installs [LogHooks]
// so --verbose shows stage timings and cache traffic. Other backends
// (metrics, tracing) plug in by implementing the interfaces:
//
//	observability.SetPipelineHooks(myMetrics)
//	defer observability.Reset()
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// BuildSummary is the part of the build statistics hooks receive.
type BuildSummary struct {
	Nodes     int
	Edges     int
	Missing   int
	Circular  int
	Conflicts int
}

// PipelineHooks observes the load, build, validate and render stages. Each
// Complete call follows its Start call on the same goroutine.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, files int)
	OnLoadComplete(ctx context.Context, records int, duration time.Duration, err error)

	OnBuildStart(ctx context.Context, records int)
	OnBuildComplete(ctx context.Context, summary BuildSummary, duration time.Duration, err error)

	OnValidateStart(ctx context.Context, nodes int)
	OnValidateComplete(ctx context.Context, valid bool, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, bytes int, duration time.Duration, err error)
}

// CacheHooks observes result cache lookups. keyType is the pipeline stage:
// "build", "report" or "render".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks observes HTTP requests after the response is written. route
// is the chi route pattern, not the raw path.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, int)                                    {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, int, time.Duration, error)           {}
func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                   {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, BuildSummary, time.Duration, error) {}
func (NoopPipelineHooks) OnValidateStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnValidateComplete(context.Context, bool, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// slot holds the installed implementation of one hook interface. Loads are
// lock-free since every pipeline stage and request reads it.
type slot[T any] struct {
	v   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }
func (s *slot[T]) reset()  { s.v.Store(nil) }

var (
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	serverSlot   = slot[ServerHooks]{def: NoopServerHooks{}}
)

// SetPipelineHooks installs h. A nil h leaves the current hooks in place.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs h. A nil h leaves the current hooks in place.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetServerHooks installs h. A nil h leaves the current hooks in place.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		serverSlot.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func Server() ServerHooks     { return serverSlot.get() }

// Reset reinstalls the no-op hooks. Tests that install hooks defer it.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	serverSlot.reset()
}
