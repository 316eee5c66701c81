package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line. It implements
// PipelineHooks, CacheHooks and ServerHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) done(msg string, duration time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", duration.Round(time.Microsecond))
	if err != nil {
		h.logger.Warn(msg+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, files int) {
	h.logger.Debug("loading records", "files", files)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, records int, d time.Duration, err error) {
	h.done("loaded records", d, err, "records", records)
}

func (h *LogHooks) OnBuildStart(_ context.Context, records int) {
	h.logger.Debug("building graph", "records", records)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, s BuildSummary, d time.Duration, err error) {
	h.done("built graph", d, err,
		"nodes", s.Nodes, "edges", s.Edges, "missing", s.Missing,
		"circular", s.Circular, "conflicts", s.Conflicts)
}

func (h *LogHooks) OnValidateStart(_ context.Context, nodes int) {
	h.logger.Debug("validating graph", "nodes", nodes)
}

func (h *LogHooks) OnValidateComplete(_ context.Context, valid bool, d time.Duration, err error) {
	h.done("validated graph", d, err, "valid", valid)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("rendering", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, bytes int, d time.Duration, err error) {
	h.done("rendered", d, err, "format", format, "bytes", bytes)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("request", "method", method, "route", route, "status", status,
		"duration", d.Round(time.Microsecond))
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
