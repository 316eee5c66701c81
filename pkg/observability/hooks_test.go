package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, 2)
	p.OnLoadComplete(ctx, 10, time.Second, nil)
	p.OnBuildStart(ctx, 10)
	p.OnBuildComplete(ctx, BuildSummary{Nodes: 10}, time.Second, nil)
	p.OnValidateStart(ctx, 10)
	p.OnValidateComplete(ctx, true, time.Second, nil)
	p.OnRenderStart(ctx, "svg")
	p.OnRenderComplete(ctx, "svg", 1024, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "build")
	c.OnCacheMiss(ctx, "report")
	c.OnCacheSet(ctx, "build", 1024)

	NoopServerHooks{}.OnRequest(ctx, "GET", "/api/graph", 200, time.Millisecond)
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("default pipeline hooks = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("default cache hooks = %T", Cache())
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Errorf("default server hooks = %T", Server())
	}

	logHooks := NewLogHooks(log.New(&bytes.Buffer{}))
	SetPipelineHooks(logHooks)
	SetCacheHooks(logHooks)
	SetServerHooks(logHooks)
	if Pipeline() != PipelineHooks(logHooks) || Cache() != CacheHooks(logHooks) || Server() != ServerHooks(logHooks) {
		t.Error("installed hooks not returned")
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(logHooks) {
		t.Error("nil hooks replaced the installed ones")
	}

	Reset()
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Reset did not restore the no-op hooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnBuildComplete(ctx, BuildSummary{Nodes: 3, Edges: 2}, time.Millisecond, nil)
	h.OnValidateComplete(ctx, false, time.Millisecond, errors.New("boom"))
	h.OnCacheMiss(ctx, "build")

	out := buf.String()
	for _, want := range []string{"built graph", "nodes=3", "validated graph failed", "err=boom", "cache miss"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
