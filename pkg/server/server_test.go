package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/pipeline"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/store"
)

const recordsJSON = `[
  {"declaration": {"name": "User", "fullyQualifiedName": "App\\User", "kind": "class"},
   "dependencies": [{"sourceFQN": "App\\User", "targetFQN": "App\\Model", "kind": "extends"}]},
  {"declaration": {"name": "Model", "fullyQualifiedName": "App\\Model", "kind": "class", "isAbstract": true}},
  {"declaration": {"name": "Loggable", "fullyQualifiedName": "App\\Loggable", "kind": "trait"}}
]`

func newTestServer(t *testing.T, withResult bool) (*Server, *httptest.Server) {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cfg := Config{Runner: runner, Store: st, Logger: logger}
	if withResult {
		records, err := source.ReadRecords(strings.NewReader(recordsJSON))
		if err != nil {
			t.Fatal(err)
		}
		res, err := runner.Execute(context.Background(), pipeline.Options{Records: records})
		if err != nil {
			t.Fatal(err)
		}
		cfg.Result = res
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, false)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" || got.Version == "" {
		t.Errorf("health = %+v", got)
	}
}

func TestGraphEndpoints(t *testing.T) {
	_, ts := newTestServer(t, true)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/api/graph", "application/json", `"App\\User->App\\Model"`},
		{"/api/stats", "application/json", `"nodeCount":3`},
		{"/api/report", "application/json", `"orphanedNodes":["App\\Loggable"]`},
		{"/api/graph.dot", "text/vnd.graphviz", "digraph G {"},
		{"/api/graph.dot?rankdir=lr", "text/vnd.graphviz", "rankdir=LR;"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, ts.URL+tt.path, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, body)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	_, empty := newTestServer(t, false)
	_, full := newTestServer(t, true)

	tests := []struct {
		name   string
		method string
		url    string
		status int
		code   string
	}{
		{"no graph", http.MethodGet, empty.URL + "/api/graph", http.StatusNotFound, "NOT_FOUND"},
		{"bad rankdir", http.MethodGet, full.URL + "/api/graph.dot?rankdir=up", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad highlight", http.MethodGet, full.URL + "/api/graph.dot?highlight=all", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad snapshot id", http.MethodGet, full.URL + "/api/snapshots/nope", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing snapshot", http.MethodGet, full.URL + "/api/snapshots/6f1c3f0e-8d1a-4b7e-9c55-0a3e7d2b4f10", http.StatusNotFound, "SNAPSHOT_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, tt.url, "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			var e errorBody
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatal(err)
			}
			if string(e.Code) != tt.code || e.Error == "" {
				t.Errorf("error body = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestBuildEndpoint(t *testing.T) {
	srv, ts := newTestServer(t, false)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/build", recordsJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"isValid":true`) {
		t.Errorf("build response: %s", body)
	}
	if res := srv.Result(); res == nil || res.Graph.NodeCount() != 3 {
		t.Fatal("posted build is not served")
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/build", `{"not": "an array"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	_, ts := newTestServer(t, true)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/snapshots?name=nightly", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d: %s", resp.StatusCode, body)
	}
	var saved store.Summary
	if err := json.Unmarshal(body, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Name != "nightly" || saved.NodeCount != 3 {
		t.Errorf("saved = %+v", saved)
	}

	_, body = do(t, http.MethodGet, ts.URL+"/api/snapshots", "")
	var list []store.Summary
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != saved.ID {
		t.Errorf("list = %+v", list)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/api/snapshots/"+saved.ID, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"App\\User->App\\Model"`) {
		t.Errorf("get = %d: %s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/snapshots/"+saved.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/snapshots/"+saved.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d", resp.StatusCode)
	}
}

func TestNoStore(t *testing.T) {
	srv, err := New(Config{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/snapshots"},
		{http.MethodPost, "/api/build"},
	} {
		resp, _ := do(t, tt.method, ts.URL+tt.path, "[]")
		if resp.StatusCode != http.StatusNotImplemented {
			t.Errorf("%s %s = %d, want 501", tt.method, tt.path, resp.StatusCode)
		}
	}
}

func TestSVGCache(t *testing.T) {
	srv, ts := newTestServer(t, true)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/graph.svg", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "<svg") {
		t.Fatalf("not an svg: %.80s", body)
	}
	if srv.svgs.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", srv.svgs.Len())
	}
	do(t, http.MethodGet, ts.URL+"/api/graph.svg", "")
	if srv.svgs.Len() != 1 {
		t.Errorf("repeat request added an entry: %d", srv.svgs.Len())
	}
}

type recordingHooks struct {
	mu     sync.Mutex
	routes []string
}

func (h *recordingHooks) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestRequestHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	_, ts := newTestServer(t, true)
	do(t, http.MethodGet, ts.URL+"/api/snapshots/6f1c3f0e-8d1a-4b7e-9c55-0a3e7d2b4f10", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /api/snapshots/{id}" {
		t.Errorf("routes = %v", hooks.routes)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, false)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/graph", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestSVGConcurrentRequests(t *testing.T) {
	srv, ts := newTestServer(t, true)

	const clients = 8
	var wg sync.WaitGroup
	bodies := make([]string, clients)
	errs := make([]error, clients)
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(ts.URL + "/api/graph.svg?rankdir=LR")
			if err != nil {
				errs[i] = err
				return
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			bodies[i], errs[i] = string(data), err
		}()
	}
	wg.Wait()

	for i := range clients {
		if errs[i] != nil {
			t.Fatalf("client %d: %v", i, errs[i])
		}
		if bodies[i] != bodies[0] || !strings.Contains(bodies[i], "<svg") {
			t.Errorf("client %d got a different or empty SVG", i)
		}
	}
	if n := srv.svgs.Len(); n != 1 {
		t.Errorf("cached renders = %d, want 1", n)
	}
}
