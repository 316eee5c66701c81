package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/store"
	"github.com/matzehuels/classgraph/pkg/validate"
)

const validRecords = `[
  {"declaration": {"name": "Base", "namespace": "App", "fullyQualifiedName": "App\\Base", "filePath": "src/Base.php", "kind": "class", "isAbstract": true}},
  {"declaration": {"name": "Shape", "namespace": "App", "fullyQualifiedName": "App\\Shape", "filePath": "src/Shape.php", "kind": "interface"}},
  {"declaration": {"name": "Circle", "namespace": "App", "fullyQualifiedName": "App\\Circle", "filePath": "src/Circle.php", "kind": "class"},
   "dependencies": [
     {"sourceFQN": "App\\Circle", "targetFQN": "App\\Base", "kind": "extends"},
     {"sourceFQN": "App\\Circle", "targetFQN": "App\\Shape", "kind": "implements"},
     {"sourceFQN": "App\\Circle", "targetFQN": "Vendor\\Math", "kind": "use"}
   ]}
]`

const multipleInheritance = `[
  {"declaration": {"name": "A", "fullyQualifiedName": "A", "kind": "class"},
   "dependencies": [
     {"sourceFQN": "A", "targetFQN": "B", "kind": "extends"},
     {"sourceFQN": "A", "targetFQN": "C", "kind": "extends"}
   ]},
  {"declaration": {"name": "B", "fullyQualifiedName": "B", "kind": "class"}},
  {"declaration": {"name": "C", "fullyQualifiedName": "C", "kind": "class"}}
]`

// workspace is a temp directory with a config that keeps the cache and
// snapshot store inside it.
type workspace struct {
	t      *testing.T
	dir    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	t.Cleanup(observability.Reset)
	dir := t.TempDir()
	ws := &workspace{t: t, dir: dir, config: filepath.Join(dir, "classgraph.toml")}
	ws.write("classgraph.toml", `
[cache]
backend = "file"
dir = "`+filepath.ToSlash(filepath.Join(dir, "cache"))+`"

[store]
backend = "file"
dir = "`+filepath.ToSlash(filepath.Join(dir, "snapshots"))+`"
`)
	return ws
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) write(name, body string) string {
	w.t.Helper()
	p := w.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		w.t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		w.t.Fatal(err)
	}
	return p
}

// run executes the root command and returns its standard output.
func (w *workspace) run(args ...string) (string, error) {
	w.t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", w.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/app.json", validRecords)
	out := ws.path("graph.json")
	stats := ws.path("stats.json")

	stdout, err := ws.run("build", records, "-o", out, "--stats", stats)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(stdout, "Built graph") || !strings.Contains(stdout, "3 nodes") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "built in ") || strings.Contains(stdout, "%!") {
		t.Errorf("build time not formatted:\n%s", stdout)
	}

	g, err := graph.ReadGraphFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 3 || !g.HasEdge(`App\Circle`, `App\Base`) {
		t.Errorf("graph has %d nodes, edges %v", g.NodeCount(), g.Edges())
	}

	data, err := os.ReadFile(stats)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), `{`) || !strings.Contains(string(data), `"missing": 1`) {
		t.Errorf("stats file = %s", data)
	}

	// The second run is served from the cache.
	stdout, err = ws.run("build", records, "-o", out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, iconCached) {
		t.Errorf("second build not cached:\n%s", stdout)
	}
}

func TestBuildStrictDuplicates(t *testing.T) {
	ws := newWorkspace(t)
	ws.write("records/a.json", `[{"declaration": {"name": "A", "fullyQualifiedName": "A", "filePath": "a.php", "kind": "class"}}]`)
	ws.write("records/b.json", `[{"declaration": {"name": "A", "fullyQualifiedName": "A", "filePath": "b.php", "kind": "class"}}]`)

	_, err := ws.run("build", ws.path("records"), "-o", ws.path("graph.json"), "--strict", "--no-cache")
	if !errors.Is(err, errors.ErrCodeDuplicate) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeDuplicate)
	}

	stdout, err := ws.run("build", ws.path("records"), "-o", ws.path("graph.json"), "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "1 duplicate declarations") {
		t.Errorf("conflict not reported:\n%s", stdout)
	}
}

func TestValidateCommand(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/app.json", validRecords)

	stdout, err := ws.run("validate", records, "--json", "--no-cache")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var report validate.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if !report.IsValid || report.SubgraphCount != 1 {
		t.Errorf("report = %+v", report)
	}

	stdout, err = ws.run("validate", records, "--no-cache", "-o", ws.path("report.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"graph is valid", "Most connected", `App\Circle`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(ws.path("report.json")); err != nil {
		t.Errorf("report file: %v", err)
	}
}

func TestValidateStrict(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/mi.json", multipleInheritance)

	stdout, err := ws.run("validate", records, "--no-cache")
	if err != nil {
		t.Fatalf("non-strict validate: %v", err)
	}
	if !strings.Contains(stdout, "Multiple inheritance") {
		t.Errorf("output missing inheritance table:\n%s", stdout)
	}

	if _, err := ws.run("validate", records, "--strict", "--no-cache"); !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("strict err = %v, want %s", err, errors.ErrCodeInvalidGraph)
	}
}

func TestValidateGraphFile(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/mi.json", multipleInheritance)
	out := ws.path("graph.json")
	if _, err := ws.run("build", records, "-o", out, "-q"); err != nil {
		t.Fatal(err)
	}

	stdout, err := ws.run("validate", "--graph", out, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var report validate.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatal(err)
	}
	if report.IsValid || len(report.MultipleInheritance) != 1 {
		t.Errorf("report = %+v", report)
	}

	if _, err := ws.run("validate"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no input: err = %v", err)
	}
}

func TestRenderCommand(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/app.json", validRecords)
	base := ws.path("out/graph")
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		t.Fatal(err)
	}

	stdout, err := ws.run("render", records, "-f", "dot,json", "-o", base, "--clusters", "--rankdir", "lr")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "digraph G {") || !strings.Contains(string(dot), "rankdir=LR") {
		t.Errorf("dot output:\n%s", dot)
	}
	if _, err := graph.ReadGraphFile(base + ".json"); err != nil {
		t.Errorf("json output: %v", err)
	}
	if !strings.Contains(stdout, base+".dot") {
		t.Errorf("output paths not listed:\n%s", stdout)
	}
}

func TestRenderFlagErrors(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/app.json", validRecords)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no input", []string{"render"}, errors.ErrCodeInvalidInput},
		{"bad format", []string{"render", records, "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"bad rankdir", []string{"render", records, "--rankdir", "up"}, errors.ErrCodeInvalidInput},
		{"bad highlight", []string{"render", records, "--highlight", "all"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ws.run(tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSnapshotCommands(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/app.json", validRecords)

	if _, err := ws.run("snapshot", "save", records, "--name", "nightly"); err != nil {
		t.Fatalf("save: %v", err)
	}

	st, err := store.NewFileStore(ws.path("snapshots"))
	if err != nil {
		t.Fatal(err)
	}
	list, err := st.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	id := list[0].ID

	stdout, err := ws.run("snapshot", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "nightly") || !strings.Contains(stdout, id) {
		t.Errorf("list output:\n%s", stdout)
	}

	stdout, err = ws.run("snapshot", "show", id, "--json", "--graph", ws.path("snap.json"))
	if err != nil {
		t.Fatal(err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.ID != id || len(snap.Graph.Nodes) != 3 {
		t.Errorf("snapshot = %+v", snap.Summary())
	}
	if _, err := graph.ReadGraphFile(ws.path("snap.json")); err != nil {
		t.Errorf("exported graph: %v", err)
	}

	if _, err := ws.run("snapshot", "delete", id); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.run("snapshot", "show", id); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("show deleted: err = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	ws := newWorkspace(t)
	records := ws.write("records/app.json", validRecords)
	if _, err := ws.run("build", records, "-o", ws.path("graph.json"), "-q"); err != nil {
		t.Fatal(err)
	}

	stdout, err := ws.run("cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != ws.path("cache") {
		t.Errorf("cache path = %q", stdout)
	}

	stdout, err = ws.run("cache", "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Entries") || strings.Contains(stdout, "Entries        0") {
		t.Errorf("stats output:\n%s", stdout)
	}

	stdout, err = ws.run("cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Cleared 2 cached entries") {
		t.Errorf("clear output:\n%s", stdout)
	}
}

func TestUnknownConfigKey(t *testing.T) {
	ws := newWorkspace(t)
	ws.write("classgraph.toml", "[cache]\ncolour = \"blue\"\n")
	if _, err := ws.run("cache", "path"); !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeConfig)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"SVG, dot,svg", []string{"svg", "dot"}},
		{" , ", []string{"svg"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, format string
		multi          bool
		want           string
	}{
		{"", "svg", false, "graph.svg"},
		{"out.svg", "svg", false, "out.svg"},
		{"out.svg", "dot", true, "out.dot"},
		{"out/graph", "pdf", true, "out/graph.pdf"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.format, tt.multi); got != tt.want {
			t.Errorf("outputPath(%q, %q, %v) = %q, want %q", tt.output, tt.format, tt.multi, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatError(t *testing.T) {
	err := errors.New(errors.ErrCodeSnapshotNotFound, "snapshot x not found")
	got := FormatError(err)
	if !strings.Contains(got, "snapshot x not found") || !strings.Contains(got, "[SNAPSHOT_NOT_FOUND]") {
		t.Errorf("FormatError = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	ws := newWorkspace(t)
	for shell := range completionGenerators {
		out, err := ws.run("completion", shell)
		if err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(out, "classgraph") {
			t.Errorf("%s script does not mention the command", shell)
		}
	}
	if _, err := ws.run("completion", "tcsh"); err == nil {
		t.Error("unknown shell accepted")
	}
}
