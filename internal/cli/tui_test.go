package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/source"
)

func browserGraph() *graph.Graph {
	decl := func(fqn string, kind source.DeclarationKind) source.Declaration {
		return source.Declaration{Name: fqn, Namespace: "App", FullyQualifiedName: fqn, FilePath: fqn + ".php", Kind: kind}
	}
	records := []source.Record{
		{Declaration: decl("Lonely", source.KindTrait)},
		{Declaration: decl("Base", source.KindClass)},
		{Declaration: decl("Shape", source.KindInterface)},
		{Declaration: decl("Circle", source.KindClass), Dependencies: []source.Dependency{
			{SourceFQN: "Circle", TargetFQN: "Base", Kind: source.DepExtends},
			{SourceFQN: "Circle", TargetFQN: "Shape", Kind: source.DepImplements},
		}},
	}
	return build.Build(records).Graph
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m NodeBrowserModel, keys ...string) NodeBrowserModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(NodeBrowserModel)
	}
	return m
}

func TestNodeBrowserRanking(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph())
	if got := m.Selected().ID; got != "Circle" {
		t.Fatalf("first node = %s, want the most connected (Circle)", got)
	}

	m = update(m, "s")
	if m.Sort != sortLeast || m.Selected().ID != "Lonely" {
		t.Errorf("least connected first = %s", m.Selected().ID)
	}

	m = update(m, "s")
	if m.Sort != sortName || m.Selected().ID != "Base" {
		t.Errorf("name order first = %s", m.Selected().ID)
	}

	m = update(m, "s")
	if m.Sort != sortMost {
		t.Errorf("sort did not wrap around: %d", m.Sort)
	}
}

func TestNodeBrowserNavigation(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph())
	m.Height = 2

	m = update(m, "down", "down", "down", "down", "down")
	if m.Cursor != 3 {
		t.Errorf("cursor = %d, want clamped to 3", m.Cursor)
	}
	if m.Offset != 2 {
		t.Errorf("offset = %d, want 2", m.Offset)
	}

	m = update(m, "g")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("home: cursor %d offset %d", m.Cursor, m.Offset)
	}

	m = update(m, "enter")
	if m.Details {
		t.Error("enter should toggle details off")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestNodeBrowserView(t *testing.T) {
	m := NewNodeBrowserModel(browserGraph())
	view := m.View()
	for _, want := range []string{"most connected", "Circle", "Circle.php", "extends", "Base", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty := NewNodeBrowserModel(graph.New())
	if !strings.Contains(empty.View(), "no nodes") || empty.Selected() != nil {
		t.Error("empty graph view")
	}
	empty = update(empty, "down")
	if empty.Cursor != 0 {
		t.Error("cursor moved in an empty list")
	}
}
