package build

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/source"
)

func TestBuildNodes(t *testing.T) {
	records := []source.Record{
		{Declaration: source.Declaration{
			Name:               "User",
			Namespace:          `App\Models`,
			FullyQualifiedName: `App\Models\User`,
			FilePath:           "src/Models/User.php",
			DocCommentLines:    []string{"/**", " * A user.", " */"},
			Kind:               source.KindClass,
			IsFinal:            true,
		}},
		{Declaration: source.Declaration{
			FullyQualifiedName: `App\Contracts\Jsonable`,
			Namespace:          `App\Contracts`,
			Kind:               source.KindInterface,
			IsAbstract:         true,
		}},
		{Declaration: source.Declaration{
			Name:               "Loggable",
			FullyQualifiedName: `App\Loggable`,
			Kind:               source.KindTrait,
		}},
	}
	res := Build(records)
	g := res.Graph

	if got := g.NodeIDs(); !slices.Equal(got, []string{`App\Models\User`, `App\Contracts\Jsonable`, `App\Loggable`}) {
		t.Fatalf("NodeIDs = %v", got)
	}

	user, _ := g.Node(`App\Models\User`)
	meta, ok := user.Meta.(graph.ClassMetadata)
	if !ok {
		t.Fatalf("User metadata = %T", user.Meta)
	}
	if user.Label != "User" || !meta.IsFinal || meta.IsAbstract {
		t.Errorf("User = %+v %+v", user, meta)
	}
	if meta.DocComment != "/**\n * A user.\n */" {
		t.Errorf("DocComment = %q", meta.DocComment)
	}

	iface, _ := g.Node(`App\Contracts\Jsonable`)
	if iface.Label != "Jsonable" {
		t.Errorf("label fallback = %q, want Jsonable", iface.Label)
	}
	if _, ok := iface.Meta.(graph.InterfaceMetadata); !ok {
		t.Errorf("Jsonable metadata = %T, want InterfaceMetadata", iface.Meta)
	}
	if iface.IsAbstract() {
		t.Error("abstract flag must only apply to classes")
	}
	trait, _ := g.Node(`App\Loggable`)
	if _, ok := trait.Meta.(graph.TraitMetadata); !ok {
		t.Errorf("Loggable metadata = %T, want TraitMetadata", trait.Meta)
	}

	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestBuildDuplicates(t *testing.T) {
	records := []source.Record{
		{Declaration: source.Declaration{Name: "A", FullyQualifiedName: "A", FilePath: "one.php", Kind: source.KindClass}},
		{Declaration: source.Declaration{Name: "B", FullyQualifiedName: "B", FilePath: "b.php", Kind: source.KindClass}},
		{Declaration: source.Declaration{Name: "A", FullyQualifiedName: "A", FilePath: "two.php", Kind: source.KindInterface}},
	}

	tests := []struct {
		policy   DuplicatePolicy
		wantKind source.DeclarationKind
		wantFile string
		conflict Conflict
	}{
		{LastWins, source.KindInterface, "two.php", Conflict{FQN: "A", KeptFile: "two.php", DroppedFile: "one.php"}},
		{FirstWins, source.KindClass, "one.php", Conflict{FQN: "A", KeptFile: "one.php", DroppedFile: "two.php"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			res := NewBuilder(Options{Duplicates: tt.policy}).Build(records)
			n, _ := res.Graph.Node("A")
			if n.Kind != tt.wantKind || n.Meta.Common().FilePath != tt.wantFile {
				t.Errorf("node A = %s from %s, want %s from %s", n.Kind, n.Meta.Common().FilePath, tt.wantKind, tt.wantFile)
			}
			if got := res.Graph.NodeIDs(); !slices.Equal(got, []string{"A", "B"}) {
				t.Errorf("NodeIDs = %v, want [A B]", got)
			}
			if len(res.Stats.Conflicts) != 1 || res.Stats.Conflicts[0] != tt.conflict {
				t.Errorf("conflicts = %+v, want [%+v]", res.Stats.Conflicts, tt.conflict)
			}
		})
	}
}

func TestBuildSkipsEmptyFQN(t *testing.T) {
	res := Build([]source.Record{
		{Declaration: source.Declaration{Name: "Anon", Kind: source.KindClass}},
		record("A"),
	})
	if res.Stats.Skipped != 1 || res.Stats.NodeCount != 1 {
		t.Errorf("stats = %+v, want 1 skipped 1 node", res.Stats)
	}
}

func TestBuildDegradesOnPartialRecords(t *testing.T) {
	res := Build([]source.Record{
		{Declaration: source.Declaration{Name: "Status", FullyQualifiedName: "Status", Kind: "enum"}},
		{
			Declaration: source.Declaration{Name: "A", FullyQualifiedName: "A", Kind: source.KindClass},
			Dependencies: []source.Dependency{
				{SourceFQN: "A", TargetFQN: "", Kind: source.DepUse},
				{SourceFQN: "", TargetFQN: "A", Kind: source.DepUse},
				{SourceFQN: "A", TargetFQN: "Status", Kind: source.DepUse},
			},
		},
	})

	if res.Stats.Skipped != 1 || res.Stats.NodeCount != 1 {
		t.Errorf("stats = %+v, want 1 skipped 1 node", res.Stats)
	}
	use, _ := res.Stats.Dependencies.Kind(source.DepUse)
	if use != (Counter{Missing: 2, Invalid: 1}) {
		t.Errorf("use = %+v, want 2 missing 1 invalid", use)
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", LastWins, false},
		{"last-wins", LastWins, false},
		{"first-wins", FirstWins, false},
		{"reject", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestBuildTime(t *testing.T) {
	b := NewBuilder(Options{})
	ticks := []time.Time{time.Unix(0, 0), time.Unix(0, 0).Add(1500 * time.Millisecond)}
	b.now = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}
	res := b.Build(nil)
	if res.Stats.BuildTime != 1500*time.Millisecond {
		t.Errorf("BuildTime = %v", res.Stats.BuildTime)
	}

	data, err := json.Marshal(res.Stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"buildTime":1.5`) {
		t.Errorf("stats JSON = %s, want buildTime in seconds", data)
	}
}
