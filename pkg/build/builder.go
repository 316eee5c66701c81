package build

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/source"
)

// DuplicatePolicy decides which declaration becomes the node when several
// share a fully qualified name.
type DuplicatePolicy string

const (
	// LastWins keeps the last declaration seen. This is the default.
	LastWins DuplicatePolicy = "last-wins"
	// FirstWins keeps the first declaration seen.
	FirstWins DuplicatePolicy = "first-wins"
)

// ParseDuplicatePolicy parses a policy name. The empty string selects
// LastWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", LastWins:
		return LastWins, nil
	case FirstWins:
		return FirstWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want %s or %s)", s, LastWins, FirstWins)
	}
}

// Options configures a build.
//
// The zero value uses LastWins.
type Options struct {
	Duplicates DuplicatePolicy
}

// Result is the output of a build.
type Result struct {
	Graph *graph.Graph
	Stats Stats
}

// Builder runs the two-pass build. It holds no state between calls and may
// be reused.
type Builder struct {
	opts Options
	now  func() time.Time
}

// NewBuilder returns a Builder with the given options.
func NewBuilder(opts Options) *Builder {
	if opts.Duplicates == "" {
		opts.Duplicates = LastWins
	}
	return &Builder{opts: opts, now: time.Now}
}

// Build builds records with default options.
func Build(records []source.Record) *Result {
	return NewBuilder(Options{}).Build(records)
}

// Build creates one node per declaration, then maps every dependency of
// every record onto the finished node set.
//
// Duplicate declarations are resolved by the configured policy and listed in
// Stats.Conflicts. Declarations without a fully qualified name or with an
// unknown kind are counted in Stats.Skipped. Dependencies are mapped for all records, including those
// whose declaration was dropped as a duplicate.
func (b *Builder) Build(records []source.Record) *Result {
	start := b.now()
	g := graph.New()

	var (
		conflicts []Conflict
		skipped   int
		files     = make(map[string]string, len(records))
	)
	for _, r := range records {
		d := r.Declaration
		if d.FullyQualifiedName == "" || !d.Kind.Valid() {
			skipped++
			continue
		}
		if prev, ok := files[d.FullyQualifiedName]; ok {
			c := Conflict{FQN: d.FullyQualifiedName, KeptFile: d.FilePath, DroppedFile: prev}
			if b.opts.Duplicates == FirstWins {
				c.KeptFile, c.DroppedFile = prev, d.FilePath
				conflicts = append(conflicts, c)
				continue
			}
			conflicts = append(conflicts, c)
		}
		files[d.FullyQualifiedName] = d.FilePath
		_ = g.AddNode(NewNode(d))
	}

	deps := NewMapper(g).Map(records)

	return &Result{
		Graph: g,
		Stats: Stats{
			NodeCount:    g.NodeCount(),
			EdgeCount:    g.EdgeCount(),
			BuildTime:    b.now().Sub(start),
			Dependencies: deps,
			Conflicts:    conflicts,
			Skipped:      skipped,
		},
	}
}

// NewNode converts a declaration into a graph node. The label is the short
// name, falling back to the last namespace segment of the FQN.
func NewNode(d source.Declaration) graph.Node {
	label := d.Name
	if label == "" {
		label = shortName(d.FullyQualifiedName)
	}
	common := graph.CommonMetadata{
		Namespace:  d.Namespace,
		FilePath:   d.FilePath,
		DocComment: strings.Join(d.DocCommentLines, "\n"),
	}
	return graph.Node{
		ID:    d.FullyQualifiedName,
		Label: label,
		Kind:  d.Kind,
		Meta:  graph.NewMetadata(d.Kind, common, d.IsAbstract, d.IsFinal),
	}
}

func shortName(fqn string) string {
	fqn = strings.TrimRight(fqn, `\`)
	if i := strings.LastIndexByte(fqn, '\\'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
