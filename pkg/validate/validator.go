package validate

import (
	"context"

	"github.com/matzehuels/classgraph/pkg/graph"
)

const (
	// DefaultMaxPathNodes is the most nodes a single longest path may hold.
	DefaultMaxPathNodes = 20

	// DefaultTopN is the length of the longest-path and connectivity lists.
	DefaultTopN = 5
)

// Options configures validation.
//
// The zero value uses DefaultMaxPathNodes and DefaultTopN.
type Options struct {
	// MaxPathNodes caps the length of enumerated paths. It bounds the work
	// done on densely connected graphs.
	MaxPathNodes int

	// TopN is how many longest paths and most/least connected nodes are
	// reported.
	TopN int
}

func (o Options) withDefaults() Options {
	if o.MaxPathNodes <= 1 {
		o.MaxPathNodes = DefaultMaxPathNodes
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	return o
}

// Validate analyzes g with default options.
func Validate(g *graph.Graph) *Report {
	r, _ := ValidateContext(context.Background(), g, Options{})
	return r
}

// ValidateContext analyzes g. It returns ctx.Err() if ctx is done before
// path enumeration finishes; g is never modified, so abandoning a run is
// safe.
func ValidateContext(ctx context.Context, g *graph.Graph, opts Options) (*Report, error) {
	opts = opts.withDefaults()

	paths, err := LongestPaths(ctx, g, opts.MaxPathNodes, opts.TopN)
	if err != nil {
		return nil, err
	}
	most, least := Connectivity(g, opts.TopN)
	sizes := Components(g)

	r := &Report{
		OrphanedNodes:        Orphans(g),
		MultipleInheritance:  MultipleInheritance(g),
		CircularDependencies: Cycles(g),
		LongestPaths:         paths,
		MostConnected:        most,
		LeastConnected:       least,
		SubgraphCount:        len(sizes),
	}
	for i, n := range sizes {
		if i == 0 || n > r.LargestSubgraph {
			r.LargestSubgraph = n
		}
		if i == 0 || n < r.SmallestSubgraph {
			r.SmallestSubgraph = n
		}
	}
	r.IsValid = len(r.MultipleInheritance) == 0 && len(r.CircularDependencies) == 0
	return r, nil
}
