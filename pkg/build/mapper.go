package build

import (
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/source"
)

// Mapper converts dependency facts into edges of a graph whose nodes are
// already in place.
type Mapper struct {
	g *graph.Graph
}

// NewMapper returns a Mapper that adds edges to g.
func NewMapper(g *graph.Graph) *Mapper {
	return &Mapper{g: g}
}

// Map processes every dependency of every record in order and returns the
// per-kind statistics.
func (m *Mapper) Map(records []source.Record) DependencyStats {
	var stats DependencyStats
	for _, r := range records {
		for _, dep := range r.Dependencies {
			stats.Record(dep.Kind, m.MapDependency(dep))
		}
	}
	return stats
}

// MapDependency adds the edge for dep if it passes the integrity and
// circularity checks and reports what happened to it.
//
// Checks run in order: unknown source (Invalid), unknown target (Missing),
// then for extends/implements a walk from the target over the inheritance
// edges already in the graph; reaching the source means the edge would close
// a cycle (Circular). A dependency on itself is therefore circular.
func (m *Mapper) MapDependency(dep source.Dependency) Outcome {
	if !m.g.HasNode(dep.SourceFQN) {
		return Invalid
	}
	if !m.g.HasNode(dep.TargetFQN) {
		return Missing
	}
	if dep.Kind.IsInheritance() && m.reaches(dep.TargetFQN, dep.SourceFQN) {
		return Circular
	}
	if err := m.g.AddEdge(graph.Edge{
		Source: dep.SourceFQN,
		Target: dep.TargetFQN,
		Kind:   dep.Kind,
	}); err != nil {
		// Unreachable after the checks above.
		return Invalid
	}
	return Added
}

// reaches reports whether to is reachable from from by following
// extends/implements edges currently in the graph (breadth-first).
func (m *Mapper) reaches(from, to string) bool {
	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		for _, e := range m.g.OutEdges(id) {
			if !e.Kind.IsInheritance() || visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			queue = append(queue, e.Target)
		}
	}
	return false
}
