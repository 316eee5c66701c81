package validate

import (
	"context"
	"slices"

	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/source"
)

// Orphans returns the nodes that are neither source nor target of any edge,
// in insertion order.
func Orphans(g *graph.Graph) []string {
	out := []string{}
	for _, id := range g.NodeIDs() {
		if g.InDegree(id) == 0 && g.OutDegree(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// MultipleInheritance groups extends edges by source and returns every
// source with more than one target. Sources and targets keep edge order.
func MultipleInheritance(g *graph.Graph) Inheritance {
	var order []string
	targets := make(map[string][]string)
	for _, e := range g.Edges() {
		if e.Kind != source.DepExtends {
			continue
		}
		if _, ok := targets[e.Source]; !ok {
			order = append(order, e.Source)
		}
		targets[e.Source] = append(targets[e.Source], e.Target)
	}

	out := Inheritance{}
	for _, id := range order {
		if len(targets[id]) > 1 {
			out = append(out, InheritanceCase{Source: id, Targets: targets[id]})
		}
	}
	return out
}

// Cycles finds cycles over extends/implements edges with a depth-first
// search from every unvisited node in insertion order.
//
// Each back-edge into the current path yields one cycle: the path suffix
// starting at the back-edge's target, closed by that target again. Cycles are
// not deduplicated, so overlapping cycles found through different back-edges
// are all reported.
func Cycles(g *graph.Graph) [][]string {
	type frame struct {
		id    string
		edges []*graph.Edge
		next  int
	}

	cycles := [][]string{}
	visited := make(map[string]bool)
	onPath := make(map[string]int) // node -> index in path
	var path []string
	var stack []*frame

	push := func(id string) {
		visited[id] = true
		onPath[id] = len(path)
		path = append(path, id)
		stack = append(stack, &frame{id: id, edges: inheritanceEdges(g, id)})
	}

	for _, start := range g.NodeIDs() {
		if visited[start] {
			continue
		}
		push(start)
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next == len(top.edges) {
				delete(onPath, top.id)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}
			target := top.edges[top.next].Target
			top.next++

			if i, ok := onPath[target]; ok {
				cycle := make([]string, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycles = append(cycles, append(cycle, target))
				continue
			}
			if !visited[target] {
				push(target)
			}
		}
	}
	return cycles
}

func inheritanceEdges(g *graph.Graph, id string) []*graph.Edge {
	var out []*graph.Edge
	for _, e := range g.OutEdges(id) {
		if e.Kind.IsInheritance() {
			out = append(out, e)
		}
	}
	return out
}

// LongestPaths enumerates simple paths over all edges, starting from every
// node with outgoing edges, and returns the top longest ones.
//
// Each search keeps its own on-path set, so a node may appear in many
// paths. A path is recorded when it cannot be extended: at a sink, when every
// successor is already on the path, or when it reaches maxNodes. Paths
// shorter than two nodes are never recorded. Ties keep discovery order.
//
// The cap bounds the depth of every search but not the number of paths on
// dense graphs; ctx allows the caller to give up.
func LongestPaths(ctx context.Context, g *graph.Graph, maxNodes, top int) ([][]string, error) {
	type frame struct {
		succ     []string
		next     int
		extended bool
	}

	best := newTopPaths(top)
	onPath := make(map[string]bool)
	var (
		path  []string
		stack []*frame
		steps int
	)

	for _, start := range g.NodeIDs() {
		if g.OutDegree(start) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		onPath[start] = true
		path = append(path[:0], start)
		stack = append(stack[:0], &frame{succ: successors(g, start)})

		for len(stack) > 0 {
			if steps++; steps%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}

			f := stack[len(stack)-1]
			if len(path) < maxNodes {
				for f.next < len(f.succ) && onPath[f.succ[f.next]] {
					f.next++
				}
				if f.next < len(f.succ) {
					next := f.succ[f.next]
					f.next++
					f.extended = true
					onPath[next] = true
					path = append(path, next)
					stack = append(stack, &frame{succ: successors(g, next)})
					continue
				}
			}

			if !f.extended && len(path) >= 2 {
				best.offer(path)
			}
			delete(onPath, path[len(path)-1])
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return best.paths, nil
}

func successors(g *graph.Graph, id string) []string {
	edges := g.OutEdges(id)
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Target
	}
	return out
}

// topPaths keeps the n longest paths offered, stable by offer order. It is
// equivalent to collecting every path, stable-sorting by length descending
// and truncating.
type topPaths struct {
	n     int
	paths [][]string
}

func newTopPaths(n int) *topPaths {
	return &topPaths{n: n, paths: [][]string{}}
}

func (t *topPaths) offer(p []string) {
	if t.n <= 0 {
		return
	}
	if len(t.paths) == t.n && len(p) <= len(t.paths[len(t.paths)-1]) {
		return
	}
	// Insert after every path at least as long.
	i := len(t.paths)
	for i > 0 && len(t.paths[i-1]) < len(p) {
		i--
	}
	t.paths = slices.Insert(t.paths, i, slices.Clone(p))
	if len(t.paths) > t.n {
		t.paths = t.paths[:t.n]
	}
}

// Connectivity computes the in, out and total degree of every node with at
// least one edge and returns the top most and least connected. Both lists
// are stable, so ties keep insertion order. Orphans are left out; they are
// reported separately.
func Connectivity(g *graph.Graph, top int) (most, least Ranking) {
	var all Ranking
	for _, id := range g.NodeIDs() {
		in, out := g.InDegree(id), g.OutDegree(id)
		if in+out == 0 {
			continue
		}
		all = append(all, Ranked{ID: id, Degree: Degree{In: in, Out: out, Total: in + out}})
	}

	most = slices.Clone(all)
	slices.SortStableFunc(most, func(a, b Ranked) int { return b.Total - a.Total })
	least = slices.Clone(all)
	slices.SortStableFunc(least, func(a, b Ranked) int { return a.Total - b.Total })

	return truncate(most, top), truncate(least, top)
}

func truncate(r Ranking, n int) Ranking {
	if r == nil {
		return Ranking{}
	}
	if len(r) > n {
		return r[:n]
	}
	return r
}

// Components partitions the nodes into weakly connected components with a
// breadth-first search over edges taken as undirected. It returns the size
// of each component in discovery order.
func Components(g *graph.Graph) []int {
	seen := make(map[string]bool, g.NodeCount())
	var sizes []int
	for _, start := range g.NodeIDs() {
		if seen[start] {
			continue
		}
		seen[start] = true
		queue := []string{start}
		size := 0
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			size++
			for _, e := range g.OutEdges(id) {
				if !seen[e.Target] {
					seen[e.Target] = true
					queue = append(queue, e.Target)
				}
			}
			for _, e := range g.InEdges(id) {
				if !seen[e.Source] {
					seen[e.Source] = true
					queue = append(queue, e.Source)
				}
			}
		}
		sizes = append(sizes, size)
	}
	return sizes
}
