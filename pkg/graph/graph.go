package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source
	// node does not exist. The graph is left unchanged.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target
	// node does not exist. The graph is left unchanged.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Graph is the dependency graph of declared types.
//
// Nodes are keyed by fully qualified name and edges by "source->target".
// Both collections iterate in insertion order. An edge is only ever stored
// when both of its endpoints are present.
//
// There is no deletion API: a graph is populated once during a build and then
// only read. The zero value is not usable - use New.
// Graph is not safe for concurrent writes; concurrent reads are fine.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
	outgoing  map[string][]string // nodeID -> outgoing edge IDs
	incoming  map[string][]string // nodeID -> incoming edge IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode inserts n. A node with the same ID replaces the existing one in
// place: the stored data is overwritten but the node keeps its original
// position in the iteration order, and incident edges are kept.
//
// Returns ErrInvalidNodeID if the ID is empty.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if existing, ok := g.nodes[n.ID]; ok {
		*existing = n
		return nil
	}
	node := &n
	g.nodes[n.ID] = node
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// AddEdge inserts e under the ID "source->target", overriding e.ID.
//
// If either endpoint is missing the call is a no-op and ErrUnknownSourceNode
// or ErrUnknownTargetNode is returned. If an edge with the same ID already
// exists, its kind and metadata are replaced in place.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	e.ID = EdgeID(e.Source, e.Target)
	if existing, ok := g.edges[e.ID]; ok {
		*existing = e
		return nil
	}
	edge := &e
	g.edges[e.ID] = edge
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.ID)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.ID)
	return nil
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasEdge reports whether an edge from source to target exists.
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.edges[EdgeID(source, target)]
	return ok
}

// Edge returns the edge with the given ID and true, or nil and false.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// stored nodes; callers must treat them as read-only.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.nodeOrder) }

// Edges returns all edges in insertion order. The pointers refer to the
// stored edges; callers must treat them as read-only.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = g.edges[id]
	}
	return out
}

// OutEdges returns the edges leaving id in insertion order.
func (g *Graph) OutEdges(id string) []*Edge { return g.lookup(g.outgoing[id]) }

// InEdges returns the edges entering id in insertion order.
func (g *Graph) InEdges(id string) []*Edge { return g.lookup(g.incoming[id]) }

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of edges entering id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

func (g *Graph) lookup(ids []string) []*Edge {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Edge, len(ids))
	for i, id := range ids {
		out[i] = g.edges[id]
	}
	return out
}
