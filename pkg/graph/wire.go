package graph

import (
	"encoding/json"

	"github.com/matzehuels/classgraph/internal/orderedjson"
)

// =============================================================================
// Data - Wire Format
// =============================================================================

// Data is the pure-data export of a Graph, the shape handed to serializers
// and visualization clients:
//
//	{
//	  "nodes": {"<FQN>": {"id", "label", "kind", "metadata"}, ...},
//	  "edges": {"<source>-><target>": {"id", "source", "target", "kind", "metadata"}, ...}
//	}
//
// Both objects are written in graph insertion order, and reading preserves
// the order of the input document.
type Data struct {
	Nodes []Node
	Edges []Edge
}

type wireData struct {
	Nodes orderedNodes `json:"nodes"`
	Edges orderedEdges `json:"edges"`
}

// MarshalJSON encodes the nodes and edges as ID-keyed objects.
func (d Data) MarshalJSON() ([]byte, error) {
	return orderedjson.Raw(wireData{Nodes: d.Nodes, Edges: d.Edges})
}

// UnmarshalJSON decodes ID-keyed node and edge objects. Empty JSON arrays
// are accepted in place of empty objects. A missing "id" inside an entry is
// taken from its key.
func (d *Data) UnmarshalJSON(data []byte) error {
	var w wireData
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.Nodes = w.Nodes
	d.Edges = w.Edges
	return nil
}

// Export returns the pure-data view of g with nodes and edges in insertion
// order. The result shares no mutable state with g except edge metadata maps.
func Export(g *Graph) Data {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Data{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = *n
	}
	for i, e := range edges {
		out.Edges[i] = *e
	}
	return out
}

// Import reconstructs a Graph from its pure-data view. Nodes are inserted
// first, then edges; edges whose endpoints are missing are skipped, matching
// the graph invariant.
func Import(d Data) *Graph {
	g := New()
	for _, n := range d.Nodes {
		_ = g.AddNode(n)
	}
	for _, e := range d.Edges {
		_ = g.AddEdge(e)
	}
	return g
}

// =============================================================================
// Ordered ID-keyed objects
// =============================================================================

type orderedNodes []Node

func (o orderedNodes) MarshalJSON() ([]byte, error) {
	return orderedjson.Marshal(len(o), func(i int) (string, any) { return o[i].ID, o[i] })
}

func (o *orderedNodes) UnmarshalJSON(data []byte) error {
	return orderedjson.Walk(data, func(key string, dec *json.Decoder) error {
		var n Node
		if err := dec.Decode(&n); err != nil {
			return err
		}
		if n.ID == "" {
			n.ID = key
		}
		*o = append(*o, n)
		return nil
	})
}

type orderedEdges []Edge

func (o orderedEdges) MarshalJSON() ([]byte, error) {
	return orderedjson.Marshal(len(o), func(i int) (string, any) {
		e := o[i]
		if e.ID == "" {
			e.ID = EdgeID(e.Source, e.Target)
		}
		return e.ID, e
	})
}

func (o *orderedEdges) UnmarshalJSON(data []byte) error {
	return orderedjson.Walk(data, func(key string, dec *json.Decoder) error {
		var e Edge
		if err := dec.Decode(&e); err != nil {
			return err
		}
		if e.ID == "" {
			e.ID = key
		}
		*o = append(*o, e)
		return nil
	})
}
