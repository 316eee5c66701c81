// Package graph provides the dependency graph of declared types and its
// serialization format.
//
// # Model
//
// A [Graph] holds [Node] values keyed by fully qualified name (FQN) and
// [Edge] values keyed by "source->target". Both collections iterate in
// insertion order, which keeps every downstream analysis deterministic.
//
// Invariants:
//
//   - An edge is stored only if both endpoints exist. [Graph.AddEdge] is a
//     no-op (returning [ErrUnknownSourceNode] or [ErrUnknownTargetNode])
//     otherwise.
//   - Inserting a node whose ID already exists replaces it in place.
//   - Edge identity ignores the kind: a second edge between the same ordered
//     pair replaces the first edge's kind and metadata.
//   - There is no deletion API. A rebuilt graph is a fresh instance.
//
// Nodes carry a tagged metadata variant selected by declaration kind:
// [ClassMetadata] (with abstract/final flags), [InterfaceMetadata] and
// [TraitMetadata].
//
// # Wire Format
//
// [Export] produces the pure-data [Data] view, which encodes as:
//
//	{
//	  "nodes": {
//	    "App\\Models\\User": {
//	      "id": "App\\Models\\User",
//	      "label": "User",
//	      "kind": "class",
//	      "metadata": {"namespace": "App\\Models", "filePath": "src/Models/User.php", "isAbstract": false, "isFinal": true}
//	    }
//	  },
//	  "edges": {
//	    "App\\Models\\User->App\\Models\\Model": {
//	      "id": "App\\Models\\User->App\\Models\\Model",
//	      "source": "App\\Models\\User",
//	      "target": "App\\Models\\Model",
//	      "kind": "extends",
//	      "metadata": {}
//	    }
//	  }
//	}
//
// [Import] rebuilds a Graph from that view. Common operations:
//
//	data, _ := graph.MarshalGraph(g)          // Graph → []byte
//	g, _ := graph.UnmarshalGraph(data)        // []byte → Graph
//	graph.WriteGraphFile(g, "graph.json")     // Graph → File
//	g, _ := graph.ReadGraphFile("graph.json") // File → Graph
//
// # Concurrency
//
// A Graph is built once and then only read. Concurrent reads are safe;
// concurrent writes are not.
package graph
