// Package pkg provides the libraries behind classgraph, a dependency graph
// builder for object-oriented codebases.
//
// # Overview
//
// classgraph takes declaration records (classes, interfaces and traits with
// the types they extend, implement, use or import) produced by a source
// parser, and turns them into a directed dependency graph that can be
// validated, rendered and served. The pkg directory is organized as:
//
//  1. [source] - Record types and record file loading
//  2. [graph] - The graph model and its JSON wire format
//  3. [build] - Dependency mapping, graph building and statistics
//  4. [validate] - Structural analysis (cycles, paths, connectivity)
//  5. [pipeline] - Orchestration with caching (load → build → validate → render)
//  6. [render] - Graphviz DOT and SVG/PNG/PDF output
//  7. [cache], [store] - Result cache and snapshot persistence
//  8. [server] - HTTP API for visualization clients
//
// # Architecture
//
// The typical data flow:
//
//	Declaration records (JSON)
//	         ↓
//	    [source] package (read and merge record files)
//	         ↓
//	    [build] package (nodes first, then dependency edges)
//	         ↓
//	    [validate] package (report)
//	         ↓
//	    [render] / [server] / [store]
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/classgraph/pkg/build"
//	    "github.com/matzehuels/classgraph/pkg/source"
//	    "github.com/matzehuels/classgraph/pkg/validate"
//	)
//
//	records, _ := source.ReadFile("declarations.json")
//	result := build.Build(records)
//	report := validate.Validate(result.Graph)
//	fmt.Println(report.IsValid, result.Stats.EdgeCount)
//
// The CLI in cmd/classgraph wires these packages together.
package pkg
