// Package render draws dependency graphs with Graphviz.
//
// Rendering goes through DOT text:
//
//	Graph → ToDOT() → DOT → RenderSVG() / RenderPNG()
//	                        SVG → ToPDF()
//
// The DOT text is the intermediate representation. It can be cached, written
// to disk, or handed to an external Graphviz installation.
//
// # Styling
//
// Nodes are styled by declaration kind:
//
//   - class: box (abstract classes dashed, final classes bold)
//   - interface: ellipse
//   - trait: hexagon
//
// Edges are styled by dependency kind: extends solid with a hollow arrow,
// implements dashed with a hollow arrow, usesTrait dotted and use grey.
// Paths passed in [Options.Highlight] (typically the cycles of a validation
// report) are drawn in red.
//
// # Format Conversion
//
// SVG and PNG are laid out in-process with [github.com/goccy/go-graphviz],
// a WebAssembly build of Graphviz. [ToPDF] shells out to rsvg-convert from
// librsvg.
package render
