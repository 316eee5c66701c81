package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/source"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the namespace and file path to node labels.
	// When false, only the short name is shown.
	Detailed bool

	// Clusters groups nodes into one Graphviz cluster per namespace.
	Clusters bool

	// RankDir sets the layout direction: TB (default), BT, LR or RL.
	RankDir string

	// Highlight lists node paths whose consecutive edges are drawn in red.
	Highlight [][]string
}

// ToDOT converts a graph to Graphviz DOT format.
// Nodes and edges are written in graph insertion order, so equal graphs
// produce identical output.
func ToDOT(g *graph.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}
	highlighted := highlightSet(opts.Highlight)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if opts.Clusters {
		writeClusters(&buf, g, opts.Detailed)
	} else {
		for _, n := range g.Nodes() {
			writeNode(&buf, "  ", n, opts.Detailed)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e.Kind)
		if highlighted[e.ID] {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeClusters(buf *bytes.Buffer, g *graph.Graph, detailed bool) {
	var order []string
	groups := make(map[string][]*graph.Node)
	for _, n := range g.Nodes() {
		ns := namespaceOf(n)
		if _, ok := groups[ns]; !ok {
			order = append(order, ns)
		}
		groups[ns] = append(groups[ns], n)
	}
	for i, ns := range order {
		if ns == "" {
			for _, n := range groups[ns] {
				writeNode(buf, "  ", n, detailed)
			}
			continue
		}
		fmt.Fprintf(buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(buf, "    label=%s;\n", quote(ns))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		buf.WriteString("    color=grey60;\n")
		for _, n := range groups[ns] {
			writeNode(buf, "    ", n, detailed)
		}
		buf.WriteString("  }\n")
	}
}

func writeNode(buf *bytes.Buffer, indent string, n *graph.Node, detailed bool) {
	attrs := []string{"label=" + quote(nodeLabel(n, detailed))}
	attrs = append(attrs, nodeAttrs(n)...)
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, quote(n.ID), strings.Join(attrs, ", "))
}

// dotEscaper escapes the characters DOT reads specially inside a quoted
// string. Other text, non-ASCII included, is written as is.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func nodeLabel(n *graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed || n.Meta == nil {
		return label
	}
	common := n.Meta.Common()
	parts := []string{label}
	if common.Namespace != "" {
		parts = append(parts, common.Namespace)
	}
	if common.FilePath != "" {
		parts = append(parts, common.FilePath)
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(n *graph.Node) []string {
	switch n.Kind {
	case source.KindInterface:
		return []string{"shape=ellipse", "fillcolor=\"#e8f0fe\""}
	case source.KindTrait:
		return []string{"shape=hexagon", "fillcolor=\"#fef7e0\""}
	}
	switch {
	case n.IsAbstract():
		return []string{"style=\"rounded,filled,dashed\""}
	case n.IsFinal():
		return []string{"penwidth=2", "fontname=\"Helvetica-Bold\""}
	}
	return nil
}

func edgeAttrs(kind source.DependencyKind) []string {
	switch kind {
	case source.DepExtends:
		return []string{"arrowhead=empty"}
	case source.DepImplements:
		return []string{"style=dashed", "arrowhead=empty"}
	case source.DepUsesTrait:
		return []string{"style=dotted"}
	case source.DepUse:
		return []string{"color=grey50"}
	default:
		return []string{"color=grey70", "label=" + quote(string(kind))}
	}
}

func namespaceOf(n *graph.Node) string {
	if n.Meta == nil {
		return ""
	}
	return n.Meta.Common().Namespace
}

func highlightSet(paths [][]string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range paths {
		for i := 0; i+1 < len(p); i++ {
			set[graph.EdgeID(p[i], p[i+1])] = true
		}
	}
	return set
}
