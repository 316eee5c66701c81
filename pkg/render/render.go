package render

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/observability"
)

// Output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Render produces g in the given format. JSON is the graph wire format.
func Render(ctx context.Context, g *graph.Graph, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	out, err := render(ctx, g, format, opts)
	hooks.OnRenderComplete(ctx, format, len(out), time.Since(start), err)
	return out, err
}

func render(ctx context.Context, g *graph.Graph, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return graph.MarshalGraph(g)
	}
	dot := ToDOT(g, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatPNG:
		return RenderPNG(ctx, dot)
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil || format == FormatSVG {
		return svg, err
	}
	return ToPDF(ctx, svg)
}
