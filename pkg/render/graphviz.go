package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// layout runs Graphviz's dot engine over the DOT text in-process and
// encodes the result as format (SVG or PNG).
func layout(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("graphviz %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// RenderSVG lays out a DOT graph and returns it as SVG, sized from its
// viewBox so browsers scale it when embedded.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := layout(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return fitViewBox(svg), nil
}

// RenderPNG lays out a DOT graph and rasterizes it.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return layout(ctx, dot, graphviz.PNG)
}

var (
	svgRootRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="[-0-9.]+\s+[-0-9.]+\s+([0-9.]+)\s+([0-9.]+)"`)
)

// fitViewBox replaces the root element's point-based width and height with
// a bare viewBox plus pixel dimensions.
func fitViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[1]), 64)
	h, _ := strconv.ParseFloat(string(m[2]), 64)
	if w <= 0 || h <= 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgRootRe.ReplaceAll(svg, []byte(root))
}

// ToPDF converts SVG to PDF with rsvg-convert, which must be on PATH
// (librsvg2-bin on Debian, librsvg on Homebrew). The embedded Graphviz has
// no PDF backend.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	bin, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return nil, fmt.Errorf("pdf output needs rsvg-convert from librsvg: %w", err)
	}
	cmd := exec.CommandContext(ctx, bin, "--format", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}
