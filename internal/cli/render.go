package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/pipeline"
	"github.com/matzehuels/classgraph/pkg/render"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// Highlight modes for --highlight.
const (
	highlightCycles = "cycles"
	highlightPaths  = "paths"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output    string // output file (one format) or base path (several)
	formats   string // comma-separated output formats
	graphPath string // render a graph file instead of building
	detailed  bool   // namespace and file in labels
	clusters  bool   // one cluster per namespace
	rankdir   string // TB, BT, LR or RL
	highlight string // cycles or paths
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags pipelineFlags
		rf    renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [files or directories...]",
		Short: "Render the dependency graph as DOT, SVG, PNG, PDF or JSON",
		Long: `Render draws the graph with Graphviz. Classes are boxes, interfaces ellipses
and traits hexagons; abstract types are dashed and final types bold.

--highlight colors circular dependencies or the longest paths found by
validation. PNG and PDF output requires rsvg-convert (librsvg).`,
		Example: `  classgraph render records/ -f svg -o graph.svg
  classgraph render --graph graph.json -f dot,svg --clusters --rankdir LR
  classgraph render records/ --highlight cycles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rf.graphPath == "" && len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "give record files or --graph")
			}
			formats := parseFormats(rf.formats)
			for _, f := range formats {
				if err := render.ValidateFormat(f); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidFormat, err, "format")
				}
			}
			opts := c.pipelineOptions(cmd, &flags, args)
			opts.Formats = formats
			opts.Render = render.Options{
				Detailed: rf.detailed,
				Clusters: rf.clusters,
				RankDir:  strings.ToUpper(rf.rankdir),
			}
			if err := validateRankDir(opts.Render.RankDir); err != nil {
				return err
			}
			if err := validateHighlight(rf.highlight); err != nil {
				return err
			}
			return c.runRender(cmd, &flags, &rf, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output file (one format) or base path (several); default graph.<ext>")
	cmd.Flags().StringVarP(&rf.formats, "format", "f", render.FormatSVG, "output format(s): dot, svg, png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&rf.graphPath, "graph", "", "render a graph file instead of building one")
	cmd.Flags().BoolVar(&rf.detailed, "detailed", false, "show namespace and file in node labels")
	cmd.Flags().BoolVar(&rf.clusters, "clusters", false, "group nodes by namespace")
	cmd.Flags().StringVar(&rf.rankdir, "rankdir", "TB", "layout direction: TB, BT, LR or RL")
	cmd.Flags().StringVar(&rf.highlight, "highlight", "", "highlight cycles or paths")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, flags *pipelineFlags, rf *renderFlags, opts pipeline.Options) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var (
		g        *graph.Graph
		report   *validate.Report
		buildErr error
	)
	if rf.graphPath != "" {
		if g, err = graph.ReadGraphFile(rf.graphPath); err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "read graph")
		}
		opts.Records = []source.Record{}
		if rf.highlight != "" {
			if report, err = runner.Validate(ctx, g, opts); err != nil {
				return err
			}
		}
	} else {
		// Highlights come from the report, so render in a second step.
		buildOpts := opts
		buildOpts.Formats = nil
		result, err := c.runPipeline(ctx, flags, buildOpts)
		if result == nil {
			return err
		}
		g, report, buildErr = result.Graph, result.Report, err
	}

	switch rf.highlight {
	case highlightCycles:
		opts.Render.Highlight = report.CircularDependencies
	case highlightPaths:
		opts.Render.Highlight = report.LongestPaths
	}

	spin := c.startSpinner(ctx, "rendering")
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, g, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.success("Rendered %s", strings.Join(opts.Formats, ", "))
	p.stats(g.NodeCount(), g.EdgeCount(), cached)
	for _, format := range opts.Formats {
		path := outputPath(rf.output, format, len(opts.Formats) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		p.file(path)
	}
	return buildErr
}

// parseFormats splits the --format flag, dropping blanks and duplicates.
func parseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return []string{render.FormatSVG}
	}
	return out
}

func validateRankDir(dir string) error {
	switch dir {
	case "TB", "BT", "LR", "RL":
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid rankdir: %q (must be TB, BT, LR or RL)", dir)
}

func validateHighlight(mode string) error {
	switch mode {
	case "", highlightCycles, highlightPaths:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid highlight: %q (must be cycles or paths)", mode)
}

// outputPath returns where one format is written. With several formats the
// output flag is a base path and each format gets its own extension.
func outputPath(output, format string, multi bool) string {
	if output == "" {
		return "graph." + format
	}
	if multi {
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	return output
}
