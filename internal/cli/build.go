package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/graph"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		output    string
		statsPath string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "build [files or directories...]",
		Short: "Build the dependency graph from declaration records",
		Long: `Build reads declaration record files (JSON arrays of {declaration,
dependencies}) and writes the dependency graph in its wire format.

Directories are searched recursively for *.json files. Several files are
merged in FQN order so the result does not depend on read order.`,
		Example: `  classgraph build decls.json
  classgraph build records/ -o graph.json --stats stats.json
  classgraph build records/ --duplicates first-wins --strict`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.pipelineOptions(cmd, &flags, args)

			result, err := c.runPipeline(ctx, &flags, opts)
			if result == nil {
				return err
			}

			if err := graph.WriteGraphFile(result.Graph, output); err != nil {
				return err
			}
			if statsPath != "" {
				if err := writeJSONFile(statsPath, result.Stats); err != nil {
					return err
				}
			}

			if quiet {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.success("Built graph")
			p.printBuild(result.Stats, result.CacheInfo.BuildHit)
			p.file(output)
			if statsPath != "" {
				p.file(statsPath)
			}
			if !result.Report.IsValid {
				p.warning("graph has %d structural problems", result.Report.Problems())
				p.nextStep("See the report", "classgraph validate --graph "+output)
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "graph.json", "graph output file")
	cmd.Flags().StringVar(&statsPath, "stats", "", "also write build statistics to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing on success")

	return cmd
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
