package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/pipeline"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		graphPath string
		asJSON    bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "validate [files or directories...]",
		Short: "Report structural problems in the dependency graph",
		Long: `Validate builds the graph (or reads one written by "classgraph build") and
reports orphaned nodes, multiple inheritance, circular dependencies, the
longest dependency chains, connectivity rankings and connected subgraphs.

With --strict the command exits non-zero when the graph is invalid.`,
		Example: `  classgraph validate records/
  classgraph validate --graph graph.json --json
  classgraph validate records/ --top 10 --max-path 12 -o report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if graphPath == "" && len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "give record files or --graph")
			}

			opts := c.pipelineOptions(cmd, &flags, args)
			var report *validate.Report
			var runErr error
			if graphPath != "" {
				g, err := graph.ReadGraphFile(graphPath)
				if err != nil {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "read graph")
				}
				report, err = c.validateGraph(cmd, &flags, g, opts)
				if err != nil {
					return err
				}
				if opts.Strict && !report.IsValid {
					runErr = errors.New(errors.ErrCodeInvalidGraph, "graph is invalid: %d problems", report.Problems())
				}
			} else {
				result, err := c.runPipeline(ctx, &flags, opts)
				if result == nil {
					return err
				}
				report, runErr = result.Report, err
			}

			if output != "" {
				if err := writeJSONFile(output, report); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("encode report: %w", err)
				}
				return runErr
			}

			p := newPrinter(cmd.OutOrStdout())
			p.printReport(report)
			if output != "" {
				p.newline()
				p.file(output)
			}
			return runErr
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&graphPath, "graph", "", "validate a graph file instead of building one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the JSON report to this file")

	return cmd
}

// validateGraph validates an already built graph through the cached runner.
func (c *CLI) validateGraph(cmd *cobra.Command, flags *pipelineFlags, g *graph.Graph, opts pipeline.Options) (*validate.Report, error) {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	// The runner needs an input source even though nothing is loaded.
	opts.Records = []source.Record{}
	spin := c.startSpinner(ctx, "validating graph")
	defer spin.Stop()
	return runner.Validate(ctx, g, opts)
}
