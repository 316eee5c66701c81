package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		graphPath string
	)

	cmd := &cobra.Command{
		Use:   "inspect [files or directories...]",
		Short: "Browse graph nodes interactively",
		Long: `Inspect opens a terminal browser over the graph nodes, ranked by the number
of incoming plus outgoing dependencies. The node under the cursor shows its
namespace, file and edges.`,
		Example: `  classgraph inspect records/
  classgraph inspect --graph graph.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if graphPath == "" && len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "give record files or --graph")
			}

			var g *graph.Graph
			if graphPath != "" {
				var err error
				if g, err = graph.ReadGraphFile(graphPath); err != nil {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "read graph")
				}
			} else {
				opts := c.pipelineOptions(cmd, &flags, args)
				opts.Strict = false
				result, err := c.runPipeline(ctx, &flags, opts)
				if err != nil {
					return err
				}
				g = result.Graph
			}

			prog := tea.NewProgram(NewNodeBrowserModel(g),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := prog.Run()
			if err != nil {
				return fmt.Errorf("node browser: %w", err)
			}
			if m, ok := final.(NodeBrowserModel); ok {
				if n := m.Selected(); n != nil {
					loggerFromContext(ctx).Debug("inspect closed", "node", n.ID)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&graphPath, "graph", "", "inspect a graph file instead of building one")

	return cmd
}
