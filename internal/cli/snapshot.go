package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/store"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save and manage stored builds",
		Long: `Snapshots store a built graph with its statistics and validation report
in the configured store (a local directory or MongoDB), so it can be
served or compared later.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var (
		flags pipelineFlags
		name  string
	)

	cmd := &cobra.Command{
		Use:   "save [files or directories...]",
		Short: "Build the graph and store it as a snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.pipelineOptions(cmd, &flags, args)
			result, err := c.runPipeline(ctx, &flags, opts)
			if err != nil {
				return err
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap := store.NewSnapshot(name, result.Graph, result.Stats, result.Report)
			if err := st.Save(ctx, snap); err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.success("Saved snapshot %s", styleNumber.Render(snap.ID))
			p.stats(result.Graph.NodeCount(), result.Graph.EdgeCount(), result.CacheInfo.BuildHit)
			p.nextStep("Show it", "classgraph snapshot show "+snap.ID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name")

	return cmd
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.List(ctx)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			if len(list) == 0 {
				p.info("No snapshots")
				return nil
			}
			t := newTable("ID", "Name", "Created", "Nodes", "Edges", "Valid")
			for _, s := range list {
				valid := iconSuccess
				if !s.IsValid {
					valid = iconError
				}
				t.Row(s.ID, orDash(s.Name), s.CreatedAt.Local().Format(time.DateTime), strconv.Itoa(s.NodeCount), strconv.Itoa(s.EdgeCount), valid)
			}
			p.line(t.String())
			return nil
		},
	}
}

// snapshotShowCommand creates the "snapshot show" subcommand.
func (c *CLI) snapshotShowCommand() *cobra.Command {
	var (
		asJSON    bool
		graphPath string
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a snapshot's statistics and report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if graphPath != "" {
				if err := graph.WriteGraphFile(snap.BuildGraph(), graphPath); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				if err := enc.Encode(snap); err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}
				return nil
			}

			p := newPrinter(cmd.OutOrStdout())
			p.title("Snapshot " + snap.ID)
			p.keyValue("Name", orDash(snap.Name))
			p.keyValue("Created", snap.CreatedAt.Local().Format(time.DateTime))
			p.printBuild(snap.Stats, false)
			if snap.Report != nil {
				p.newline()
				p.printReport(snap.Report)
			}
			if graphPath != "" {
				p.file(graphPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().StringVar(&graphPath, "graph", "", "also write the snapshot graph to this file")

	return cmd
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a snapshot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).success("Deleted snapshot %s", args[0])
			return nil
		},
	}
}
