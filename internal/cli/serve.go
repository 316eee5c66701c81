package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/pipeline"
	"github.com/matzehuels/classgraph/pkg/server"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		listen  string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve [files or directories...]",
		Short: "Serve the graph, its report and snapshots over HTTP",
		Long: `Serve builds the graph from the given record files and exposes it to
visualization clients:

  GET    /healthz
  GET    /api/graph, /api/stats, /api/report
  GET    /api/graph.dot, /api/graph.svg
  POST   /api/build
  GET    /api/snapshots
  POST   /api/snapshots
  GET    /api/snapshots/{id}, /api/snapshots/{id}/graph.svg
  DELETE /api/snapshots/{id}

Without arguments the server starts empty and waits for POST /api/build.`,
		Example: `  classgraph serve records/
  classgraph serve --listen :9090
  classgraph serve records/ --no-store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts := c.pipelineOptions(cmd, &flags, args)
			var initial *pipeline.Result
			if len(args) > 0 {
				result, err := c.runPipeline(ctx, &flags, opts)
				if result == nil {
					return err
				}
				if err != nil {
					logger.Warn("serving invalid graph", "err", err)
				}
				initial = result
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var st store.Store
			if !noStore {
				if st, err = c.openStore(ctx); err != nil {
					return err
				}
				defer st.Close()
			}

			// Posted builds carry their own records.
			postOpts := opts
			postOpts.Inputs = nil
			postOpts.Records = []source.Record{}

			srv, err := server.New(server.Config{
				Result:       initial,
				Runner:       runner,
				Options:      postOpts,
				Store:        st,
				Logger:       logger,
				SVGCacheSize: c.Config.Server.SVGCacheSize,
			})
			if err != nil {
				return err
			}

			addr := c.Config.Server.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}
			if initial != nil {
				logger.Info("serving graph", "nodes", initial.Graph.NodeCount(), "edges", initial.Graph.EdgeCount(), "hash", shortHash(initial.GraphHash))
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "listen address")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the snapshot endpoints")

	return cmd
}

// shortHash abbreviates a content hash for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

