package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/cache"
	"github.com/matzehuels/classgraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the build, report and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())

			ch, err := c.Config.Cache.Open(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()

			switch ch := ch.(type) {
			case *cache.FileCache:
				n, err := ch.Clear()
				if err != nil {
					return err
				}
				p.success("Cleared %d cached entries", n)
				p.detail("Directory: %s", ch.Dir())
			case *cache.RedisCache:
				n, err := ch.Clear(ctx)
				if err != nil {
					return err
				}
				p.success("Cleared %d cached entries", n)
				p.detail("Redis: %s (prefix %q)", c.Config.Cache.Redis.Addr, c.Config.Cache.Redis.Prefix)
			default:
				p.info("Cache is disabled")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != config.BackendFile {
				return fmt.Errorf("cache backend %q has no directory", c.Config.Cache.Backend)
			}
			dir := c.Config.Cache.Dir
			if dir == "" {
				d, err := cache.DefaultDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache backend and disk usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd.OutOrStdout())
			cc := c.Config.Cache

			p.keyValue("Backend", cc.Backend)
			p.keyValue("TTL", cc.TTL.String())
			switch cc.Backend {
			case config.BackendRedis:
				p.keyValue("Address", cc.Redis.Addr)
				p.keyValue("Prefix", cc.Redis.Prefix)
			case config.BackendFile:
				ch, err := cc.Open(ctx)
				if err != nil {
					return err
				}
				defer ch.Close()
				fc, ok := ch.(*cache.FileCache)
				if !ok {
					return nil
				}
				u, err := fc.Usage()
				if err != nil {
					return err
				}
				p.keyValue("Directory", fc.Dir())
				p.keyValue("Entries", fmt.Sprint(u.Entries))
				p.keyValue("Size", formatBytes(u.Bytes))
			}
			return nil
		},
	}
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
