package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcphub/internal/app"
	"github.com/MrSnakeDoc/mcphub/internal/enrich"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the enrichment cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of cached enrichment records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c, ok := a.Cache().(enrich.Counter)
			if !ok {
				return errors.New("cache backend cannot report its size")
			}
			n, err := c.Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count cache records: %w", err)
			}
			return printJSON(cmd, map[string]any{
				"backend": a.Config().CacheBackend,
				"records": n,
			})
		})
	},
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every enrichment record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			f, ok := a.Cache().(enrich.Flusher)
			if !ok {
				return errors.New("cache backend cannot be flushed")
			}
			if err := f.Flush(ctx); err != nil {
				return fmt.Errorf("failed to flush cache: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cache flushed")
			return nil
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop index entries of expired records (redis backend)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			p := a.Pruner()
			if p == nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nothing to prune for backend %s\n", a.Config().CacheBackend)
				return nil
			}
			n, err := p.Prune(ctx)
			if err != nil {
				return fmt.Errorf("failed to prune cache: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pruned %d keys\n", n)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheFlushCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
