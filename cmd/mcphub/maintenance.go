package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcphub/internal/app"
)

var (
	localizeOverwrite bool
	recategorizeAll   bool
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove entries that share a source repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			report, err := a.Service().Dedupe(ctx)
			if err != nil {
				return fmt.Errorf("failed to dedupe: %w", err)
			}
			return printJSON(cmd, report)
		})
	},
}

var localizeCmd = &cobra.Command{
	Use:   "localize",
	Short: "Write missing locale copies for every entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Service().LocalizeAll(ctx, localizeOverwrite)
			if err != nil {
				return fmt.Errorf("failed to localize: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d locale copies\n", n)
			return nil
		})
	},
}

var recategorizeCmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Reclassify entries whose category is missing or unknown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Service().Recategorize(ctx, !recategorizeAll)
			if err != nil {
				return fmt.Errorf("failed to recategorize: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recategorized %d entries\n", n)
			return nil
		})
	},
}

var refreshMetadataCmd = &cobra.Command{
	Use:   "refresh-metadata",
	Short: "Refresh stars, forks and commit data from GitHub",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Service().RefreshMetadata(ctx)
			if err != nil {
				return fmt.Errorf("failed to refresh metadata: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %d entries\n", n)
			return nil
		})
	},
}

func init() {
	localizeCmd.Flags().BoolVar(&localizeOverwrite, "overwrite", false, "Retranslate locales that already have a copy")
	recategorizeCmd.Flags().BoolVar(&recategorizeAll, "all", false, "Reclassify every entry, not only invalid ones")

	rootCmd.AddCommand(dedupeCmd, localizeCmd, recategorizeCmd, refreshMetadataCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
