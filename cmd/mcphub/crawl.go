package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcphub/internal/app"
	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/sources/awesome"
)

const defaultCrawlURL = "https://github.com/modelcontextprotocol/servers"

var (
	crawlURL    string
	crawlRepo   string
	crawlBranch string
	crawlSubmit bool
	crawlOutput string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Extract server listings from a curated markdown list",
	Long: `crawl reads a curated list (by default the modelcontextprotocol/servers
README), extracts every GitHub repository linked from its list items and
prints them as JSON. With --submit each server listing is submitted to the
catalog instead; listings that already exist are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			doc := a.Fetcher().FetchDocument(ctx, crawlURL)
			if doc == "" {
				return fmt.Errorf("failed to fetch %s", crawlURL)
			}

			opts := awesome.Options{BaseRepo: crawlRepo, Branch: crawlBranch}
			listings := awesome.Parse([]byte(doc), opts)
			a.Logger().Info("crawl parsed",
				logger.String("url", crawlURL),
				logger.Int("listings", len(listings)))

			if crawlSubmit {
				return submitListings(ctx, cmd, a, awesome.Servers(listings))
			}
			return writeResult(cmd, awesome.NewResult(listings, a.Fetcher().DocumentURL(crawlURL), opts, time.Now()))
		})
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlURL, "url", defaultCrawlURL, "Repository or markdown document to crawl")
	crawlCmd.Flags().StringVar(&crawlRepo, "repo", awesome.DefaultBaseRepo, "Repository that relative links resolve against")
	crawlCmd.Flags().StringVar(&crawlBranch, "branch", awesome.DefaultBranch, "Branch that relative links resolve against")
	crawlCmd.Flags().BoolVar(&crawlSubmit, "submit", false, "Submit server listings to the catalog")
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(crawlCmd)
}

func writeResult(cmd *cobra.Command, res awesome.Result) error {
	if crawlOutput == "" {
		return printJSON(cmd, res)
	}
	f, err := os.Create(crawlOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() { _ = f.Close() }()
	return encodeJSON(f, res)
}

func submitListings(ctx context.Context, cmd *cobra.Command, a *app.App, listings []awesome.Listing) error {
	var created, existing, rejected int
	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}

		e, err := a.Service().Submit(ctx, l.URL)
		var conflict *domain.ConflictError
		var rej *domain.RejectedError
		switch {
		case err == nil:
			created++
			a.Logger().Info("crawl submitted",
				logger.String("url", l.URL),
				logger.String("entry_id", e.ID))
		case errors.As(err, &conflict):
			existing++
		case errors.As(err, &rej):
			rejected++
			a.Logger().Warn("crawl listing rejected",
				logger.String("url", l.URL),
				logger.String("reason", rej.Reason))
		default:
			return fmt.Errorf("failed to submit %s: %w", l.URL, err)
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %d, existing %d, rejected %d\n", created, existing, rejected)
	return nil
}
