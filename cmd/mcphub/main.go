package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mcphub/internal/app"
	"github.com/MrSnakeDoc/mcphub/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mcphub",
	Short: "MCP server catalog backend",
	Long: `mcphub serves the localized MCP server catalog over HTTP and runs
the maintenance jobs that keep it deduplicated, categorized and translated.
Without a subcommand it starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background schedulers",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Get())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context())
	if err != nil {
		return err
	}
	return a.Run()
}

// withApp builds the app for a one-shot command and drains it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("❌ mcphub failed: %v", err)
	}
}
