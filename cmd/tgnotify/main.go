// Package main is the entry point for the tgnotify CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tgnotify",
		Short:         "Send Telegram notifications and manage bots from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringP("bot", "b", "", "Bot name (defaults to the configured default bot)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		versionCmd(),
		getMeCmd(),
		sendCmd(),
		broadcastCmd(),
		webhookCmd(),
		commandsCmd(),
		configCmd(),
		scheduleCmd(),
		serveCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tgnotify %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// printError reports err, preferring the remote description of API errors.
func printError(w io.Writer, err error) {
	var apiErr *botapi.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "Error: Telegram API (%d): %s\n", apiErr.StatusCode, apiErr.Description)
		if apiErr.IsRateLimited() && apiErr.RetryAfter != nil {
			fmt.Fprintf(w, "Retry after %d seconds.\n", *apiErr.RetryAfter)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
