package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the bot's webhook registration",
	}
	cmd.AddCommand(webhookSetCmd(), webhookDeleteCmd(), webhookInfoCmd())
	return cmd
}

func webhookSetCmd() *cobra.Command {
	var (
		url, secret    string
		dropPending    bool
		maxConnections int
		allowed        []string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Register the webhook URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if url == "" {
				url = a.cfg.Webhook.URL
			}
			if url == "" {
				return errors.New("--url is required (or set webhook.url)")
			}
			if secret == "" {
				secret = a.cfg.Webhook.Secret
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			opts := botapi.Params{}.
				Add("drop_pending_updates", dropPending).
				Add("max_connections", maxConnections)
			if len(allowed) > 0 {
				opts["allowed_updates"] = allowed
			}
			if _, err := client.SetWebhook(cmd.Context(), url, secret, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", url)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Public HTTPS URL (defaults to webhook.url)")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret token sent in X-Telegram-Bot-Api-Secret-Token (defaults to webhook.secret)")
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "Drop pending updates")
	cmd.Flags().IntVar(&maxConnections, "max-connections", 0, "Maximum simultaneous connections (1-100)")
	cmd.Flags().StringSliceVar(&allowed, "allowed-updates", nil, "Update types to receive")
	return cmd
}

func webhookDeleteCmd() *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if _, err := client.DeleteWebhook(cmd.Context(), dropPending, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "Drop pending updates")
	return cmd
}

func webhookInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			info, err := client.GetWebhookInfo(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			url := info.URL
			if url == "" {
				url = "(not set)"
			}
			fmt.Fprintf(tw, "URL:\t%s\n", url)
			fmt.Fprintf(tw, "Pending Updates:\t%d\n", info.PendingUpdateCount)
			if info.MaxConnections > 0 {
				fmt.Fprintf(tw, "Max Connections:\t%d\n", info.MaxConnections)
			}
			if info.IPAddress != "" {
				fmt.Fprintf(tw, "IP Address:\t%s\n", info.IPAddress)
			}
			if info.LastErrorMessage != "" {
				when := time.Unix(info.LastErrorDate, 0).UTC().Format(time.RFC3339)
				fmt.Fprintf(tw, "Last Error:\t%s (%s)\n", info.LastErrorMessage, when)
			}
			return tw.Flush()
		},
	}
}
