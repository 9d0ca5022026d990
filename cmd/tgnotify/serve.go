package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/internal/telemetry"
	"github.com/flemzord/tgnotify/internal/webhook"
	"github.com/flemzord/tgnotify/pkg/botapi"
)

func serveCmd() *cobra.Command {
	var listen string
	var register bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook receiver and scheduled notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			tc := a.cfg.Telemetry.Tracing
			shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
				Endpoint:    tc.Endpoint,
				Insecure:    tc.Insecure,
				ServiceName: tc.ServiceName,
				SampleRatio: tc.SampleRatio,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
					a.logger.Warn("tracing shutdown failed", "error", err)
				}
			}()

			sched, err := a.scheduler()
			if err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}

			wc := a.cfg.Webhook
			if listen == "" {
				listen = wc.Listen
			}
			botName := wc.Bot
			if a.bot != "" {
				botName = a.bot
			}
			client, err := a.tg.Bot(botName)
			if err != nil {
				return err
			}

			opts := []webhook.Option{webhook.WithRecorder(a.metrics)}
			if a.cfg.Telemetry.Metrics {
				opts = append(opts, webhook.WithMetrics(telemetry.Handler(a.registry)))
			}
			srv := webhook.New(webhook.Config{
				Listen: listen,
				Path:   wc.Path,
				Secret: wc.Secret,
			}, updateHandler(client, a.logger), a.logger, opts...)

			if err := srv.Start(ctx); err != nil {
				_ = sched.Stop(context.WithoutCancel(ctx))
				return err
			}

			if register && wc.URL != "" {
				if _, err := client.SetWebhook(ctx, wc.URL, wc.Secret, nil); err != nil {
					a.logger.Error("webhook registration failed", "url", wc.URL, "error", err)
				} else {
					a.logger.Info("webhook registered", "url", wc.URL)
				}
			}

			<-ctx.Done()
			a.logger.Info("shutting down")

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			return errors.Join(srv.Shutdown(stopCtx), sched.Stop(stopCtx))
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (defaults to webhook.listen)")
	cmd.Flags().BoolVar(&register, "register", false, "Call setWebhook with webhook.url on startup")
	return cmd
}

// updateHandler answers the built-in commands and logs everything else.
func updateHandler(client *botapi.Client, logger *slog.Logger) webhook.Handler {
	mux := webhook.NewCommandMux()

	mux.Handle("chatid", func(ctx context.Context, msg *botapi.Message, _ string) error {
		text := fmt.Sprintf("Chat ID: <code>%d</code>", msg.Chat.ID)
		opts := botapi.Params{}
		if msg.MessageThreadID != 0 {
			text += fmt.Sprintf("\nTopic ID: <code>%d</code>", msg.MessageThreadID)
			opts["message_thread_id"] = msg.MessageThreadID
		}
		_, err := client.SendMessage(ctx, strconv.FormatInt(msg.Chat.ID, 10), text, opts)
		return err
	})

	mux.Handle("ping", func(ctx context.Context, msg *botapi.Message, _ string) error {
		_, err := client.SendMessage(ctx, strconv.FormatInt(msg.Chat.ID, 10), "pong", nil)
		return err
	})

	mux.Fallback(webhook.HandlerFunc(func(_ context.Context, u botapi.Update) error {
		logger.Info("update received", "update_id", u.UpdateID, "kind", webhook.UpdateKind(u))
		return nil
	}))

	return mux
}
