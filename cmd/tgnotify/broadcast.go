package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func broadcastCmd() *cobra.Command {
	var (
		chats     []string
		parseMode string
		silent    bool
		protect   bool
		delay     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "broadcast <text...>",
		Short: "Send the same text to several chats",
		Long: `Send the same text to several chats, one after the other.

A failure for one chat does not stop the others. The command exits with an
error when at least one delivery failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(chats) == 0 {
				return errors.New("at least one --chat is required")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			b := a.tg.Broadcast(chats...).Bot(a.bot).RateLimit(delay)
			text := strings.Join(args, " ")
			switch strings.ToLower(parseMode) {
			case "", "html":
				b.HTML(text)
			case "markdownv2", "mdv2":
				b.Markdown(text)
			default:
				return fmt.Errorf("unsupported parse mode %q for broadcast", parseMode)
			}
			if silent {
				b.Silent()
			}
			if protect {
				b.Protected()
			}
			b.OnFailure(func(chatID string, err error) {
				a.logger.Warn("broadcast delivery failed", "chat", chatID, "error", err)
			})

			failed := 0
			for _, r := range b.Send(cmd.Context()) {
				if r.OK() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tok\tmessage %d\n", r.ChatID, r.Response.MessageID())
					continue
				}
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tfailed\t%v\n", r.ChatID, r.Err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deliveries failed", failed, len(chats))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&chats, "chat", nil, "Destination chat IDs (repeatable or comma separated)")
	cmd.Flags().StringVar(&parseMode, "parse-mode", "HTML", "Parse mode: HTML or MarkdownV2")
	cmd.Flags().BoolVar(&silent, "silent", false, "Send without notification sound")
	cmd.Flags().BoolVar(&protect, "protect", false, "Protect content from forwarding and saving")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between destinations, e.g. 50ms")
	return cmd
}
