package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/pkg/message"
)

var errNoChat = errors.New("no destination chat: pass --chat or set chat_id for the bot")

type sendFlags struct {
	chat      string
	topic     string
	file      string
	url       string
	kind      string
	parseMode string
	silent    bool
	protect   bool
	noPreview bool
	replyTo   int
}

func sendCmd() *cobra.Command {
	var f sendFlags
	cmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send a text message or a file",
		Long: `Send a text message or a file to a chat.

Text is taken from the arguments, or from standard input when there are
none. Messages longer than 4096 characters are split into several
messages. With --file or --url the text becomes the caption.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if text == "" && f.file == "" && f.url == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = strings.TrimRight(string(raw), "\n")
			}

			chat, topic := f.chat, f.topic
			if chat == "" {
				chat, topic = a.defaultChat()
				if f.topic != "" {
					topic = f.topic
				}
			}
			if chat == "" {
				return errNoChat
			}

			opts := message.Options{
				ChatID:    chat,
				TopicID:   topic,
				Bot:       a.bot,
				Silent:    f.silent,
				Protected: f.protect,
				ReplyTo:   f.replyTo,
			}
			msg, err := buildMessage(f, opts, text)
			if err != nil {
				return err
			}

			resp, err := a.tg.Send(cmd.Context(), msg, "")
			if err != nil {
				return err
			}
			a.logger.Debug("message sent", "chat", chat, "method", msg.APIMethod())
			fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d to %s\n", resp.MessageID(), chat)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.chat, "chat", "", "Destination chat ID or @channel (defaults to the bot's chat_id)")
	cmd.Flags().StringVar(&f.topic, "topic", "", "Forum topic (message thread) ID")
	cmd.Flags().StringVar(&f.file, "file", "", "Local file to upload")
	cmd.Flags().StringVar(&f.url, "url", "", "Remote file URL or file_id to send")
	cmd.Flags().StringVar(&f.kind, "type", "document", "File type: photo, document, video, audio, voice or animation")
	cmd.Flags().StringVar(&f.parseMode, "parse-mode", "HTML", "Parse mode: HTML, MarkdownV2 or Markdown")
	cmd.Flags().BoolVar(&f.silent, "silent", false, "Send without notification sound")
	cmd.Flags().BoolVar(&f.protect, "protect", false, "Protect content from forwarding and saving")
	cmd.Flags().BoolVar(&f.noPreview, "no-preview", false, "Disable link previews")
	cmd.Flags().IntVar(&f.replyTo, "reply-to", 0, "Message ID to reply to")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func parseMode(s string) (message.ParseMode, error) {
	switch strings.ToLower(s) {
	case "", "html":
		return message.HTML, nil
	case "markdownv2", "mdv2":
		return message.MarkdownV2, nil
	case "markdown", "md":
		return message.Markdown, nil
	default:
		return "", fmt.Errorf("unknown parse mode %q", s)
	}
}

func buildMessage(f sendFlags, opts message.Options, text string) (message.Message, error) {
	mode, err := parseMode(f.parseMode)
	if err != nil {
		return nil, err
	}

	if f.file == "" && f.url == "" {
		if strings.TrimSpace(text) == "" {
			return nil, errors.New("nothing to send: empty message")
		}
		return &message.Text{Options: opts, Body: text, ParseMode: mode, DisablePreview: f.noPreview}, nil
	}

	media := message.Media{File: f.url, LocalPath: f.file, Caption: text, ParseMode: mode}
	switch strings.ToLower(f.kind) {
	case "photo":
		return &message.Photo{Options: opts, Media: media}, nil
	case "document", "":
		return &message.Document{Options: opts, Media: media}, nil
	case "video":
		return &message.Video{Options: opts, Media: media}, nil
	case "audio":
		return &message.Audio{Options: opts, Media: media}, nil
	case "voice":
		return &message.Voice{Options: opts, Media: media}, nil
	case "animation":
		return &message.Animation{Options: opts, Media: media}, nil
	default:
		return nil, fmt.Errorf("unknown file type %q", f.kind)
	}
}
