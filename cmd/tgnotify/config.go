package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if len(args) == 1 {
				path = args[0]
			}
			cfg, resolved, err := config.LoadOrEnv(path)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := resolved
			if source == "" {
				source = "environment"
			}
			fmt.Fprintf(out, "Configuration OK (%s)\n", source)
			fmt.Fprintf(out, "\nBots (default: %s):\n", cfg.Default)
			for _, name := range sortedKeys(cfg.Bots) {
				b := cfg.Bots[name]
				chat := b.ChatID
				if chat == "" {
					chat = "-"
				}
				fmt.Fprintf(out, "  %s\ttoken %s\tchat %s\n", name, maskToken(b.Token), chat)
			}
			if len(cfg.Schedules) > 0 {
				fmt.Fprintf(out, "\nSchedules:\n")
				for _, s := range cfg.Schedules {
					fmt.Fprintf(out, "  %s\t%s\n", s.Name, s.Schedule)
				}
			}
			return nil
		},
	})

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				paths := config.SearchPaths()
				output = paths[0]
			}
			cfg, err := config.RunWizard(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.Write(output, cfg); err != nil {
				return err
			}
			abs, _ := filepath.Abs(output)
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", abs)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the file (defaults to the user config directory)")
	cmd.AddCommand(initCmd)

	return cmd
}

// maskToken keeps the bot ID and hides the secret part of a token.
func maskToken(token string) string {
	id, secret, ok := strings.Cut(token, ":")
	if !ok {
		return "****"
	}
	if len(secret) <= 4 {
		return id + ":****"
	}
	return id + ":****" + secret[len(secret)-4:]
}
