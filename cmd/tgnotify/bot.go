package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

func getMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "getme",
		Short: "Show the identity of the selected bot",
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
			me, err := client.GetMe(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID:\t%d\n", me.ID)
			fmt.Fprintf(tw, "Name:\t%s\n", strings.TrimSpace(me.FirstName+" "+me.LastName))
			fmt.Fprintf(tw, "Username:\t@%s\n", me.Username)
			fmt.Fprintf(tw, "Is Bot:\t%s\n", yesNo(me.IsBot))
			fmt.Fprintf(tw, "Can Join Groups:\t%s\n", yesNo(me.CanJoinGroups))
			fmt.Fprintf(tw, "Can Read Messages:\t%s\n", yesNo(me.CanReadAllGroupMessages))
			fmt.Fprintf(tw, "Supports Inline:\t%s\n", yesNo(me.SupportsInlineQueries))
			return tw.Flush()
		},
	}
}

func commandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage the bot's command menu",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the registered commands",
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
			commands, err := client.GetMyCommands(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if len(commands) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No commands registered.")
				return nil
			}
			for _, c := range commands {
				fmt.Fprintf(cmd.OutOrStdout(), "/%s - %s\n", c.Command, c.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <command=description>...",
		Short: "Replace the command menu",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := parseBotCommands(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if _, err := client.SetMyCommands(cmd.Context(), commands, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %d commands.\n", len(commands))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the command menu",
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
			if _, err := client.DeleteMyCommands(cmd.Context(), nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Commands deleted.")
			return nil
		},
	})

	return cmd
}

func parseBotCommands(args []string) ([]botapi.BotCommand, error) {
	commands := make([]botapi.BotCommand, 0, len(args))
	for _, arg := range args {
		name, desc, ok := strings.Cut(arg, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "/")
		if !ok || name == "" || strings.TrimSpace(desc) == "" {
			return nil, fmt.Errorf("invalid command %q: expected name=description", arg)
		}
		commands = append(commands, botapi.BotCommand{Command: name, Description: strings.TrimSpace(desc)})
	}
	return commands, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
