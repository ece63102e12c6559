package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aitwy/aitwy-server/internal/client/chatbotapi"
)

func newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Browse and delete chatbot conversations",
	}
	cmd.AddCommand(
		newConversationsListCmd(),
		newConversationsShowCmd(),
		newConversationsDeleteCmd(),
		newConversationsClearCmd(),
	)
	return cmd
}

func newConversationsListCmd() *cobra.Command {
	var page chatbotapi.Page
	cmd := &cobra.Command{
		Use:   "list <chatbot-id>",
		Short: "List conversations, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			list, err := d.chatbots.ListConversations(ctx, args[0], page)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CONVERSATION\tTITLE\tUPDATED")
			for _, c := range list.Conversations {
				title := c.Title
				if title == "" {
					title = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ConversationID, title, formatTime(c.UpdatedAt.Time))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			d.printf("%d of %d\n", len(list.Conversations), list.Total)
			return nil
		}),
	}
	bindPage(cmd, &page)
	return cmd
}

func newConversationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <chatbot-id> <conversation-id>",
		Short: "Print a conversation's messages",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			history, err := d.chatbots.Conversation(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			for _, m := range history.Messages {
				d.printf("[%s] %s: %s\n", formatTime(m.CreatedAt.Time), m.Role, m.Content)
			}
			return nil
		}),
	}
}

func newConversationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chatbot-id> <conversation-id>",
		Short: "Delete one conversation",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.chatbots.DeleteConversation(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
}

func newConversationsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <chatbot-id>",
		Short: "Delete every conversation of a chatbot",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.chatbots.DeleteAllConversations(ctx, args[0])
			if err != nil {
				return err
			}
			d.printf("%s (%d deleted)\n", res.Message, res.DeletedCount)
			return nil
		}),
	}
}
