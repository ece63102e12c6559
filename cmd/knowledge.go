package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aitwy/aitwy-server/internal/client/chatbotapi"
	"github.com/aitwy/aitwy-server/pkg/util"
)

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage a chatbot's knowledge base",
	}
	cmd.AddCommand(
		newKnowledgeListCmd(),
		newKnowledgeAddCmd(),
		newKnowledgeUpdateCmd(),
		newKnowledgeDeleteCmd(),
	)
	return cmd
}

func newKnowledgeListCmd() *cobra.Command {
	var (
		page        chatbotapi.Page
		contentType string
	)
	cmd := &cobra.Command{
		Use:   "list <chatbot-id>",
		Short: "List knowledge items",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			items, err := d.chatbots.ListKnowledge(ctx, args[0], contentType, page)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				d.println("No knowledge items")
				return nil
			}
			w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE\tCREATED")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.ContentType, it.Title, formatTime(it.CreatedAt.Time))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&contentType, "type", "", "only items of this content type")
	bindPage(cmd, &page)
	return cmd
}

func newKnowledgeAddCmd() *cobra.Command {
	var item chatbotapi.KnowledgeItemCreate
	cmd := &cobra.Command{
		Use:   "add <chatbot-id>",
		Short: "Add a knowledge item",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			created, err := d.chatbots.CreateKnowledge(ctx, args[0], item)
			if err != nil {
				return err
			}
			d.printf("Knowledge item %s added\n", created.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&item.Title, "title", "", "item title")
	cmd.Flags().StringVar(&item.Content, "content", "", "item content")
	cmd.Flags().StringVar(&item.ContentType, "type", "text", "content type")
	cmd.Flags().StringVar(&item.SourceURL, "source", "", "source URL")
	markRequired(cmd, "title", "content")
	return cmd
}

func newKnowledgeUpdateCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "update <chatbot-id> <item-id>",
		Short: "Change a knowledge item's title or content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update chatbotapi.KnowledgeItemUpdate
			if cmd.Flags().Changed("title") {
				update.Title = util.Ptr(title)
			}
			if cmd.Flags().Changed("content") {
				update.Content = util.Ptr(content)
			}
			if update.Title == nil && update.Content == nil {
				return errors.New("nothing to update, pass --title or --content")
			}
			return run(func(ctx context.Context, d *deps, args []string) error {
				if _, err := d.chatbots.UpdateKnowledge(ctx, args[0], args[1], update); err != nil {
					return err
				}
				d.println("Knowledge item updated")
				return nil
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	return cmd
}

func newKnowledgeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chatbot-id> <item-id>",
		Short: "Delete a knowledge item",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.chatbots.DeleteKnowledge(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
}
