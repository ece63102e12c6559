package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aitwy/aitwy-server/internal/client/chatbotapi"
)

func newChatbotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chatbot",
		Aliases: []string{"chatbots"},
		Short:   "Create, inspect and talk to chatbots",
	}
	cmd.AddCommand(
		newChatbotCreateCmd(),
		newChatbotListCmd(),
		newChatbotGetCmd(),
		newChatbotStatusCmd(),
		newChatbotWaitCmd(),
		newChatbotFinalizeCmd(),
		newChatbotDeleteCmd(),
		newChatbotChatCmd(),
	)
	return cmd
}

type pollFlags struct {
	interval time.Duration
	timeout  time.Duration
}

func (f *pollFlags) bind(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.interval, "poll-interval", chatbotapi.DefaultPollInterval, "status poll interval")
	cmd.Flags().DurationVar(&f.timeout, "timeout", chatbotapi.DefaultProvisionTimeout, "give up waiting after this long")
}

func (f *pollFlags) provisioner(d *deps) *chatbotapi.Provisioner {
	return chatbotapi.NewProvisioner(d.chatbots,
		chatbotapi.WithPollInterval(f.interval),
		chatbotapi.WithTimeout(f.timeout),
		chatbotapi.WithStatusHook(func(s chatbotapi.StatusResponse) {
			d.printf("status: %s\n", s.Status)
		}),
	)
}

func newChatbotCreateCmd() *cobra.Command {
	var (
		req    chatbotapi.WizardStartRequest
		noWait bool
		poll   pollFlags
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a chatbot from a website and wait until it is ready",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			if noWait {
				wizard, err := d.chatbots.StartWizard(ctx, req)
				if err != nil {
					return err
				}
				d.printf("Chatbot %s created, scraping job %s (%s)\n", wizard.ChatbotID, wizard.ScrapingJobID, wizard.Status)
				return nil
			}
			res, err := poll.provisioner(d).Create(ctx, req)
			if res != nil {
				d.printf("Chatbot %s, scraping job %s\n", res.Wizard.ChatbotID, res.Wizard.ScrapingJobID)
			}
			if err != nil {
				return provisionError(err)
			}
			d.printf("Chatbot is %s\n", res.Status.Status)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.WebsiteURL, "url", "", "website to build the chatbot from")
	cmd.Flags().StringVar(&req.Name, "name", "", "chatbot name")
	cmd.Flags().StringVar(&req.Description, "description", "", "chatbot description")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "return once the wizard has started")
	poll.bind(cmd)
	markRequired(cmd, "url", "name")
	return cmd
}

func newChatbotWaitCmd() *cobra.Command {
	var poll pollFlags
	cmd := &cobra.Command{
		Use:   "wait <chatbot-id>",
		Short: "Wait for a chatbot that is still being built",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			status, err := poll.provisioner(d).Wait(ctx, args[0])
			if err != nil {
				return provisionError(err)
			}
			d.printf("Chatbot is %s\n", status.Status)
			return nil
		}),
	}
	poll.bind(cmd)
	return cmd
}

func provisionError(err error) error {
	if errors.Is(err, chatbotapi.ErrProvisionFailed) {
		return fmt.Errorf("%w, see `aitwy scraping get` for details", err)
	}
	return err
}

func newChatbotListCmd() *cobra.Command {
	var page chatbotapi.Page
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chatbots",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			bots, err := d.chatbots.List(ctx, page)
			if err != nil {
				return err
			}
			if len(bots) == 0 {
				d.println("No chatbots yet")
				return nil
			}
			w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tWEBSITE\tCREATED")
			for _, b := range bots {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Name, b.Status, b.WebsiteURL, formatTime(b.CreatedAt.Time))
			}
			return w.Flush()
		}),
	}
	bindPage(cmd, &page)
	return cmd
}

func newChatbotGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <chatbot-id>",
		Short: "Show a chatbot",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			bot, err := d.chatbots.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return d.printJSON(bot)
		}),
	}
}

func newChatbotStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <chatbot-id>",
		Short: "Show build status and progress",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			status, err := d.chatbots.Status(ctx, args[0])
			if err != nil {
				return err
			}
			return d.printJSON(status)
		}),
	}
}

func newChatbotFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <chatbot-id>",
		Short: "Mark a completed chatbot as ready",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.chatbots.Finalize(ctx, args[0])
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
}

func newChatbotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chatbot-id>",
		Short: "Delete a chatbot",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.chatbots.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			d.println(res.Message)
			return nil
		}),
	}
}

func newChatbotChatCmd() *cobra.Command {
	var conversationID string
	cmd := &cobra.Command{
		Use:   "chat <chatbot-id> <message>",
		Short: "Send a message to a chatbot",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, d *deps, args []string) error {
			res, err := d.chatbots.Chat(ctx, args[0], chatbotapi.ChatRequest{
				Message:        args[1],
				ConversationID: conversationID,
			})
			if err != nil {
				return err
			}
			d.println(res.Response)
			for _, src := range res.Sources {
				d.println("  source:", src)
			}
			d.println("conversation:", res.ConversationID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	return cmd
}

func bindPage(cmd *cobra.Command, page *chatbotapi.Page) {
	cmd.Flags().IntVar(&page.Skip, "skip", 0, "items to skip")
	cmd.Flags().IntVar(&page.Limit, "limit", 0, "max items to return, 0 for the server default")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
