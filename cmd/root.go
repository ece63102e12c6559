package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aitwy/aitwy-server/internal/client/authapi"
	"github.com/aitwy/aitwy-server/internal/client/chatbotapi"
	"github.com/aitwy/aitwy-server/internal/client/session"
	"github.com/aitwy/aitwy-server/internal/config"
)

// NewRootCmd builds the aitwy command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aitwy",
		Short:         "AITWY account server and chatbot dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newHealthCmd(),
		newAuthCmd(),
		newChatbotCmd(),
		newKnowledgeCmd(),
		newScrapingCmd(),
		newConversationsCmd(),
	)
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// deps are the clients a dashboard command works with.
type deps struct {
	store    *session.Store
	auth     *authapi.Client
	chatbots *chatbotapi.Client
	out      io.Writer
}

func newDeps(cmd *cobra.Command) (*deps, error) {
	conf, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	path := conf.SessionFile
	if path == "" {
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}
	store := session.NewStore(path)
	return &deps{
		store:    store,
		auth:     authapi.New(conf.AuthAPIURL, conf.Timeout, store),
		chatbots: chatbotapi.New(conf.ChatbotAPIURL, conf.Timeout, store),
		out:      cmd.OutOrStdout(),
	}, nil
}

func (d *deps) println(a ...any) {
	fmt.Fprintln(d.out, a...)
}

func (d *deps) printf(format string, a ...any) {
	fmt.Fprintf(d.out, format, a...)
}

func (d *deps) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	d.println(string(data))
	return nil
}

// run adapts a dashboard action into a cobra RunE.
func run(fn func(ctx context.Context, d *deps, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd)
		if err != nil {
			return err
		}
		return fn(cmd.Context(), d, args)
	}
}
