package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newScrapingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraping",
		Short: "Inspect and retry website scraping jobs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <job-id>",
			Short: "Show a scraping job",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, d *deps, args []string) error {
				job, err := d.chatbots.ScrapingJob(ctx, args[0])
				if err != nil {
					return err
				}
				return d.printJSON(job)
			}),
		},
		&cobra.Command{
			Use:   "retry <job-id>",
			Short: "Retry a failed scraping job",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, d *deps, args []string) error {
				res, err := d.chatbots.RetryScrapingJob(ctx, args[0])
				if err != nil {
					return err
				}
				d.println(res.Message)
				return nil
			}),
		},
	)
	return cmd
}
