package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newResultsCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List recently graded submissions from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.results == nil {
				return fmt.Errorf("no database configured, set DATABASE_URL")
			}

			results, err := a.results.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no graded submissions yet")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-40s %6s %6s %7s  %s\n", "SUBMISSION", "SELF", "FINAL", "DIFF", "GRADED AT")
			for _, r := range results {
				fmt.Fprintf(out, "%-40s %6d %6.2f %+7.2f  %s\n",
					r.SubmissionID, r.SelfGrade, r.FinalScore, r.GradeDifference(),
					r.GradedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max results to list")

	return cmd
}
