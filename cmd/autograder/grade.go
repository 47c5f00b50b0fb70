package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skurihin/autograder/internal/domain"
)

func newGradeCmd(flags *rootFlags) *cobra.Command {
	var (
		selfGrade    int
		textPath     string
		submissionID string
	)

	cmd := &cobra.Command{
		Use:   "grade <submission.pdf>",
		Short: "Grade a single submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.service.Grade(ctx, &domain.GradingRequest{
				PDFPath:      args[0],
				TextPath:     textPath,
				SelfGrade:    selfGrade,
				SubmissionID: submissionID,
			})
			if err != nil {
				return err
			}

			printResult(cmd, result)
			printCosts(cmd, a)
			return nil
		},
	}

	cmd.Flags().IntVar(&selfGrade, "self-grade", 0, "student's self-assessed grade, 0-100")
	cmd.Flags().StringVar(&textPath, "text", "", "pre-extracted text file (default: .txt next to the PDF)")
	cmd.Flags().StringVar(&submissionID, "id", "", "submission id (default: derived from the file name)")
	_ = cmd.MarkFlagRequired("self-grade")

	return cmd
}

func printResult(cmd *cobra.Command, result *domain.GradingResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Submission:  %s\n", result.SubmissionID)
	fmt.Fprintf(out, "Final score: %.2f/100\n", result.FinalScore)
	fmt.Fprintf(out, "Self grade:  %d/100 (multiplier %.1fx)\n", result.SelfGrade, result.CriticismMultiplier)
	fmt.Fprintf(out, "Difference:  %+.2f\n", result.FinalScore-float64(result.SelfGrade))
	fmt.Fprintf(out, "%s\n", result.ComparisonMessage)
}

func printCosts(cmd *cobra.Command, a *app) {
	if a.costs == nil {
		return
	}
	report := a.costs.Report()
	if report.APICalls == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "API usage:   %d calls, %d tokens, $%.4f\n",
		report.APICalls, report.TotalTokens, report.TotalCostUSD)
}
