package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skurihin/autograder/internal/config"
	"github.com/skurihin/autograder/internal/domain"
	"github.com/skurihin/autograder/internal/parser"
)

// newValidateCmd checks a submission without spending any API budget:
// request fields, the PDF file, the extracted text, and the rubric.
func newValidateCmd(flags *rootFlags) *cobra.Command {
	var (
		selfGrade int
		textPath  string
	)

	cmd := &cobra.Command{
		Use:   "validate <submission.pdf>",
		Short: "Pre-flight check a submission without grading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			req := &domain.GradingRequest{
				PDFPath:   args[0],
				TextPath:  textPath,
				SelfGrade: selfGrade,
			}
			if err := req.Validate(); err != nil {
				return err
			}
			req.Sanitize()
			fmt.Fprintf(out, "request:   ok (self grade %d)\n", req.SelfGrade)

			if err := parser.ValidatePDF(req.PDFPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "pdf:       ok (%s)\n", req.PDFPath)

			path := req.TextPath
			if path == "" {
				path = strings.TrimSuffix(req.PDFPath, filepath.Ext(req.PDFPath)) + ".txt"
			}
			doc, err := parser.NewTextParser(zap.NewNop()).Parse(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "text:      ok (%d pages, %d code blocks, %d sections)\n",
				doc.TotalPages, len(doc.CodeBlocks), len(doc.Sections))

			rubric, err := config.LoadRubric(flags.rubricPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "rubric:    ok (%d criteria)\n", len(rubric.Criteria))

			fmt.Fprintln(out, "submission is ready to grade")
			return nil
		},
	}

	cmd.Flags().IntVar(&selfGrade, "self-grade", 0, "student's self-assessed grade, 0-100")
	cmd.Flags().StringVar(&textPath, "text", "", "pre-extracted text file (default: .txt next to the PDF)")
	_ = cmd.MarkFlagRequired("self-grade")

	return cmd
}
