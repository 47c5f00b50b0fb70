package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skurihin/autograder/internal/domain"
	"github.com/skurihin/autograder/internal/report"
	"github.com/skurihin/autograder/internal/service"
)

func newBatchCmd(flags *rootFlags) *cobra.Command {
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "batch <manifest.csv>",
		Short: "Grade every submission listed in a CSV manifest",
		Long: `Grade every submission listed in a CSV manifest.

Each row is: pdf_path,self_grade[,text_path]. A header row is skipped
when the second column is not a number.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reqs, err := readManifest(args[0])
			if err != nil {
				return err
			}
			if len(reqs) == 0 {
				return fmt.Errorf("manifest %s has no submissions", args[0])
			}

			a, err := buildApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.service.GradeBatch(ctx, reqs)

			succeeded := 0
			for _, e := range entries {
				if e.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", e.Request.PDFPath, e.Err)
					continue
				}
				succeeded++
				fmt.Fprintf(cmd.OutOrStdout(), "OK    %s: %.2f (self %d)\n",
					e.Result.SubmissionID, e.Result.FinalScore, e.Result.SelfGrade)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d submissions graded\n", succeeded, len(entries))

			if summaryPath != "" {
				if err := writeSummary(summaryPath, entries); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "summary written to %s\n", summaryPath)
			}

			printCosts(cmd, a)
			if succeeded == 0 {
				return fmt.Errorf("no submissions graded successfully")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&summaryPath, "summary", "", "write a CSV summary of all grades to this path")

	return cmd
}

func readManifest(path string) ([]*domain.GradingRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	reqs := make([]*domain.GradingRequest, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("manifest row %d: want at least pdf_path,self_grade", i+1)
		}
		grade, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			// header row
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("manifest row %d: bad self grade %q", i+1, row[1])
		}
		req := &domain.GradingRequest{
			PDFPath:   strings.TrimSpace(row[0]),
			SelfGrade: grade,
		}
		if len(row) > 2 {
			req.TextPath = strings.TrimSpace(row[2])
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func writeSummary(path string, entries []service.BatchEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}

	var sb strings.Builder
	sb.WriteString(report.CSVHeader)
	sb.WriteByte('\n')
	renderer := report.NewRenderer()
	for _, e := range entries {
		if e.Err != nil {
			continue
		}
		sb.WriteString(renderer.CSVRow(e.Result))
		sb.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
