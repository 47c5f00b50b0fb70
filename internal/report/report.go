package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skurihin/autograder/internal/domain"
)

// Renderer turns a GradingResult into the formats handed back to the
// student and the course staff.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Markdown renders the full human-readable grading report.
func (r *Renderer) Markdown(result *domain.GradingResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Grading Report: %s\n\n", result.SubmissionID)

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Self-Assessed Grade:** %d/100\n", result.SelfGrade)
	fmt.Fprintf(&sb, "- **Final Grade:** %.2f/100\n", result.FinalScore)
	fmt.Fprintf(&sb, "- **Difference:** %+.2f points\n", result.GradeDifference())
	fmt.Fprintf(&sb, "- **Criticism Multiplier:** %gx\n", result.CriticismMultiplier)
	fmt.Fprintf(&sb, "- **Graded At:** %s\n", result.GradedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "- **Processing Time:** %.2f seconds\n\n", result.ProcessingTime.Seconds())

	if result.ComparisonMessage != "" {
		sb.WriteString("## Grade Comparison\n\n")
		sb.WriteString(result.ComparisonMessage)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Score Breakdown\n\n")
	if len(result.Breakdown) > 0 {
		sb.WriteString("| Category | Weight | Score | Contribution |\n")
		sb.WriteString("|----------|--------|-------|--------------|\n")

		for _, name := range sortedCategories(result.Breakdown) {
			category := result.Breakdown[name]
			contribution := category.WeightedScore * category.TotalWeight
			fmt.Fprintf(&sb, "| %s | %.1f%% | %.1f | %.1f |\n",
				name, category.TotalWeight*100, category.WeightedScore, contribution)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Detailed Evaluation\n\n")
	for i, eval := range result.Evaluations {
		fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, eval.CriterionName)
		fmt.Fprintf(&sb, "**Score:** %.1f/100 | **Weight:** %.1f%% | **Severity:** %s\n\n",
			eval.Score, eval.Weight*100, eval.Severity)

		writeList(&sb, "#### Evidence", "", eval.Evidence)
		writeList(&sb, "#### Strengths", "✅ ", eval.Strengths)
		writeList(&sb, "#### Weaknesses", "⚠️ ", eval.Weaknesses)
		writeList(&sb, "#### Suggestions for Improvement", "💡 ", eval.Suggestions)
	}

	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "*Report generated by AutoGrader on %s*\n", r.now().Format("2006-01-02 15:04:05"))

	return sb.String()
}

func writeList(sb *strings.Builder, header, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(sb, "- %s%s\n", marker, item)
	}
	sb.WriteString("\n")
}

func sortedCategories(breakdown map[string]domain.CategoryBreakdown) []string {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type jsonEvaluation struct {
	CriterionID   string   `json:"criterion_id"`
	CriterionName string   `json:"criterion_name"`
	Weight        float64  `json:"weight"`
	Score         float64  `json:"score"`
	Evidence      []string `json:"evidence"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Suggestions   []string `json:"suggestions"`
	Severity      string   `json:"severity"`
}

type jsonBreakdown struct {
	CategoryName  string  `json:"category_name"`
	TotalWeight   float64 `json:"total_weight"`
	WeightedScore float64 `json:"weighted_score"`
}

type jsonResult struct {
	SubmissionID        string                   `json:"submission_id"`
	SelfGrade           int                      `json:"self_grade"`
	FinalScore          float64                  `json:"final_score"`
	CriticismMultiplier float64                  `json:"criticism_multiplier"`
	Evaluations         []jsonEvaluation         `json:"evaluations"`
	Breakdown           map[string]jsonBreakdown `json:"breakdown"`
	ComparisonMessage   string                   `json:"comparison_message"`
	GradedAt            time.Time                `json:"graded_at"`
	ProcessingSeconds   float64                  `json:"processing_time_seconds"`
}

// JSON renders the machine-readable export.
func (r *Renderer) JSON(result *domain.GradingResult) (string, error) {
	out := jsonResult{
		SubmissionID:        result.SubmissionID,
		SelfGrade:           result.SelfGrade,
		FinalScore:          result.FinalScore,
		CriticismMultiplier: result.CriticismMultiplier,
		Evaluations:         make([]jsonEvaluation, 0, len(result.Evaluations)),
		Breakdown:           make(map[string]jsonBreakdown, len(result.Breakdown)),
		ComparisonMessage:   result.ComparisonMessage,
		GradedAt:            result.GradedAt,
		ProcessingSeconds:   result.ProcessingTime.Seconds(),
	}

	for _, eval := range result.Evaluations {
		out.Evaluations = append(out.Evaluations, jsonEvaluation{
			CriterionID:   eval.CriterionID,
			CriterionName: eval.CriterionName,
			Weight:        eval.Weight,
			Score:         eval.Score,
			Evidence:      eval.Evidence,
			Strengths:     eval.Strengths,
			Weaknesses:    eval.Weaknesses,
			Suggestions:   eval.Suggestions,
			Severity:      string(eval.Severity),
		})
	}
	for name, cat := range result.Breakdown {
		out.Breakdown[name] = jsonBreakdown{
			CategoryName:  cat.CategoryName,
			TotalWeight:   cat.TotalWeight,
			WeightedScore: cat.WeightedScore,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// CSVHeader is the header row matching CSVRow's columns.
const CSVHeader = "submission_id,self_grade,final_score,difference,criticism_multiplier,num_evaluations,timestamp,processing_time_seconds"

// CSVRow renders one summary row for batch runs.
func (r *Renderer) CSVRow(result *domain.GradingResult) string {
	fields := []string{
		result.SubmissionID,
		fmt.Sprintf("%d", result.SelfGrade),
		fmt.Sprintf("%.2f", result.FinalScore),
		fmt.Sprintf("%+.2f", result.GradeDifference()),
		fmt.Sprintf("%g", result.CriticismMultiplier),
		fmt.Sprintf("%d", len(result.Evaluations)),
		result.GradedAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%.2f", result.ProcessingTime.Seconds()),
	}

	for i, f := range fields {
		if strings.Contains(f, ",") {
			fields[i] = `"` + f + `"`
		}
	}
	return strings.Join(fields, ",")
}
