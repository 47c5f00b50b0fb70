package domain

import "time"

// CategoryBreakdown is the per-category sub-score, derived from the raw
// criterion scores weighted within the category.
type CategoryBreakdown struct {
	CategoryName  string
	TotalWeight   float64
	WeightedScore float64 // 0-100, rounded to 2 decimals
	Criteria      []CriterionEvaluation
}

// GradingResult is the full outcome of grading one submission. It is built
// once by the scoring engine; SubmissionID and ProcessingTime are filled in
// by the orchestrator afterwards.
type GradingResult struct {
	SubmissionID        string
	SelfGrade           int
	FinalScore          float64 // 0-100, rounded to 2 decimals
	CriticismMultiplier float64
	Evaluations         []CriterionEvaluation
	Breakdown           map[string]CategoryBreakdown
	ComparisonMessage   string
	GradedAt            time.Time
	ProcessingTime      time.Duration
}

func (r *GradingResult) GradeDifference() float64 {
	return r.FinalScore - float64(r.SelfGrade)
}

func (r *GradingResult) EvaluationByID(criterionID string) *CriterionEvaluation {
	for i := range r.Evaluations {
		if r.Evaluations[i].CriterionID == criterionID {
			return &r.Evaluations[i]
		}
	}
	return nil
}
