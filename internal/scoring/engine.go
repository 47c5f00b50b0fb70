package scoring

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/skurihin/autograder/internal/domain"
)

// DefaultSeverityFactors dampen a raw score before the criticism
// adjustment is applied.
func DefaultSeverityFactors() map[domain.Severity]float64 {
	return map[domain.Severity]float64{
		domain.SeverityCritical:  0.5,
		domain.SeverityImportant: 0.8,
		domain.SeverityMinor:     0.95,
		domain.SeverityStrength:  1.0,
	}
}

// DefaultCategoryMap routes criterion ids to report categories. Criteria
// absent from the map land in the "Other" bucket.
func DefaultCategoryMap() map[string]string {
	return map[string]string{
		"prd_quality":             "Documentation",
		"architecture_doc":        "Documentation",
		"readme":                  "Documentation",
		"project_structure":       "Code Quality",
		"code_documentation":      "Code Quality",
		"code_principles":         "Code Quality",
		"config_management":       "Configuration & Security",
		"security_practices":      "Configuration & Security",
		"unit_tests":              "Testing",
		"error_handling":          "Testing",
		"test_results":            "Testing",
		"parameter_exploration":   "Research & Analysis",
		"analysis_notebook":       "Research & Analysis",
		"visualization":           "Research & Analysis",
		"usability":               "UI/UX",
		"interface_documentation": "UI/UX",
		"git_practices":           "Version Control",
		"prompt_log":              "Version Control",
	}
}

const otherCategory = "Other"

// Engine aggregates criterion evaluations into a final weighted grade.
// Pure and stateless after construction; safe for concurrent use.
type Engine struct {
	severityFactors map[domain.Severity]float64
	categoryMap     map[string]string
	logger          *zap.Logger
}

type Config struct {
	SeverityFactors map[domain.Severity]float64 // defaults when nil
	CategoryMap     map[string]string           // defaults when nil
}

func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	factors := cfg.SeverityFactors
	if factors == nil {
		factors = DefaultSeverityFactors()
	}
	categories := cfg.CategoryMap
	if categories == nil {
		categories = DefaultCategoryMap()
	}
	return &Engine{
		severityFactors: factors,
		categoryMap:     categories,
		logger:          logger,
	}
}

// Score computes the final grade from the given evaluations. Inputs outside
// their declared ranges are rejected, not clamped; clamping is reserved for
// intermediate values produced by the adjustment itself.
func (e *Engine) Score(evaluations []domain.CriterionEvaluation, multiplier float64, selfGrade int) (*domain.GradingResult, error) {
	if multiplier <= 0 {
		return nil, fmt.Errorf("%w: got %v", domain.ErrInvalidMultiplier, multiplier)
	}
	if selfGrade < 0 || selfGrade > 100 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSelfGrade, selfGrade)
	}
	for i := range evaluations {
		if err := evaluations[i].Validate(); err != nil {
			return nil, err
		}
	}

	var weightedSum, totalWeight float64
	for _, ev := range evaluations {
		adjusted := e.adjust(ev.Score, ev.Severity, multiplier)
		weightedSum += adjusted * ev.Weight
		totalWeight += ev.Weight
	}

	var finalScore float64
	if totalWeight > 0 {
		finalScore = weightedSum / totalWeight
	} else {
		e.logger.Warn("total weight is zero, defaulting to 0 score",
			zap.Int("evaluations", len(evaluations)),
		)
	}

	finalScore = clamp(finalScore, 0, 100)
	finalScore = round2(finalScore)

	result := &domain.GradingResult{
		SelfGrade:           selfGrade,
		FinalScore:          finalScore,
		CriticismMultiplier: multiplier,
		Evaluations:         evaluations,
		Breakdown:           e.breakdown(evaluations),
		ComparisonMessage:   Narrate(finalScore, selfGrade, multiplier),
		GradedAt:            time.Now(),
	}
	return result, nil
}

// breakdown groups evaluations by category and computes each category's
// weighted average from the raw, unadjusted scores. The overall grade uses
// criticism-adjusted scores; the breakdown deliberately does not.
func (e *Engine) breakdown(evaluations []domain.CriterionEvaluation) map[string]domain.CategoryBreakdown {
	groups := make(map[string][]domain.CriterionEvaluation)
	for _, ev := range evaluations {
		category, ok := e.categoryMap[ev.CriterionID]
		if !ok {
			category = otherCategory
		}
		groups[category] = append(groups[category], ev)
	}

	breakdown := make(map[string]domain.CategoryBreakdown, len(groups))
	for name, members := range groups {
		var totalWeight, weightedSum float64
		for _, ev := range members {
			totalWeight += ev.Weight
			weightedSum += ev.Score * ev.Weight
		}

		var weightedScore float64
		if totalWeight > 0 {
			weightedScore = weightedSum / totalWeight
		}

		breakdown[name] = domain.CategoryBreakdown{
			CategoryName:  name,
			TotalWeight:   totalWeight,
			WeightedScore: round2(weightedScore),
			Criteria:      members,
		}
	}
	return breakdown
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
