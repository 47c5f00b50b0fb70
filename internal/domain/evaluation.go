package domain

import "fmt"

type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityMinor     Severity = "minor"
	SeverityStrength  Severity = "strength"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityImportant, SeverityMinor, SeverityStrength:
		return true
	}
	return false
}

func (s Severity) String() string { return string(s) }

// CriterionEvaluation is the outcome of evaluating a single rubric criterion.
type CriterionEvaluation struct {
	CriterionID   string
	CriterionName string
	Weight        float64 // 0.0-1.0
	Score         float64 // 0-100, raw, pre-adjustment
	Evidence      []string
	Strengths     []string
	Weaknesses    []string
	Suggestions   []string
	Severity      Severity
}

// Validate rejects out-of-range values instead of clamping them.
// The offending field and value are named in the error.
func (e *CriterionEvaluation) Validate() error {
	if e.CriterionID == "" {
		return ErrEmptyCriterionID
	}
	if e.Weight < 0 || e.Weight > 1 {
		return fmt.Errorf("criterion %s: weight must be between 0 and 1, got %v", e.CriterionID, e.Weight)
	}
	if e.Score < 0 || e.Score > 100 {
		return fmt.Errorf("criterion %s: score must be between 0 and 100, got %v", e.CriterionID, e.Score)
	}
	if !e.Severity.IsValid() {
		return fmt.Errorf("criterion %s: %w: %q", e.CriterionID, ErrInvalidSeverity, e.Severity)
	}
	return nil
}
