package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoCriteria     = errors.New("rubric has no criteria")
	ErrBadWeightSum   = errors.New("criterion weights must sum to approximately 1.0")
	ErrDuplicateID    = errors.New("duplicate criterion id")
	ErrBadSeverityMap = errors.New("severity factor out of range")
)

// Rubric defines what gets evaluated and how much each criterion
// weighs in the final grade.
type Rubric struct {
	Criteria        []RubricCriterion  `yaml:"criteria"`
	SeverityFactors map[string]float64 `yaml:"severity_factors"`
}

type RubricCriterion struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
	Category string   `yaml:"category"`
}

// LoadRubric reads a rubric from a YAML file; an empty path returns
// the built-in default rubric.
func LoadRubric(path string) (*Rubric, error) {
	if path == "" {
		return DefaultRubric(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric: %w", err)
	}

	var rubric Rubric
	if err := yaml.Unmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("parse rubric: %w", err)
	}

	if err := rubric.Validate(); err != nil {
		return nil, err
	}

	return &rubric, nil
}

// Validate mirrors the fail-fast stance of scoring: a malformed rubric
// stops the run before any API spend.
func (r *Rubric) Validate() error {
	if len(r.Criteria) == 0 {
		return ErrNoCriteria
	}

	seen := make(map[string]bool, len(r.Criteria))
	total := 0.0
	for _, c := range r.Criteria {
		if c.ID == "" {
			return fmt.Errorf("criterion %q: id is required", c.Name)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
		if c.Weight < 0 || c.Weight > 1 {
			return fmt.Errorf("criterion %s: weight must be between 0 and 1, got %v", c.ID, c.Weight)
		}
		total += c.Weight
	}

	if total < 0.95 || total > 1.05 {
		return fmt.Errorf("%w: got %.2f", ErrBadWeightSum, total)
	}

	for severity, factor := range r.SeverityFactors {
		if factor <= 0 || factor > 1 {
			return fmt.Errorf("%w: %s=%v", ErrBadSeverityMap, severity, factor)
		}
	}

	return nil
}

// CategoryMap derives criterion-to-category assignments from the
// rubric; criteria without a category fall into the engine's default
// bucket.
func (r *Rubric) CategoryMap() map[string]string {
	m := make(map[string]string, len(r.Criteria))
	for _, c := range r.Criteria {
		if c.Category != "" {
			m[c.ID] = c.Category
		}
	}
	return m
}

// DefaultRubric covers a typical course submission: documentation,
// code quality, testing, research artifacts and delivery hygiene.
func DefaultRubric() *Rubric {
	return &Rubric{
		Criteria: []RubricCriterion{
			{ID: "prd_quality", Name: "PRD Quality", Weight: 0.08, Keywords: []string{"requirements", "prd", "product"}, Category: "Documentation"},
			{ID: "architecture_doc", Name: "Architecture Documentation", Weight: 0.06, Keywords: []string{"architecture", "design", "diagram"}, Category: "Documentation"},
			{ID: "readme", Name: "README Completeness", Weight: 0.04, Keywords: []string{"readme", "setup", "installation"}, Category: "Documentation"},
			{ID: "project_structure", Name: "Project Structure", Weight: 0.06, Keywords: []string{"structure", "layout", "organization"}, Category: "Code Quality"},
			{ID: "code_documentation", Name: "Code Documentation", Weight: 0.06, Keywords: []string{"docstring", "comments", "documentation"}, Category: "Code Quality"},
			{ID: "code_principles", Name: "Code Principles", Weight: 0.08, Keywords: []string{"solid", "dry", "clean code", "principles"}, Category: "Code Quality"},
			{ID: "config_management", Name: "Configuration Management", Weight: 0.04, Keywords: []string{"config", "environment", "settings"}, Category: "Configuration & Security"},
			{ID: "security_practices", Name: "Security Practices", Weight: 0.04, Keywords: []string{"security", "secrets", "credentials"}, Category: "Configuration & Security"},
			{ID: "unit_tests", Name: "Unit Tests", Weight: 0.1, Keywords: []string{"test", "coverage", "pytest"}, Category: "Testing"},
			{ID: "error_handling", Name: "Error Handling", Weight: 0.06, Keywords: []string{"error", "exception", "handling"}, Category: "Testing"},
			{ID: "test_results", Name: "Test Results", Weight: 0.04, Keywords: []string{"results", "passed", "coverage report"}, Category: "Testing"},
			{ID: "parameter_exploration", Name: "Parameter Exploration", Weight: 0.06, Keywords: []string{"parameter", "experiment", "tuning"}, Category: "Research & Analysis"},
			{ID: "analysis_notebook", Name: "Analysis Notebook", Weight: 0.06, Keywords: []string{"notebook", "analysis", "jupyter"}, Category: "Research & Analysis"},
			{ID: "visualization", Name: "Visualization", Weight: 0.04, Keywords: []string{"plot", "chart", "visualization", "graph"}, Category: "Research & Analysis"},
			{ID: "usability", Name: "Usability", Weight: 0.05, Keywords: []string{"usability", "user", "interface"}, Category: "UI/UX"},
			{ID: "interface_documentation", Name: "Interface Documentation", Weight: 0.03, Keywords: []string{"api", "interface", "endpoint"}, Category: "UI/UX"},
			{ID: "git_practices", Name: "Git Practices", Weight: 0.05, Keywords: []string{"git", "commit", "branch"}, Category: "Version Control"},
			{ID: "prompt_log", Name: "Prompt Log", Weight: 0.05, Keywords: []string{"prompt", "llm", "ai assistance"}, Category: "Version Control"},
		},
		SeverityFactors: map[string]float64{
			"critical":  0.5,
			"important": 0.8,
			"minor":     0.95,
			"strength":  1.0,
		},
	}
}
