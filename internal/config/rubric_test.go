package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRubric(t *testing.T) {
	rubric := DefaultRubric()

	if err := rubric.Validate(); err != nil {
		t.Fatalf("default rubric is invalid: %v", err)
	}

	total := 0.0
	for _, c := range rubric.Criteria {
		total += c.Weight
	}
	if math.Abs(total-1.0) > 0.001 {
		t.Errorf("default rubric weights sum to %f, want 1.0", total)
	}

	if rubric.SeverityFactors["critical"] != 0.5 {
		t.Errorf("critical factor = %v, want 0.5", rubric.SeverityFactors["critical"])
	}

	cm := rubric.CategoryMap()
	if cm["unit_tests"] != "Testing" {
		t.Errorf("unit_tests category = %q, want Testing", cm["unit_tests"])
	}
	if cm["prd_quality"] != "Documentation" {
		t.Errorf("prd_quality category = %q, want Documentation", cm["prd_quality"])
	}
}

func TestLoadRubric_EmptyPathUsesDefault(t *testing.T) {
	rubric, err := LoadRubric("")
	if err != nil {
		t.Fatalf("LoadRubric() error = %v", err)
	}
	if len(rubric.Criteria) != len(DefaultRubric().Criteria) {
		t.Error("empty path should return the default rubric")
	}
}

func TestLoadRubric_FromFile(t *testing.T) {
	content := `
criteria:
  - id: code_quality
    name: Code Quality
    weight: 0.6
    keywords: [code, quality]
    category: Code Quality
  - id: documentation
    name: Documentation
    weight: 0.4
    keywords: [docs, readme]
    category: Documentation
severity_factors:
  critical: 0.5
  important: 0.8
  minor: 0.95
  strength: 1.0
`
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rubric: %v", err)
	}

	rubric, err := LoadRubric(path)
	if err != nil {
		t.Fatalf("LoadRubric() error = %v", err)
	}
	if len(rubric.Criteria) != 2 {
		t.Fatalf("criteria = %d, want 2", len(rubric.Criteria))
	}
	if rubric.Criteria[0].ID != "code_quality" || rubric.Criteria[0].Weight != 0.6 {
		t.Errorf("first criterion = %+v", rubric.Criteria[0])
	}
	if len(rubric.Criteria[1].Keywords) != 2 {
		t.Errorf("keywords = %v", rubric.Criteria[1].Keywords)
	}
}

func TestLoadRubric_MissingFile(t *testing.T) {
	if _, err := LoadRubric("/no/such/rubric.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRubric_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rubric  Rubric
		wantErr error
	}{
		{
			name:    "no criteria",
			rubric:  Rubric{},
			wantErr: ErrNoCriteria,
		},
		{
			name: "weights too low",
			rubric: Rubric{Criteria: []RubricCriterion{
				{ID: "a", Weight: 0.3},
				{ID: "b", Weight: 0.3},
			}},
			wantErr: ErrBadWeightSum,
		},
		{
			name: "weights too high",
			rubric: Rubric{Criteria: []RubricCriterion{
				{ID: "a", Weight: 0.6},
				{ID: "b", Weight: 0.6},
			}},
			wantErr: ErrBadWeightSum,
		},
		{
			name: "duplicate ids",
			rubric: Rubric{Criteria: []RubricCriterion{
				{ID: "a", Weight: 0.5},
				{ID: "a", Weight: 0.5},
			}},
			wantErr: ErrDuplicateID,
		},
		{
			name: "bad severity factor",
			rubric: Rubric{
				Criteria: []RubricCriterion{
					{ID: "a", Weight: 0.5},
					{ID: "b", Weight: 0.5},
				},
				SeverityFactors: map[string]float64{"critical": 1.5},
			},
			wantErr: ErrBadSeverityMap,
		},
		{
			name: "boundary sum accepted",
			rubric: Rubric{Criteria: []RubricCriterion{
				{ID: "a", Weight: 0.5},
				{ID: "b", Weight: 0.45},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rubric.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
