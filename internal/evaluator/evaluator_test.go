package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/skurihin/autograder/internal/domain"
	llmMock "github.com/skurihin/autograder/internal/llm/mock"
	"github.com/skurihin/autograder/internal/parser"
)

func testDocument() *parser.ParsedDocument {
	return &parser.ParsedDocument{
		FilePath:   "submission.pdf",
		TotalPages: 3,
		PageText: map[int]string{
			1: "Introduction and overview of the project",
			2: "Testing strategy with unit tests and coverage details",
			3: "Deployment notes",
		},
		CodeBlocks: []parser.CodeBlock{
			{Content: "def test_scoring():\n    assert True\n    pass", PageNumber: 2, LineCount: 3, Language: "python"},
		},
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	logger := zap.NewNop()
	llmClient := llmMock.New().WithResponse(
		`{"score": 82.5, "evidence": ["Page 2: unit tests described"], "strengths": ["good coverage"], "weaknesses": ["no integration tests"], "suggestions": ["add integration tests"], "severity": "important"}`,
	)

	ev := New(Criterion{
		ID:       "unit_tests",
		Name:     "Unit Tests",
		Weight:   0.1,
		Keywords: []string{"testing", "coverage"},
	}, llmClient, logger)

	eval, usage, err := ev.Evaluate(context.Background(), testDocument(), 1.2)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if eval.CriterionID != "unit_tests" {
		t.Errorf("CriterionID = %q, want %q", eval.CriterionID, "unit_tests")
	}
	if eval.Score != 82.5 {
		t.Errorf("Score = %f, want 82.5", eval.Score)
	}
	if eval.Severity != domain.SeverityImportant {
		t.Errorf("Severity = %q, want important", eval.Severity)
	}
	if eval.Weight != 0.1 {
		t.Errorf("Weight = %f, want 0.1", eval.Weight)
	}
	if usage.Total() == 0 {
		t.Error("expected non-zero token usage")
	}
}

func TestEvaluator_PromptContainsToneAndContent(t *testing.T) {
	llmClient := llmMock.New()
	ev := New(Criterion{
		ID:       "unit_tests",
		Name:     "Unit Tests",
		Weight:   0.1,
		Keywords: []string{"testing"},
	}, llmClient, zap.NewNop())

	if _, _, err := ev.Evaluate(context.Background(), testDocument(), 1.5); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if !strings.Contains(llmClient.LastPrompt, "VERY STRICT") {
		t.Error("prompt missing VERY STRICT tone for multiplier 1.5")
	}
	if !strings.Contains(llmClient.LastPrompt, "unit tests and coverage") {
		t.Error("prompt missing keyword-matched page content")
	}
	if !strings.Contains(llmClient.LastPrompt, "Code Block") {
		t.Error("prompt missing code blocks for a code criterion")
	}
	if strings.Contains(llmClient.LastPrompt, "Deployment notes") {
		t.Error("prompt includes unrelated page content")
	}
}

func TestEvaluator_ToneBands(t *testing.T) {
	tests := []struct {
		multiplier float64
		wantTone   string
	}{
		{1.5, "VERY STRICT"},
		{1.2, "STRICT"},
		{1.0, "BALANCED"},
		{0.8, "ENCOURAGING"},
		{0.6, "SUPPORTIVE"},
	}

	for _, tt := range tests {
		llmClient := llmMock.New()
		ev := New(Criterion{ID: "prd_quality", Name: "PRD Quality", Weight: 0.1}, llmClient, zap.NewNop())

		if _, _, err := ev.Evaluate(context.Background(), testDocument(), tt.multiplier); err != nil {
			t.Fatalf("Evaluate(%.1f) error = %v", tt.multiplier, err)
		}
		if !strings.Contains(llmClient.LastPrompt, tt.wantTone) {
			t.Errorf("multiplier %.1f: prompt missing tone %q", tt.multiplier, tt.wantTone)
		}
	}
}

func TestEvaluator_FallsBackToExcerpt(t *testing.T) {
	llmClient := llmMock.New()
	ev := New(Criterion{
		ID:       "demo_video",
		Name:     "Demo Video",
		Weight:   0.05,
		Keywords: []string{"screencast"},
	}, llmClient, zap.NewNop())

	if _, _, err := ev.Evaluate(context.Background(), testDocument(), 1.0); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	// no keyword matches, so the whole document excerpt goes in
	if !strings.Contains(llmClient.LastPrompt, "Introduction and overview") {
		t.Error("prompt missing document excerpt fallback")
	}
}

func TestEvaluator_ExtractsJSONFromProse(t *testing.T) {
	llmClient := llmMock.New().WithResponse(
		"Here is my evaluation:\n```json\n{\"score\": 70, \"severity\": \"minor\"}\n```\nDone.",
	)
	ev := New(Criterion{ID: "prd_quality", Name: "PRD Quality", Weight: 0.1}, llmClient, zap.NewNop())

	eval, _, err := ev.Evaluate(context.Background(), testDocument(), 1.0)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Score != 70 {
		t.Errorf("Score = %f, want 70", eval.Score)
	}
	if eval.Severity != domain.SeverityMinor {
		t.Errorf("Severity = %q, want minor", eval.Severity)
	}
}

func TestEvaluator_BadResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{
			name:     "not json",
			response: "I cannot evaluate this document.",
			wantErr:  ErrBadResponse,
		},
		{
			name:     "invalid severity",
			response: `{"score": 80, "severity": "catastrophic"}`,
			wantErr:  domain.ErrInvalidSeverity,
		},
		{
			name:     "score out of range",
			response: `{"score": 140, "severity": "minor"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llmClient := llmMock.New().WithResponse(tt.response)
			ev := New(Criterion{ID: "prd_quality", Name: "PRD Quality", Weight: 0.1}, llmClient, zap.NewNop())

			_, _, err := ev.Evaluate(context.Background(), testDocument(), 1.0)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEvaluator_LLMFailure(t *testing.T) {
	wantErr := errors.New("provider down")
	llmClient := llmMock.New().WithError(wantErr)
	ev := New(Criterion{ID: "prd_quality", Name: "PRD Quality", Weight: 0.1}, llmClient, zap.NewNop())

	_, _, err := ev.Evaluate(context.Background(), testDocument(), 1.0)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"short stays whole", "abc", 10, "abc"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"cut inside multibyte rune", "abécd", 3, "ab"},
		{"cut after multibyte rune", "abécd", 4, "abé"},
		{"cyrillic", "оценка", 5, "оц"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.s, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) = %q is not valid UTF-8", tt.s, tt.max, got)
			}
		})
	}
}
