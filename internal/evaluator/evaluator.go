package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/skurihin/autograder/internal/domain"
	"github.com/skurihin/autograder/internal/llm"
	"github.com/skurihin/autograder/internal/parser"
)

var ErrBadResponse = errors.New("evaluation response is not valid JSON")

const (
	maxRelevantChars = 10000
	excerptChars     = 5000
	maxCodeBlocks    = 10
)

const systemPrompt = `You are an academic reviewer grading a software project submission against a single rubric criterion.

Evaluate the provided document content strictly against the named criterion. Cite evidence with page numbers where possible.

Respond ONLY with valid JSON (no markdown, no extra text) in this format:
{
  "score": <float between 0-100>,
  "evidence": ["Page X: specific quote or finding", ...],
  "strengths": ["Specific strength 1", ...],
  "weaknesses": ["Specific weakness 1", ...],
  "suggestions": ["Actionable suggestion 1", ...],
  "severity": "critical" | "important" | "minor" | "strength"
}

Severity guidelines:
- "critical": major issues that would cause project failure
- "important": significant issues affecting quality or usability
- "minor": small issues or missing polish
- "strength": no significant issues, highlight strengths`

// Criterion describes one rubric entry an Evaluator judges.
type Criterion struct {
	ID       string
	Name     string
	Weight   float64
	Keywords []string
}

// codeCriteria get code blocks included in their evaluation context.
var codeCriteria = map[string]bool{
	"code_documentation": true,
	"code_principles":    true,
	"project_structure":  true,
	"unit_tests":         true,
	"error_handling":     true,
}

// Evaluator judges a single criterion. Instances are stateless and safe
// for concurrent use.
type Evaluator struct {
	criterion Criterion
	llm       llm.Client
	logger    *zap.Logger
}

func New(criterion Criterion, llmClient llm.Client, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		criterion: criterion,
		llm:       llmClient,
		logger:    logger,
	}
}

func (e *Evaluator) Criterion() Criterion { return e.criterion }

func (e *Evaluator) Evaluate(ctx context.Context, doc *parser.ParsedDocument, criticismMultiplier float64) (*domain.CriterionEvaluation, llm.Usage, error) {
	select {
	case <-ctx.Done():
		return nil, llm.Usage{}, ctx.Err()
	default:
	}

	content := e.relevantContent(doc)
	prompt := e.buildPrompt(content, criticismMultiplier)

	e.logger.Info("evaluating criterion",
		zap.String("criterion_id", e.criterion.ID),
		zap.Float64("criticism_multiplier", criticismMultiplier),
		zap.Int("content_length", len(content)),
	)

	response, usage, err := e.llm.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, usage, fmt.Errorf("evaluate %s: %w", e.criterion.ID, err)
	}

	eval, err := e.parseResponse(response)
	if err != nil {
		return nil, usage, fmt.Errorf("evaluate %s: %w", e.criterion.ID, err)
	}

	e.logger.Info("criterion evaluated",
		zap.String("criterion_id", e.criterion.ID),
		zap.Float64("score", eval.Score),
		zap.String("severity", string(eval.Severity)),
	)

	return eval, usage, nil
}

// relevantContent narrows the document to the parts this criterion
// cares about: pages matched by keywords, plus code blocks for
// code-oriented criteria. Falls back to a leading excerpt when nothing
// matches.
func (e *Evaluator) relevantContent(doc *parser.ParsedDocument) string {
	var sb strings.Builder

	seen := make(map[int]bool)
	for _, kw := range e.criterion.Keywords {
		for _, page := range doc.SearchText(kw) {
			if seen[page] {
				continue
			}
			seen[page] = true
			text, _ := doc.GetPageText(page)
			fmt.Fprintf(&sb, "=== Page %d ===\n%s\n\n", page, text)
			if sb.Len() >= maxRelevantChars {
				break
			}
		}
	}

	if codeCriteria[e.criterion.ID] {
		for i, block := range doc.CodeBlocks {
			if i >= maxCodeBlocks || sb.Len() >= maxRelevantChars {
				break
			}
			tag := ""
			if block.Language != "" {
				tag = " (" + block.Language + ")"
			}
			fmt.Fprintf(&sb, "### Code Block%s, page %d\n```\n%s\n```\n\n", tag, block.PageNumber, block.Content)
		}
	}

	if sb.Len() == 0 {
		e.logger.Warn("no relevant content found, using document excerpt",
			zap.String("criterion_id", e.criterion.ID),
		)
		return truncate(doc.AllText(), excerptChars)
	}

	return truncate(sb.String(), maxRelevantChars)
}

func (e *Evaluator) buildPrompt(content string, criticismMultiplier float64) string {
	var tone string
	switch {
	case criticismMultiplier >= 1.5:
		tone = "VERY STRICT - Student claims excellence, demand perfection"
	case criticismMultiplier >= 1.2:
		tone = "STRICT - High standards expected, thorough evaluation"
	case criticismMultiplier >= 1.0:
		tone = "BALANCED - Standard academic evaluation"
	case criticismMultiplier >= 0.8:
		tone = "ENCOURAGING - Focus on strengths, constructive feedback"
	default:
		tone = "SUPPORTIVE - Student aware of gaps, build on positives"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CRITERION: %s\n\n", e.criterion.Name)
	fmt.Fprintf(&sb, "EVALUATION TONE: %s\nCRITICISM MULTIPLIER: %.1fx\n\n", tone, criticismMultiplier)
	sb.WriteString("CONTENT TO EVALUATE:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nRespond with JSON only.")
	return sb.String()
}

func (e *Evaluator) parseResponse(response string) (*domain.CriterionEvaluation, error) {
	jsonStr := extractJSON(response)

	var parsed struct {
		Score       float64  `json:"score"`
		Evidence    []string `json:"evidence"`
		Strengths   []string `json:"strengths"`
		Weaknesses  []string `json:"weaknesses"`
		Suggestions []string `json:"suggestions"`
		Severity    string   `json:"severity"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		e.logger.Warn("failed to parse evaluation response",
			zap.String("criterion_id", e.criterion.ID),
			zap.Error(err),
			zap.String("response", response),
		)
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if parsed.Severity == "" {
		parsed.Severity = string(domain.SeverityMinor)
	}

	eval := &domain.CriterionEvaluation{
		CriterionID:   e.criterion.ID,
		CriterionName: e.criterion.Name,
		Weight:        e.criterion.Weight,
		Score:         parsed.Score,
		Evidence:      parsed.Evidence,
		Strengths:     parsed.Strengths,
		Weaknesses:    parsed.Weaknesses,
		Suggestions:   parsed.Suggestions,
		Severity:      domain.Severity(parsed.Severity),
	}

	if err := eval.Validate(); err != nil {
		return nil, err
	}

	return eval, nil
}

// truncate cuts at a rune boundary so a multi-byte character is never
// split mid-sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// extractJSON pulls the first balanced JSON object out of a response
// that may carry prose or fences around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return s
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return s[start:]
}
