package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skurihin/autograder/internal/cache"
	"github.com/skurihin/autograder/internal/cost"
	"github.com/skurihin/autograder/internal/domain"
	"github.com/skurihin/autograder/internal/evaluator"
	"github.com/skurihin/autograder/internal/llm"
	"github.com/skurihin/autograder/internal/metrics"
	"github.com/skurihin/autograder/internal/parser"
	"github.com/skurihin/autograder/internal/ratelimit"
	"github.com/skurihin/autograder/internal/report"
	"github.com/skurihin/autograder/internal/repository"
	"github.com/skurihin/autograder/internal/scoring"
)

type DocumentParser interface {
	Parse(ctx context.Context, path string) (*parser.ParsedDocument, error)
}

// CriterionEvaluator judges one rubric criterion against a parsed
// submission.
type CriterionEvaluator interface {
	Criterion() evaluator.Criterion
	Evaluate(ctx context.Context, doc *parser.ParsedDocument, criticismMultiplier float64) (*domain.CriterionEvaluation, llm.Usage, error)
}

type GradingService interface {
	Grade(ctx context.Context, req *domain.GradingRequest) (*domain.GradingResult, error)
	GradeBatch(ctx context.Context, reqs []*domain.GradingRequest) []BatchEntry
}

// BatchEntry pairs one batch input with its outcome.
type BatchEntry struct {
	Request *domain.GradingRequest
	Result  *domain.GradingResult
	Err     error
}

type GradingConfig struct {
	Provider       string
	MaxConcurrency int
	Timeout        time.Duration
	CacheTTL       time.Duration
	OutputDir      string
	Formats        []string
	SkipPDFCheck   bool
}

// GradingServiceDeps - dependencies for GradingService.
type GradingServiceDeps struct {
	Parser     DocumentParser
	Evaluators []CriterionEvaluator
	Engine     *scoring.Engine
	Cache      cache.Cache
	Logger     *zap.Logger
	Config     GradingConfig

	// optional components
	Results  repository.ResultRepository
	Metrics  *metrics.Metrics
	Limiter  *ratelimit.Limiter
	Costs    *cost.Tracker
	Renderer *report.Renderer
}

type gradingService struct {
	parser     DocumentParser
	evaluators []CriterionEvaluator
	engine     *scoring.Engine
	cache      cache.Cache
	results    repository.ResultRepository
	metrics    *metrics.Metrics
	limiter    *ratelimit.Limiter
	costs      *cost.Tracker
	renderer   *report.Renderer
	logger     *zap.Logger
	config     GradingConfig
}

func NewGradingService(deps GradingServiceDeps) GradingService {
	if deps.Config.MaxConcurrency <= 0 {
		deps.Config.MaxConcurrency = 4
	}
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = time.Hour
	}
	if deps.Config.Provider == "" {
		deps.Config.Provider = "anthropic"
	}
	if deps.Renderer == nil {
		deps.Renderer = report.NewRenderer()
	}

	return &gradingService{
		parser:     deps.Parser,
		evaluators: deps.Evaluators,
		engine:     deps.Engine,
		cache:      deps.Cache,
		results:    deps.Results,
		metrics:    deps.Metrics,
		limiter:    deps.Limiter,
		costs:      deps.Costs,
		renderer:   deps.Renderer,
		logger:     deps.Logger,
		config:     deps.Config,
	}
}

func (s *gradingService) Grade(ctx context.Context, req *domain.GradingRequest) (*domain.GradingResult, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncGradingsInFlight()
		defer s.metrics.DecGradingsInFlight()
	}

	if err := req.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.RecordGrading("validation_error", time.Since(startTime))
		}
		return nil, err
	}
	req.Sanitize()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	submissionID := req.SubmissionID
	if submissionID == "" {
		submissionID = generateSubmissionID(req)
	}

	s.logger.Info("grading submission",
		zap.String("submission_id", submissionID),
		zap.String("pdf_path", req.PDFPath),
		zap.Int("self_grade", req.SelfGrade),
		zap.Int("criteria", len(s.evaluators)),
	)

	if !s.config.SkipPDFCheck {
		if err := parser.ValidatePDF(req.PDFPath); err != nil {
			if s.metrics != nil {
				s.metrics.RecordGrading("validation_error", time.Since(startTime))
			}
			return nil, err
		}
	}

	doc, err := s.parseWithCache(ctx, textPath(req))
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGrading("parse_error", time.Since(startTime))
		}
		return nil, err
	}

	multiplier := scoring.MultiplierFor(req.SelfGrade)

	evaluations, err := s.runEvaluators(ctx, doc, multiplier)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGrading("evaluation_error", time.Since(startTime))
		}
		return nil, err
	}

	result, err := s.engine.Score(evaluations, multiplier, req.SelfGrade)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGrading("scoring_error", time.Since(startTime))
		}
		return nil, err
	}
	result.SubmissionID = submissionID
	result.ProcessingTime = time.Since(startTime)

	s.writeReports(result)
	s.persist(ctx, result)

	if s.metrics != nil {
		s.metrics.RecordFinalScore(result.FinalScore)
		s.metrics.RecordGrading("success", time.Since(startTime))
	}

	s.logger.Info("submission graded",
		zap.String("submission_id", submissionID),
		zap.Float64("final_score", result.FinalScore),
		zap.Int("self_grade", req.SelfGrade),
		zap.Float64("multiplier", multiplier),
		zap.Int("evaluations", len(result.Evaluations)),
		zap.Duration("took", result.ProcessingTime),
	)

	return result, nil
}

// GradeBatch processes submissions sequentially; one failed submission
// never stops the rest.
func (s *gradingService) GradeBatch(ctx context.Context, reqs []*domain.GradingRequest) []BatchEntry {
	entries := make([]BatchEntry, 0, len(reqs))
	succeeded := 0

	for _, req := range reqs {
		if ctx.Err() != nil {
			entries = append(entries, BatchEntry{Request: req, Err: ctx.Err()})
			continue
		}

		result, err := s.Grade(ctx, req)
		if err != nil {
			s.logger.Error("batch submission failed",
				zap.String("pdf_path", req.PDFPath),
				zap.Error(err),
			)
		} else {
			succeeded++
		}
		entries = append(entries, BatchEntry{Request: req, Result: result, Err: err})
	}

	s.logger.Info("batch completed",
		zap.Int("total", len(reqs)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(reqs)-succeeded),
	)

	return entries
}

func (s *gradingService) parseWithCache(ctx context.Context, path string) (*parser.ParsedDocument, error) {
	key := cache.DocumentKey(path)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if doc, ok := cached.(*parser.ParsedDocument); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				s.logger.Debug("document cache hit", zap.String("path", path))
				return doc, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	doc, err := s.parser.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(key, doc, s.config.CacheTTL)
	}

	return doc, nil
}

// runEvaluators fans the criteria out over a bounded worker group. A
// failed criterion leaves a gap, not a zero score; only a fully failed
// run is an error.
func (s *gradingService) runEvaluators(ctx context.Context, doc *parser.ParsedDocument, multiplier float64) ([]domain.CriterionEvaluation, error) {
	if len(s.evaluators) == 0 {
		return nil, domain.ErrNoCriteria
	}

	results := make([]*domain.CriterionEvaluation, len(s.evaluators))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)

	for i, ev := range s.evaluators {
		i, ev := i, ev
		g.Go(func() error {
			criterionID := ev.Criterion().ID

			if s.limiter != nil {
				if !s.limiter.Allow(s.config.Provider) {
					if s.metrics != nil {
						s.metrics.RecordRateLimitHit(s.config.Provider)
					}
					if err := s.limiter.Wait(gctx, s.config.Provider); err != nil {
						return err
					}
				}
			}

			evalStart := time.Now()
			evaluation, usage, err := ev.Evaluate(gctx, doc, multiplier)

			if s.costs != nil && usage.Total() > 0 {
				spent := s.costs.Track(s.config.Provider, criterionID, usage)
				if s.metrics != nil {
					s.metrics.RecordLLMTokens(s.config.Provider, usage.InputTokens, usage.OutputTokens)
					s.metrics.RecordLLMCost(spent)
				}
			}

			if err != nil {
				if s.metrics != nil {
					s.metrics.RecordEvaluation(criterionID, "error", time.Since(evalStart))
					s.metrics.RecordLLMRequest(s.config.Provider, "error")
				}
				s.logger.Warn("criterion evaluation failed, skipping",
					zap.String("criterion_id", criterionID),
					zap.Error(err),
				)
				return nil
			}

			if s.metrics != nil {
				s.metrics.RecordEvaluation(criterionID, "success", time.Since(evalStart))
				s.metrics.RecordLLMRequest(s.config.Provider, "success")
			}

			results[i] = evaluation
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	evaluations := make([]domain.CriterionEvaluation, 0, len(results))
	for _, r := range results {
		if r != nil {
			evaluations = append(evaluations, *r)
		}
	}

	if len(evaluations) == 0 {
		return nil, domain.ErrAllEvaluationsFailed
	}
	if len(evaluations) < len(s.evaluators) {
		s.logger.Warn("grading with partial evaluations",
			zap.Int("succeeded", len(evaluations)),
			zap.Int("total", len(s.evaluators)),
		)
	}

	return evaluations, nil
}

// writeReports renders the configured formats into the output dir.
// Report failures are logged, never fatal.
func (s *gradingService) writeReports(result *domain.GradingResult) {
	if s.config.OutputDir == "" || len(s.config.Formats) == 0 {
		return
	}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		s.logger.Warn("failed to create output dir", zap.Error(err))
		return
	}

	for _, format := range s.config.Formats {
		var (
			content string
			ext     string
			err     error
		)

		switch format {
		case "markdown":
			content, ext = s.renderer.Markdown(result), "md"
		case "json":
			content, err = s.renderer.JSON(result)
			ext = "json"
		case "csv":
			content, ext = report.CSVHeader+"\n"+s.renderer.CSVRow(result)+"\n", "csv"
		default:
			s.logger.Warn("unknown report format", zap.String("format", format))
			continue
		}
		if err != nil {
			s.logger.Warn("failed to render report",
				zap.String("format", format),
				zap.Error(err),
			)
			continue
		}

		path := filepath.Join(s.config.OutputDir, result.SubmissionID+"."+ext)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			s.logger.Warn("failed to write report",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("report written", zap.String("path", path))
	}
}

// persist saves the result if a repository is configured. Best effort:
// the grade is already final, a storage failure only loses history.
func (s *gradingService) persist(ctx context.Context, result *domain.GradingResult) {
	if s.results == nil {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.results.Save(saveCtx, result); err != nil {
		s.logger.Warn("failed to persist grading result",
			zap.String("submission_id", result.SubmissionID),
			zap.Error(err),
		)
	}
}

func generateSubmissionID(req *domain.GradingRequest) string {
	stem := strings.TrimSpace(req.FileStem())
	if stem == "" {
		return uuid.NewString()
	}
	return fmt.Sprintf("%s_%s", stem, time.Now().Format("20060102150405"))
}

// textPath picks the file the text parser reads: the pre-extracted
// text when provided, otherwise a .txt sibling of the PDF.
func textPath(req *domain.GradingRequest) string {
	if req.TextPath != "" {
		return req.TextPath
	}
	return strings.TrimSuffix(req.PDFPath, filepath.Ext(req.PDFPath)) + ".txt"
}
