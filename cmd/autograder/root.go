package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skurihin/autograder/internal/cache/memory"
	"github.com/skurihin/autograder/internal/config"
	"github.com/skurihin/autograder/internal/cost"
	"github.com/skurihin/autograder/internal/domain"
	"github.com/skurihin/autograder/internal/evaluator"
	"github.com/skurihin/autograder/internal/llm"
	"github.com/skurihin/autograder/internal/llm/anthropic"
	"github.com/skurihin/autograder/internal/llm/mock"
	"github.com/skurihin/autograder/internal/llm/openai"
	"github.com/skurihin/autograder/internal/metrics"
	"github.com/skurihin/autograder/internal/parser"
	"github.com/skurihin/autograder/internal/ratelimit"
	"github.com/skurihin/autograder/internal/repository"
	"github.com/skurihin/autograder/internal/repository/postgres"
	"github.com/skurihin/autograder/internal/scoring"
	"github.com/skurihin/autograder/internal/service"
)

type rootFlags struct {
	rubricPath  string
	outputDir   string
	formats     []string
	concurrency int
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "autograder",
		Short:        "Grades PDF submissions against a rubric using an LLM",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.rubricPath, "rubric", "", "path to a rubric YAML file (default: built-in rubric)")
	cmd.PersistentFlags().StringVar(&flags.outputDir, "output-dir", "", "directory for report files")
	cmd.PersistentFlags().StringSliceVar(&flags.formats, "format", nil, "report formats: markdown, json, csv")
	cmd.PersistentFlags().IntVar(&flags.concurrency, "concurrency", 0, "max parallel criterion evaluations")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	cmd.AddCommand(newGradeCmd(flags))
	cmd.AddCommand(newBatchCmd(flags))
	cmd.AddCommand(newResultsCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))

	return cmd
}

// app bundles everything a command needs, plus the cleanup to run when
// it is done.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	service service.GradingService
	costs   *cost.Tracker
	results repository.ResultRepository

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, flags)

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	rubric, err := config.LoadRubric(cfg.Grading.RubricPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	client, err := newLLMClient(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	evaluators := make([]service.CriterionEvaluator, 0, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		evaluators = append(evaluators, evaluator.New(evaluator.Criterion{
			ID:       c.ID,
			Name:     c.Name,
			Weight:   c.Weight,
			Keywords: c.Keywords,
		}, client, logger))
	}

	engine := scoring.NewEngine(scoring.Config{
		SeverityFactors: severityFactors(rubric.SeverityFactors),
		CategoryMap:     rubric.CategoryMap(),
	}, logger)

	docCache := memory.New()
	a.closers = append(a.closers, docCache.Stop)

	var results repository.ResultRepository
	if cfg.Database.URL != "" {
		db, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		results = postgres.NewResultRepo(db)
	}
	a.results = results

	m := metrics.New()
	if flags.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(flags.metricsAddr, mux); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	a.costs = cost.NewTracker(cost.Config{
		BudgetLimitUSD: cfg.Budget.LimitUSD,
		WarnThreshold:  cfg.Budget.WarnThreshold,
	}, logger)

	a.service = service.NewGradingService(service.GradingServiceDeps{
		Parser:     parser.NewTextParser(logger),
		Evaluators: evaluators,
		Engine:     engine,
		Cache:      docCache,
		Results:    results,
		Metrics:    m,
		Limiter:    ratelimit.New(ratelimit.Config{RequestsPerMinute: cfg.RateLimit.RequestsPerMinute}),
		Costs:      a.costs,
		Logger:     logger,
		Config: service.GradingConfig{
			Provider:       cfg.LLM.Provider,
			MaxConcurrency: cfg.Grading.MaxConcurrency,
			Timeout:        cfg.Grading.Timeout,
			CacheTTL:       cfg.Cache.TTL,
			OutputDir:      cfg.Output.Dir,
			Formats:        cfg.Output.Formats,
		},
	})

	return a, nil
}

func applyFlags(cfg *config.Config, flags *rootFlags) {
	if flags.rubricPath != "" {
		cfg.Grading.RubricPath = flags.rubricPath
	}
	if flags.outputDir != "" {
		cfg.Output.Dir = flags.outputDir
	}
	if len(flags.formats) > 0 {
		cfg.Output.Formats = flags.formats
	}
	if flags.concurrency > 0 {
		cfg.Grading.MaxConcurrency = flags.concurrency
	}
}

func newLLMClient(cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:     cfg.LLM.Anthropic.APIKey,
			Model:      cfg.LLM.Anthropic.Model,
			BaseURL:    cfg.LLM.Anthropic.BaseURL,
			MaxTokens:  cfg.LLM.Anthropic.MaxTokens,
			Timeout:    cfg.LLM.Anthropic.Timeout,
			MaxRetries: cfg.LLM.Anthropic.MaxRetries,
		}, logger), nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Timeout: cfg.LLM.OpenAI.Timeout,
		}, logger), nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, config.ErrInvalidProvider
	}
}

func severityFactors(factors map[string]float64) map[domain.Severity]float64 {
	if len(factors) == 0 {
		return nil
	}
	out := make(map[domain.Severity]float64, len(factors))
	for k, v := range factors {
		out[domain.Severity(k)] = v
	}
	return out
}
