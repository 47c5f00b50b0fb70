package cost

import (
	"sync"

	"go.uber.org/zap"

	"github.com/skurihin/autograder/internal/llm"
)

// Default pricing, dollars per million tokens.
const (
	inputPricePerMillion  = 3.00
	outputPricePerMillion = 15.00
)

// Pricing holds per-provider token prices in USD per million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

func DefaultPricing() map[string]Pricing {
	return map[string]Pricing{
		"anthropic": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
		"openai":    {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	}
}

// Report is the aggregated spend for one grading run.
type Report struct {
	TotalTokens      int
	TotalCostUSD     float64
	CostPerCriterion map[string]float64
	APICalls         int
}

func (r Report) AverageCostPerCall() float64 {
	if r.APICalls == 0 {
		return 0
	}
	return r.TotalCostUSD / float64(r.APICalls)
}

// Tracker accumulates token usage and spend across concurrent
// evaluator calls and warns as the budget runs out.
type Tracker struct {
	mu      sync.Mutex
	report  Report
	pricing map[string]Pricing

	budgetLimit   float64 // 0 means unlimited
	warnThreshold float64
	warned        bool

	logger *zap.Logger
}

type Config struct {
	BudgetLimitUSD float64
	WarnThreshold  float64 // fraction of budget, 0..1
	Pricing        map[string]Pricing
}

func NewTracker(cfg Config, logger *zap.Logger) *Tracker {
	if cfg.WarnThreshold <= 0 || cfg.WarnThreshold > 1 {
		cfg.WarnThreshold = 0.8
	}
	if cfg.Pricing == nil {
		cfg.Pricing = DefaultPricing()
	}
	return &Tracker{
		report:        Report{CostPerCriterion: make(map[string]float64)},
		pricing:       cfg.Pricing,
		budgetLimit:   cfg.BudgetLimitUSD,
		warnThreshold: cfg.WarnThreshold,
		logger:        logger,
	}
}

// Track records one API call attributed to a criterion and returns its
// cost in USD.
func (t *Tracker) Track(provider, criterion string, usage llm.Usage) float64 {
	price, ok := t.pricing[provider]
	if !ok {
		price = Pricing{InputPerMillion: inputPricePerMillion, OutputPerMillion: outputPricePerMillion}
	}

	cost := float64(usage.InputTokens)/1_000_000*price.InputPerMillion +
		float64(usage.OutputTokens)/1_000_000*price.OutputPerMillion

	t.mu.Lock()
	t.report.TotalTokens += usage.Total()
	t.report.TotalCostUSD += cost
	t.report.APICalls++
	t.report.CostPerCriterion[criterion] += cost
	total := t.report.TotalCostUSD
	t.mu.Unlock()

	t.checkBudget(total)
	return cost
}

func (t *Tracker) checkBudget(total float64) {
	if t.budgetLimit <= 0 {
		return
	}

	ratio := total / t.budgetLimit
	switch {
	case ratio >= 1:
		t.logger.Error("budget exceeded",
			zap.Float64("spent_usd", total),
			zap.Float64("budget_usd", t.budgetLimit),
		)
	case ratio >= t.warnThreshold:
		t.mu.Lock()
		alreadyWarned := t.warned
		t.warned = true
		t.mu.Unlock()
		if !alreadyWarned {
			t.logger.Warn("budget threshold reached",
				zap.Float64("used_ratio", ratio),
				zap.Float64("spent_usd", total),
				zap.Float64("budget_usd", t.budgetLimit),
			)
		}
	}
}

// Report returns a copy of the accumulated totals.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	perCriterion := make(map[string]float64, len(t.report.CostPerCriterion))
	for k, v := range t.report.CostPerCriterion {
		perCriterion[k] = v
	}

	out := t.report
	out.CostPerCriterion = perCriterion
	return out
}

// EstimateUSD predicts the cost of a prompt before sending it, using a
// rough token approximation.
func (t *Tracker) EstimateUSD(provider string, promptChars, expectedOutputTokens int) float64 {
	price, ok := t.pricing[provider]
	if !ok {
		price = Pricing{InputPerMillion: inputPricePerMillion, OutputPerMillion: outputPricePerMillion}
	}
	inputTokens := promptChars / 4
	return float64(inputTokens)/1_000_000*price.InputPerMillion +
		float64(expectedOutputTokens)/1_000_000*price.OutputPerMillion
}
