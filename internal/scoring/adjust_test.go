package scoring

import (
	"math"
	"testing"

	"github.com/skurihin/autograder/internal/domain"
)

func testEngine() *Engine {
	return NewEngine(Config{}, nil)
}

func TestAdjust_NeutralMultiplier(t *testing.T) {
	e := testEngine()

	// multiplier 1.0 applies severity dampening only
	tests := []struct {
		name     string
		score    float64
		severity domain.Severity
		want     float64
	}{
		{"critical halves", 80, domain.SeverityCritical, 40},
		{"important", 80, domain.SeverityImportant, 64},
		{"minor", 80, domain.SeverityMinor, 76},
		{"strength untouched", 80, domain.SeverityStrength, 80},
		{"zero score", 0, domain.SeverityCritical, 0},
		{"full score strength", 100, domain.SeverityStrength, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.adjust(tt.score, tt.severity, 1.0)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("adjust(%v, %s, 1.0) = %v, want %v", tt.score, tt.severity, got, tt.want)
			}
		})
	}
}

func TestAdjust_Strict(t *testing.T) {
	e := testEngine()

	// 90 * 0.95 = 85.5; penalty = (100-85.5) * 0.5 * 0.2 = 1.45
	got := e.adjust(90, domain.SeverityMinor, 1.5)
	want := 84.05
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("adjust(90, minor, 1.5) = %v, want %v", got, want)
	}
}

func TestAdjust_Lenient(t *testing.T) {
	e := testEngine()

	// 70 * 0.95 = 66.5; bonus = (100-66.5) * 0.4 * 0.3 = 4.02
	got := e.adjust(70, domain.SeverityMinor, 0.6)
	want := 70.52
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("adjust(70, minor, 0.6) = %v, want %v", got, want)
	}
}

func TestAdjust_PerfectScoreUnchanged(t *testing.T) {
	e := testEngine()

	// only strength severity keeps a 100 at exactly 100 after dampening
	for _, m := range []float64{0.6, 0.8, 1.0, 1.2, 1.5} {
		got := e.adjust(100, domain.SeverityStrength, m)
		if got != 100 {
			t.Errorf("adjust(100, strength, %v) = %v, want 100", m, got)
		}
	}

	// dampened below 100, the multiplier applies
	got := e.adjust(100, domain.SeverityMinor, 1.5)
	if got >= 95 {
		t.Errorf("adjust(100, minor, 1.5) = %v, expected penalty below dampened 95", got)
	}
}

// stricter multipliers never raise a score, lenient ones never lower it
func TestAdjust_Monotonicity(t *testing.T) {
	e := testEngine()

	scores := []float64{10, 50, 75, 90, 99}
	stricter := []float64{1.0, 1.1, 1.2, 1.3, 1.5, 2.0}
	lenient := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5}

	for _, score := range scores {
		prev := math.Inf(1)
		for _, m := range stricter {
			got := e.adjust(score, domain.SeverityMinor, m)
			if got > prev {
				t.Fatalf("adjust(%v, minor, %v) = %v increased over %v", score, m, got, prev)
			}
			prev = got
		}

		prev = math.Inf(-1)
		for _, m := range lenient {
			got := e.adjust(score, domain.SeverityMinor, m)
			if got < prev {
				t.Fatalf("adjust(%v, minor, %v) = %v decreased below %v", score, m, got, prev)
			}
			prev = got
		}
	}
}

func TestAdjust_AlwaysInRange(t *testing.T) {
	e := testEngine()

	severities := []domain.Severity{
		domain.SeverityCritical,
		domain.SeverityImportant,
		domain.SeverityMinor,
		domain.SeverityStrength,
	}
	multipliers := []float64{0.1, 0.6, 0.8, 1.0, 1.2, 1.5, 3.0}

	for score := 0.0; score <= 100.0; score += 5 {
		for _, sev := range severities {
			for _, m := range multipliers {
				got := e.adjust(score, sev, m)
				if got < 0 || got > 100 {
					t.Fatalf("adjust(%v, %s, %v) = %v out of [0,100]", score, sev, m, got)
				}
			}
		}
	}
}

func TestAdjust_UnknownSeverityFactorDefaultsToOne(t *testing.T) {
	e := NewEngine(Config{SeverityFactors: map[domain.Severity]float64{}}, nil)

	got := e.adjust(80, domain.SeverityMinor, 1.0)
	if got != 80 {
		t.Errorf("adjust with missing factor = %v, want 80", got)
	}
}
