package scoring

import "github.com/skurihin/autograder/internal/domain"

// adjust applies severity dampening followed by the criticism adjustment.
// The adjustment is proportional to the room left to improve (100 - s), so
// scores that are already high move less. Leniency recovers points slightly
// faster (0.3) than strictness removes them (0.2); keep the asymmetry.
func (e *Engine) adjust(rawScore float64, severity domain.Severity, multiplier float64) float64 {
	factor, ok := e.severityFactors[severity]
	if !ok {
		factor = 1.0
	}
	s := rawScore * factor

	if s >= 100.0 {
		return s // a perfect score is never penalized or boosted
	}

	switch {
	case multiplier > 1.0:
		penalty := (100 - s) * (multiplier - 1.0) * 0.2
		return clamp(s-penalty, 0, 100)
	case multiplier < 1.0:
		bonus := (100 - s) * (1.0 - multiplier) * 0.3
		return clamp(s+bonus, 0, 100)
	default:
		return s
	}
}
