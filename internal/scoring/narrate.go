package scoring

import (
	"fmt"
	"math"
)

// Narrate builds the calibration message comparing the final grade to the
// student's own assessment.
func Narrate(finalScore float64, selfGrade int, multiplier float64) string {
	difference := finalScore - float64(selfGrade)

	var accuracy string
	switch {
	case math.Abs(difference) < 2:
		accuracy = "very accurate"
	case math.Abs(difference) < 5:
		accuracy = "quite accurate"
	case math.Abs(difference) < 10:
		accuracy = "reasonably accurate"
	default:
		accuracy = "somewhat inaccurate"
	}

	var direction, interpretation string
	switch {
	case difference > 5:
		direction = fmt.Sprintf("higher than your self-assessment by %.1f points", difference)
		interpretation = "You were more modest than necessary."
	case difference < -5:
		direction = fmt.Sprintf("lower than your self-assessment by %.1f points", math.Abs(difference))
		interpretation = "You may have overestimated some aspects."
	default:
		direction = "very close to your self-assessment"
		interpretation = "Your self-evaluation was well-calibrated."
	}

	var multiplierNote string
	switch {
	case multiplier >= 1.5:
		multiplierNote = " (evaluated with very strict standards due to high self-grade)"
	case multiplier >= 1.2:
		multiplierNote = " (evaluated with strict standards)"
	case multiplier <= 0.6:
		multiplierNote = " (evaluated with supportive standards)"
	case multiplier <= 0.8:
		multiplierNote = " (evaluated with encouraging standards)"
	}

	return fmt.Sprintf(
		"Your self-assessment was %s. The final grade is %s. %s%s",
		accuracy, direction, interpretation, multiplierNote,
	)
}
