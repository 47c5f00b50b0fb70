package scoring

// MultiplierFor maps a self-assessed grade to a criticism multiplier.
// Higher self-grades invite stricter evaluation; lower ones a more
// supportive tone. Discrete steps, no interpolation.
func MultiplierFor(selfGrade int) float64 {
	switch {
	case selfGrade >= 90:
		return 1.5
	case selfGrade >= 80:
		return 1.2
	case selfGrade >= 70:
		return 1.0
	case selfGrade >= 60:
		return 0.8
	default:
		return 0.6
	}
}
