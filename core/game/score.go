package game

import "math"

// minPoints is the floor awarded for any correct answer in a scored round.
const minPoints = 50

// Points computes the score for a correct answer. Elapsed time is clamped to
// the answer window; the value decays linearly from basePoints down to the
// floor. Test rounds never award points.
func Points(elapsedMs, answerWindowMs int64, basePoints int, isTest bool) int {
	if isTest {
		return 0
	}
	if answerWindowMs <= 0 {
		return minPoints
	}

	t := elapsedMs
	if t < 0 {
		t = 0
	}
	if t > answerWindowMs {
		t = answerWindowMs
	}

	speedFactor := 1 - float64(t)/float64(answerWindowMs)
	points := int(math.Round(float64(basePoints) * speedFactor))
	if points < minPoints {
		points = minPoints
	}
	return points
}
