package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsDecaysLinearly(t *testing.T) {
	assert.Equal(t, 1000, Points(0, 15000, 1000, false))
	assert.Equal(t, 500, Points(7500, 15000, 1000, false))
	assert.Equal(t, 50, Points(15000, 15000, 1000, false))
}

func TestPointsClampsElapsed(t *testing.T) {
	// Answers arriving late (grace window) or with a skewed clock still land
	// inside the valid range.
	assert.Equal(t, 50, Points(20000, 15000, 1000, false))
	assert.Equal(t, 1000, Points(-100, 15000, 1000, false))
}

func TestPointsFloor(t *testing.T) {
	// Low base points never decay below the floor.
	assert.Equal(t, 50, Points(14000, 15000, 60, false))
	assert.Equal(t, 50, Points(0, 0, 1000, false))
}

func TestPointsTestRound(t *testing.T) {
	assert.Equal(t, 0, Points(0, 15000, 1000, true))
}
