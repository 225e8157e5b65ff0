package game

import (
	"testing"
	"time"

	"blindtest/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundStartResetsLog(t *testing.T) {
	var r Round
	r.Answers = []AcceptedAnswer{{Name: "stale"}}

	now := time.Now()
	r.Start(model.Track{Title: "Top 1"}, false, now, 3)

	assert.Equal(t, PhasePlaying, r.Phase)
	require.NotNil(t, r.Track)
	assert.Equal(t, "Top 1", r.Track.Title)
	assert.Equal(t, now, r.StartedAt)
	assert.Empty(t, r.Answers)
	assert.Equal(t, 3, r.Seq)
}

func TestRoundRevealOnlyFromPlaying(t *testing.T) {
	var r Round

	assert.False(t, r.Reveal())

	r.Start(model.Track{}, false, time.Now(), 1)
	assert.True(t, r.Reveal())
	assert.Equal(t, PhaseReveal, r.Phase)

	// A second reveal (e.g. a late deadline fire) is a no-op.
	assert.False(t, r.Reveal())
}

func TestRoundClear(t *testing.T) {
	var r Round
	r.Start(model.Track{Title: "x"}, true, time.Now(), 1)
	r.Answers = append(r.Answers, AcceptedAnswer{Name: "alice"})

	r.Clear()

	assert.Equal(t, PhaseIdle, r.Phase)
	assert.Nil(t, r.Track)
	assert.Empty(t, r.Answers)
	assert.False(t, r.IsTest)
}

func TestRoundHasAnswered(t *testing.T) {
	var r Round
	r.Answers = []AcceptedAnswer{{Name: "alice"}}

	assert.True(t, r.HasAnswered("alice"))
	assert.False(t, r.HasAnswered("bob"))
}

func TestRoundDeadlineDisarmedOnTransition(t *testing.T) {
	var r Round
	cancelled := 0

	r.Start(model.Track{}, false, time.Now(), 1)
	r.ArmDeadline(func() { cancelled++ })
	require.True(t, r.Reveal())
	assert.Equal(t, 1, cancelled)

	r.Start(model.Track{}, false, time.Now(), 2)
	r.ArmDeadline(func() { cancelled++ })
	r.Clear()
	assert.Equal(t, 2, cancelled)
}
