package game

import (
	"time"

	"blindtest/model"
)

// Phase is the round state machine's current state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePlaying Phase = "playing"
	PhaseReveal  Phase = "reveal"
)

// AcceptedAnswer is one correct answer in the round log.
type AcceptedAnswer struct {
	ConnID    string `json:"id"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Round holds the currently active or just-revealed track. Exactly one Round
// is live at a time; history is the persistence collaborator's job.
type Round struct {
	Phase     Phase
	Track     *model.Track
	StartedAt time.Time
	Answers   []AcceptedAnswer
	IsTest    bool
	Seq       int // round counter tag, used to detect stale deadline fires

	cancelDeadline func()
}

// Start transitions to PLAYING with a fresh answer log, regardless of the
// log's prior contents. Any pending deadline for the previous round is
// cancelled.
func (r *Round) Start(track model.Track, isTest bool, now time.Time, seq int) {
	r.disarm()
	r.Phase = PhasePlaying
	t := track
	r.Track = &t
	r.StartedAt = now
	r.Answers = nil
	r.IsTest = isTest
	r.Seq = seq
}

// Reveal transitions PLAYING to REVEAL and cancels the pending deadline.
// Returns false if the round is not playing, which makes a deadline firing
// after an early reveal a no-op.
func (r *Round) Reveal() bool {
	if r.Phase != PhasePlaying {
		return false
	}
	r.disarm()
	r.Phase = PhaseReveal
	return true
}

// Clear drops the current track and returns to IDLE without revealing
// anything.
func (r *Round) Clear() {
	r.disarm()
	r.Phase = PhaseIdle
	r.Track = nil
	r.StartedAt = time.Time{}
	r.Answers = nil
	r.IsTest = false
}

// HasAnswered reports whether a player identity already has an accepted
// answer this round.
func (r *Round) HasAnswered(name string) bool {
	for _, a := range r.Answers {
		if a.Name == name {
			return true
		}
	}
	return false
}

// ArmDeadline stores the cancel handle for the scheduled round deadline.
func (r *Round) ArmDeadline(cancel func()) {
	r.disarm()
	r.cancelDeadline = cancel
}

func (r *Round) disarm() {
	if r.cancelDeadline != nil {
		r.cancelDeadline()
		r.cancelDeadline = nil
	}
}
