package game

import (
	"time"

	"blindtest/model"
)

// Room is the aggregate root of the single live session: roster, playlist,
// current round and settings. It is only ever touched from the engine's
// command loop.
type Room struct {
	Roster   *Roster
	Playlist []model.Track
	Round    Round
	Settings Settings

	RoundCounter int
	GameID       int64
	GameName     string
	RoundKey     int64 // persistence key of the live round, 0 until assigned

	// lastAnswerAt tracks the anti-spam cooldown per connection, not per
	// player identity.
	lastAnswerAt map[string]time.Time
}

// NewRoom creates a room with the given initial settings.
func NewRoom(settings Settings) *Room {
	return &Room{
		Roster:       NewRoster(),
		Settings:     settings,
		Round:        Round{Phase: PhaseIdle},
		lastAnswerAt: make(map[string]time.Time),
	}
}

// TakeTrack removes and returns the playlist entry at index; a negative
// index takes the head. The track leaves the playlist at selection time, not
// at reveal time.
func (r *Room) TakeTrack(index int) (model.Track, bool) {
	if len(r.Playlist) == 0 {
		return model.Track{}, false
	}
	if index < 0 || index >= len(r.Playlist) {
		index = 0
	}
	track := r.Playlist[index]
	r.Playlist = append(r.Playlist[:index], r.Playlist[index+1:]...)
	return track, true
}

// PlaylistSnapshot returns a copy of the queued tracks.
func (r *Room) PlaylistSnapshot() []model.Track {
	return append([]model.Track(nil), r.Playlist...)
}
