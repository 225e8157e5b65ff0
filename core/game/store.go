package game

import (
	"context"

	"blindtest/model"
)

// Store is the persistence collaborator. Every write is fire-and-forget from
// the engine's point of view: failures are logged and the in-memory room
// stays authoritative.
type Store interface {
	// EnsureTrack upserts a track by its external id and returns its key.
	EnsureTrack(ctx context.Context, track model.Track) (int64, error)
	// EnsurePlayer upserts a player by display name and returns its key.
	EnsurePlayer(ctx context.Context, name string) (int64, error)
	// EnsureGame returns the latest running game, creating one if none exists.
	EnsureGame(ctx context.Context, name string) (*model.Game, error)
	// CreateGame closes nothing and always opens a fresh game.
	CreateGame(ctx context.Context, name string) (*model.Game, error)
	// CloseGame marks a game finished.
	CloseGame(ctx context.Context, gameID int64) error
	// CreateRound records a round start and returns its key.
	CreateRound(ctx context.Context, gameID, trackID int64, index int, startedAt int64) (int64, error)
	// FinishRound stamps a round's end time.
	FinishRound(ctx context.Context, roundID, endedAt int64) error
	// RecordAnswer appends a submitted answer, correct or not.
	RecordAnswer(ctx context.Context, roundID, playerID int64, text string, correct bool, points int, elapsedMs int64) error
	// PlayerScore sums a player's recorded points within one game.
	PlayerScore(ctx context.Context, gameID, playerID int64) (int, error)
}

// NopStore discards everything. Used when the database is unavailable so
// live play keeps working without the durable side-channel.
type NopStore struct{}

func (NopStore) EnsureTrack(context.Context, model.Track) (int64, error) { return 0, nil }
func (NopStore) EnsurePlayer(context.Context, string) (int64, error) { return 0, nil }
func (NopStore) EnsureGame(_ context.Context, name string) (*model.Game, error) {
	return &model.Game{Name: name, Status: model.GameStatusRunning}, nil
}
func (NopStore) CreateGame(_ context.Context, name string) (*model.Game, error) {
	return &model.Game{Name: name, Status: model.GameStatusRunning}, nil
}
func (NopStore) CloseGame(context.Context, int64) error { return nil }
func (NopStore) CreateRound(context.Context, int64, int64, int, int64) (int64, error) {
	return 0, nil
}
func (NopStore) FinishRound(context.Context, int64, int64) error { return nil }
func (NopStore) RecordAnswer(context.Context, int64, int64, string, bool, int, int64) error {
	return nil
}
func (NopStore) PlayerScore(context.Context, int64, int64) (int, error) { return 0, nil }
