package repository

import (
	"context"
	"time"

	"blindtest/model"

	"gorm.io/gorm"
)

// GameStore is the GORM-backed persistence collaborator. It only ever
// appends; the live room never depends on reads from here.
type GameStore struct {
	db *gorm.DB
}

// NewGameStore creates a store over the given database handle.
func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{db: db}
}

// EnsureTrack upserts a track by its Deezer id and returns its key.
func (s *GameStore) EnsureTrack(ctx context.Context, track model.Track) (int64, error) {
	var existing model.TrackRecord
	err := s.db.WithContext(ctx).
		Where("deezer_id = ?", track.ID).
		First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	rec := model.TrackRecord{
		DeezerID:   track.ID,
		Title:      track.Title,
		Artist:     track.Artist,
		Album:      track.Album,
		PreviewURL: track.Preview,
		CoverURL:   track.BestCover(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// EnsurePlayer upserts a player by display name and returns its key.
func (s *GameStore) EnsurePlayer(ctx context.Context, name string) (int64, error) {
	var player model.Player
	err := s.db.WithContext(ctx).
		Where(model.Player{Name: name}).
		FirstOrCreate(&player).Error
	if err != nil {
		return 0, err
	}
	return player.ID, nil
}

// EnsureGame returns the latest running game, creating one if none exists.
func (s *GameStore) EnsureGame(ctx context.Context, name string) (*model.Game, error) {
	var game model.Game
	err := s.db.WithContext(ctx).
		Where("status = ?", model.GameStatusRunning).
		Order("started_at DESC").
		First(&game).Error
	if err == nil {
		return &game, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return s.CreateGame(ctx, name)
}

// CreateGame opens a fresh game.
func (s *GameStore) CreateGame(ctx context.Context, name string) (*model.Game, error) {
	game := model.Game{
		Name:      name,
		Status:    model.GameStatusRunning,
		StartedAt: time.Now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// CloseGame marks a game finished.
func (s *GameStore) CloseGame(ctx context.Context, gameID int64) error {
	return s.db.WithContext(ctx).Model(&model.Game{}).
		Where("id = ?", gameID).
		Updates(map[string]interface{}{
			"status":   model.GameStatusFinished,
			"ended_at": time.Now().UnixMilli(),
		}).Error
}

// CreateRound records a round start and returns its key.
func (s *GameStore) CreateRound(ctx context.Context, gameID, trackID int64, index int, startedAt int64) (int64, error) {
	round := model.Round{
		GameID:     gameID,
		TrackID:    trackID,
		RoundIndex: index,
		StartedAt:  startedAt,
	}
	if err := s.db.WithContext(ctx).Create(&round).Error; err != nil {
		return 0, err
	}
	return round.ID, nil
}

// FinishRound stamps a round's end time.
func (s *GameStore) FinishRound(ctx context.Context, roundID, endedAt int64) error {
	return s.db.WithContext(ctx).Model(&model.Round{}).
		Where("id = ?", roundID).
		Update("ended_at", endedAt).Error
}

// RecordAnswer appends a submitted answer, correct or not.
func (s *GameStore) RecordAnswer(ctx context.Context, roundID, playerID int64, text string, correct bool, points int, elapsedMs int64) error {
	answer := model.RoundAnswer{
		RoundID:    roundID,
		PlayerID:   playerID,
		AnswerText: text,
		IsCorrect:  correct,
		Points:     points,
		ElapsedMs:  elapsedMs,
	}
	return s.db.WithContext(ctx).Create(&answer).Error
}

// PlayerScore sums a player's recorded points within one game. Used to
// restore live scores when a running game is resumed after a restart.
func (s *GameStore) PlayerScore(ctx context.Context, gameID, playerID int64) (int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Table("round_answers a").
		Select("COALESCE(SUM(a.points), 0)").
		Joins("JOIN rounds r ON r.id = a.round_id").
		Where("r.game_id = ? AND a.player_id = ?", gameID, playerID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
