package repository

import (
	"context"

	"blindtest/model"

	"gorm.io/gorm"
)

// GlobalStats are the headline aggregates, global or per game.
type GlobalStats struct {
	TotalPlayers int64 `json:"totalPlayers"`
	TotalGames   int64 `json:"totalGames"`
	TotalRounds  int64 `json:"totalRounds"`
	TotalAnswers int64 `json:"totalAnswers"`
	TotalPoints  int64 `json:"totalPoints"`
}

// PlayerStats is one player's leaderboard row.
type PlayerStats struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Score             int64    `json:"score"`
	AnswersCount      int64    `json:"answersCount"`
	AvgResponseTimeMs *float64 `json:"avgResponseTimeMs"`
	MinResponseTimeMs *int64   `json:"minResponseTimeMs"`
	MaxResponseTimeMs *int64   `json:"maxResponseTimeMs"`
}

// RoundStats is one round's summary row.
type RoundStats struct {
	ID                int64    `json:"id"`
	RoundIndex        int      `json:"roundIndex"`
	Title             *string  `json:"title"`
	Artist            *string  `json:"artist"`
	AnswersCount      int64    `json:"answersCount"`
	AvgResponseTimeMs *float64 `json:"avgResponseTimeMs"`
	MinResponseTimeMs *int64   `json:"minResponseTimeMs"`
	MaxResponseTimeMs *int64   `json:"maxResponseTimeMs"`
}

// StatsReport bundles everything the results page renders.
type StatsReport struct {
	Global  GlobalStats   `json:"global"`
	Players []PlayerStats `json:"players"`
	Rounds  []RoundStats  `json:"rounds"`
}

// StatsRepository aggregates the recorded games for the results page.
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a stats repository.
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Report computes aggregates, either globally or scoped to one game.
func (r *StatsRepository) Report(ctx context.Context, gameID *int64) (*StatsReport, error) {
	report := &StatsReport{}

	if err := r.globalStats(ctx, gameID, &report.Global); err != nil {
		return nil, err
	}
	if err := r.playerStats(ctx, gameID, &report.Players); err != nil {
		return nil, err
	}
	if err := r.roundStats(ctx, gameID, &report.Rounds); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *StatsRepository) globalStats(ctx context.Context, gameID *int64, out *GlobalStats) error {
	if gameID != nil {
		return r.db.WithContext(ctx).Raw(`
			SELECT
				(SELECT COUNT(DISTINCT a.player_id)
				 FROM round_answers a
				 JOIN rounds r2 ON r2.id = a.round_id
				 WHERE r2.game_id = ?)                                   AS total_players,
				1                                                        AS total_games,
				(SELECT COUNT(*) FROM rounds r WHERE r.game_id = ?)      AS total_rounds,
				(SELECT COUNT(*) FROM round_answers a
				 JOIN rounds r2 ON r2.id = a.round_id
				 WHERE r2.game_id = ?)                                   AS total_answers,
				COALESCE((SELECT SUM(a.points) FROM round_answers a
				          JOIN rounds r2 ON r2.id = a.round_id
				          WHERE r2.game_id = ?), 0)                      AS total_points`,
			*gameID, *gameID, *gameID, *gameID).Scan(out).Error
	}

	return r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM players)                             AS total_players,
			(SELECT COUNT(*) FROM games)                               AS total_games,
			(SELECT COUNT(*) FROM rounds)                              AS total_rounds,
			(SELECT COUNT(*) FROM round_answers)                       AS total_answers,
			COALESCE((SELECT SUM(points) FROM round_answers), 0)       AS total_points`).
		Scan(out).Error
}

func (r *StatsRepository) playerStats(ctx context.Context, gameID *int64, out *[]PlayerStats) error {
	query := r.db.WithContext(ctx).
		Table("players p").
		Select(`p.id, p.name,
			COALESCE(SUM(a.points), 0) AS score,
			COUNT(a.id)                AS answers_count,
			AVG(a.elapsed_ms)          AS avg_response_time_ms,
			MIN(a.elapsed_ms)          AS min_response_time_ms,
			MAX(a.elapsed_ms)          AS max_response_time_ms`).
		Joins("LEFT JOIN round_answers a ON a.player_id = p.id").
		Joins("LEFT JOIN rounds r ON r.id = a.round_id").
		Group("p.id, p.name").
		Order("score DESC")

	if gameID != nil {
		query = query.Where("r.game_id = ?", *gameID)
	}
	return query.Scan(out).Error
}

func (r *StatsRepository) roundStats(ctx context.Context, gameID *int64, out *[]RoundStats) error {
	query := r.db.WithContext(ctx).
		Table("rounds r").
		Select(`r.id, r.round_index, t.title, t.artist,
			COUNT(a.id)       AS answers_count,
			AVG(a.elapsed_ms) AS avg_response_time_ms,
			MIN(a.elapsed_ms) AS min_response_time_ms,
			MAX(a.elapsed_ms) AS max_response_time_ms`).
		Joins("LEFT JOIN tracks t ON t.id = r.track_id").
		Joins("LEFT JOIN round_answers a ON a.round_id = r.id").
		Group("r.id, r.round_index, t.title, t.artist").
		Order("r.id ASC")

	if gameID != nil {
		query = query.Where("r.game_id = ?", *gameID)
	}
	return query.Scan(out).Error
}

// ListGames returns every recorded game, newest first.
func (r *StatsRepository) ListGames(ctx context.Context) ([]model.Game, error) {
	var games []model.Game
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Find(&games).Error
	return games, err
}
