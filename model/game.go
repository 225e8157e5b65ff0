package model

import "time"

// Persistence entities for the historical stats side-channel. The in-memory
// room never reads these back during live play.

// TrackRecord is a track as stored for statistics.
type TrackRecord struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DeezerID   int64     `json:"deezerId" gorm:"uniqueIndex;column:deezer_id"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Artist     string    `json:"artist" gorm:"size:255"`
	Album      string    `json:"album" gorm:"size:255"`
	PreviewURL string    `json:"previewUrl" gorm:"type:text"`
	CoverURL   string    `json:"coverUrl" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName sets the table name.
func (TrackRecord) TableName() string {
	return "tracks"
}

// Player is a player identity as stored for statistics, keyed by display name.
type Player struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:64;not null;uniqueIndex"`
	TwitchLogin string    `json:"twitchLogin,omitempty" gorm:"size:64"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName sets the table name.
func (Player) TableName() string {
	return "players"
}

// Game statuses.
const (
	GameStatusRunning  = "running"
	GameStatusFinished = "finished"
)

// Game is one evening of play.
type Game struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:255"`
	Status    string    `json:"status" gorm:"size:20;default:'running';index"`
	StartedAt int64     `json:"startedAt"`
	EndedAt   int64     `json:"endedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName sets the table name.
func (Game) TableName() string {
	return "games"
}

// Round is one played track within a game.
type Round struct {
	ID         int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	GameID     int64 `json:"gameId" gorm:"index;not null"`
	TrackID    int64 `json:"trackId" gorm:"index"`
	RoundIndex int   `json:"roundIndex"`
	StartedAt  int64 `json:"startedAt"`
	EndedAt    int64 `json:"endedAt"`
}

// TableName sets the table name.
func (Round) TableName() string {
	return "rounds"
}

// RoundAnswer is a single submitted answer, right or wrong.
type RoundAnswer struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RoundID    int64     `json:"roundId" gorm:"index;not null"`
	PlayerID   int64     `json:"playerId" gorm:"index;not null"`
	AnswerText string    `json:"answerText" gorm:"type:text"`
	IsCorrect  bool      `json:"isCorrect"`
	Points     int       `json:"points" gorm:"not null;default:0"`
	ElapsedMs  int64     `json:"elapsedMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName sets the table name.
func (RoundAnswer) TableName() string {
	return "round_answers"
}
