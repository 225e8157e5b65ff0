package game

// Server-to-client event names on the broadcast channel.
const (
	EvtPlayers        = "room:players"
	EvtSettings       = "room:settings"
	EvtPlaylist       = "room:playlist"
	EvtRoundStart     = "round:start"
	EvtRoundReveal    = "round:reveal"
	EvtRoundSkipped   = "round:skipped"
	EvtAnswerAccepted = "answer:accepted"
	EvtAnswerRejected = "answer:rejected"
	EvtKicked         = "room:kicked"
	EvtGameChanged    = "game:changed"
)

// RoundStartEvent carries everything a client needs to play the extract and
// run its own countdown; elapsed time is computed locally from StartedAt.
type RoundStartEvent struct {
	Preview           string `json:"preview"`
	Cover             string `json:"cover,omitempty"`
	ExtractDurationMs int    `json:"extractDurationMs"`
	AnswerWindowMs    int    `json:"answerWindowMs"`
	StartedAt         int64  `json:"startedAt"`
	IsTestRound       bool   `json:"isTestRound"`
}

// RoundRevealEvent discloses the track and the round's accepted answers.
type RoundRevealEvent struct {
	Title       string           `json:"title"`
	Artist      string           `json:"artist"`
	Cover       string           `json:"cover,omitempty"`
	Answers     []AcceptedAnswer `json:"answers"`
	IsTestRound bool             `json:"isTestRound"`
}

// AnswerAcceptedEvent is sent to the submitter only.
type AnswerAcceptedEvent struct {
	Points int `json:"points"`
}

// GameChangedEvent announces a new game (scores reset).
type GameChangedEvent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Broadcaster delivers engine events to connected clients. Implementations
// must not block: slow consumers are the gateway's problem, not the
// engine's.
type Broadcaster interface {
	// Broadcast sends an event to every connected client.
	Broadcast(event string, payload interface{})
	// SendTo sends an event to a single connection. Unknown ids are ignored.
	SendTo(connID string, event string, payload interface{})
}
