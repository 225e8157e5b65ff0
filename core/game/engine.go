package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blindtest/logger"
	"blindtest/model"
)

// deadlineGrace is added to the answer window before the server force-ends a
// round, leaving in-flight answers a little network slack.
const deadlineGrace = 100 * time.Millisecond

// collaboratorTimeout bounds every call to the search and persistence
// collaborators.
const collaboratorTimeout = 10 * time.Second

// TrackSource supplies the canonical test-round track.
type TrackSource interface {
	TestTrack(ctx context.Context) (model.Track, error)
}

// Engine orchestrates the room: it applies moderator and player commands
// strictly sequentially on a single goroutine, so no two mutations ever race
// against the aggregate. Timers and collaborator completions re-enter the
// same queue.
type Engine struct {
	room   *Room
	bus    Broadcaster
	store  Store
	tracks TrackSource

	cmds chan func()
	done chan struct{}

	now   func() time.Time
	after func(d time.Duration, fn func()) func() // returns a cancel handle
}

// NewEngine creates the engine. Run must be called before dispatching
// commands.
func NewEngine(settings Settings, bus Broadcaster, store Store, tracks TrackSource) *Engine {
	return &Engine{
		room:   NewRoom(settings),
		bus:    bus,
		store:  store,
		tracks: tracks,
		cmds:   make(chan func(), 64),
		done:   make(chan struct{}),
		now:    time.Now,
		after: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
	}
}

// Run executes the command loop until Stop is called.
func (e *Engine) Run() {
	for {
		select {
		case fn := <-e.cmds:
			fn()
		case <-e.done:
			return
		}
	}
}

// Stop terminates the command loop.
func (e *Engine) Stop() {
	close(e.done)
}

// dispatch enqueues a mutation onto the single-writer queue.
func (e *Engine) dispatch(fn func()) {
	select {
	case e.cmds <- fn:
	case <-e.done:
	}
}

// ========== player commands ==========

// Join registers a connection. Players are rostered; moderator and overlay
// connections are technical and only receive state. Either way the joiner
// gets the current settings, playlist and a replay of the live round phase.
func (e *Engine) Join(connID, name string, rostered bool) {
	e.dispatch(func() { e.handleJoin(connID, name, rostered) })
}

// Leave marks the connection's player offline. The record stays on the
// scoreboard.
func (e *Engine) Leave(connID string) {
	e.dispatch(func() { e.handleLeave(connID) })
}

// SubmitAnswer runs a player's guess against the current round.
func (e *Engine) SubmitAnswer(connID, text string) {
	e.dispatch(func() { e.handleSubmit(connID, text) })
}

// ========== moderator commands ==========

// AddTrack queues a track at the end of the playlist.
func (e *Engine) AddTrack(track model.Track) {
	e.dispatch(func() { e.handleAddTrack(track) })
}

// ClearPlaylist empties the playlist.
func (e *Engine) ClearPlaylist() {
	e.dispatch(func() { e.handleClearPlaylist() })
}

// StartRound starts a scored round from the playlist entry at index; a
// negative index starts the head.
func (e *Engine) StartRound(index int) {
	e.dispatch(func() { e.handleStartRound(index) })
}

// StartTestRound starts a non-scoring round with the canonical test track.
func (e *Engine) StartTestRound() {
	e.dispatch(func() { e.handleStartTestRound() })
}

// Skip abandons the current round without revealing the answer.
func (e *Engine) Skip() {
	e.dispatch(func() { e.handleSkip() })
}

// Reveal ends the current round early and discloses the track.
func (e *Engine) Reveal() {
	e.dispatch(func() { e.handleReveal() })
}

// UpdateSettings merges a partial settings update and broadcasts the result.
func (e *Engine) UpdateSettings(patch SettingsPatch) {
	e.dispatch(func() { e.handleSettings(patch) })
}

// Kick bans the player behind a connection.
func (e *Engine) Kick(connID string) {
	e.dispatch(func() { e.handleKick(connID) })
}

// NewGame resets all in-memory scores and the round counter, keeps the
// roster and playlist, and rotates the persisted game.
func (e *Engine) NewGame(name string) {
	e.dispatch(func() { e.handleNewGame(name) })
}

// ========== synchronous reads ==========

// PlaylistSnapshot reads the playlist through the command queue.
func (e *Engine) PlaylistSnapshot() []model.Track {
	out := make(chan []model.Track, 1)
	e.dispatch(func() { out <- e.room.PlaylistSnapshot() })
	select {
	case v := <-out:
		return v
	case <-e.done:
		return nil
	}
}

// ========== bootstrap ==========

// ResumeGame attaches the engine to the latest running persisted game,
// creating one if needed. Called once at startup; failures leave the room
// playable without a durable record.
func (e *Engine) ResumeGame() {
	name := defaultGameName(e.now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		g, err := e.store.EnsureGame(ctx, name)
		if err != nil {
			logger.Warn("could not resume game", logger.ErrorField(err))
			return
		}
		e.dispatch(func() {
			if e.room.GameID == 0 {
				e.room.GameID = g.ID
				e.room.GameName = g.Name
			}
		})
	}()
}

// ========== handlers (command-loop only) ==========

func (e *Engine) handleJoin(connID, name string, rostered bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}

	if rostered {
		rec, reclaimed := e.room.Roster.Join(connID, name)
		if rec.StoreKey == 0 {
			e.ensurePlayerKey(rec.Name)
		}
		logger.Info("player joined",
			logger.String("conn", connID),
			logger.String("name", name),
			logger.Bool("reclaimed", reclaimed))
	}

	e.bus.Broadcast(EvtPlayers, e.room.Roster.Snapshot())
	e.bus.SendTo(connID, EvtSettings, e.room.Settings)
	e.bus.SendTo(connID, EvtPlaylist, e.room.PlaylistSnapshot())

	// Late joiners reconstruct the live state from a replay of the
	// phase-appropriate event instead of missed history.
	switch e.room.Round.Phase {
	case PhasePlaying:
		if t := e.room.Round.Track; t != nil {
			e.bus.SendTo(connID, EvtRoundStart, e.roundStartEvent(*t))
		}
	case PhaseReveal:
		if t := e.room.Round.Track; t != nil {
			e.bus.SendTo(connID, EvtRoundReveal, e.roundRevealEvent(*t))
		}
	}
}

func (e *Engine) handleLeave(connID string) {
	delete(e.room.lastAnswerAt, connID)
	if !e.room.Roster.MarkOffline(connID) {
		return
	}
	e.bus.Broadcast(EvtPlayers, e.room.Roster.Snapshot())
}

func (e *Engine) handleKick(connID string) {
	if !e.room.Roster.Ban(connID) {
		return
	}
	e.bus.Broadcast(EvtPlayers, e.room.Roster.Snapshot())
	e.bus.SendTo(connID, EvtKicked, nil)
}

func (e *Engine) handleSettings(patch SettingsPatch) {
	e.room.Settings.Apply(patch)
	e.bus.Broadcast(EvtSettings, e.room.Settings)
}

func (e *Engine) handleNewGame(name string) {
	if strings.TrimSpace(name) == "" {
		name = defaultGameName(e.now())
	}

	prevGameID := e.room.GameID
	e.room.GameID = 0
	e.room.GameName = name
	e.room.RoundCounter = 0
	e.room.Roster.ResetScores()
	e.bus.Broadcast(EvtPlayers, e.room.Roster.Snapshot())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()

		if prevGameID != 0 {
			if err := e.store.CloseGame(ctx, prevGameID); err != nil {
				logger.Warn("close game failed", logger.Int64("game", prevGameID), logger.ErrorField(err))
			}
		}
		g, err := e.store.CreateGame(ctx, name)
		if err != nil {
			logger.Warn("create game failed", logger.ErrorField(err))
			g = &model.Game{Name: name}
		}
		e.dispatch(func() {
			e.room.GameID = g.ID
			e.room.GameName = g.Name
			e.bus.Broadcast(EvtGameChanged, GameChangedEvent{ID: g.ID, Name: g.Name})
		})
	}()
}

func (e *Engine) handleAddTrack(track model.Track) {
	if track.Preview == "" {
		return
	}
	e.room.Playlist = append(e.room.Playlist, track)
	e.persist("ensure track", func(ctx context.Context) error {
		_, err := e.store.EnsureTrack(ctx, track)
		return err
	})
	e.bus.Broadcast(EvtPlaylist, e.room.PlaylistSnapshot())
}

func (e *Engine) handleClearPlaylist() {
	e.room.Playlist = nil
	e.bus.Broadcast(EvtPlaylist, e.room.PlaylistSnapshot())
}

func (e *Engine) handleStartRound(index int) {
	if e.room.Round.Phase == PhasePlaying {
		return
	}
	track, ok := e.room.TakeTrack(index)
	if !ok {
		return
	}
	e.bus.Broadcast(EvtPlaylist, e.room.PlaylistSnapshot())
	e.startRound(track, false)
}

func (e *Engine) handleStartTestRound() {
	if e.room.Round.Phase == PhasePlaying {
		return
	}
	if e.tracks == nil {
		return
	}
	// The search call must not block other commands: fetch off-loop, then
	// re-enter the queue and re-check the phase.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		track, err := e.tracks.TestTrack(ctx)
		if err != nil || track.Preview == "" {
			logger.Warn("test track unavailable", logger.ErrorField(err))
			return
		}
		e.dispatch(func() {
			if e.room.Round.Phase == PhasePlaying {
				return
			}
			e.startRound(track, true)
		})
	}()
}

func (e *Engine) handleSkip() {
	if e.room.Round.Phase == PhasePlaying {
		e.finishRoundRecord()
	}
	e.room.Round.Clear()
	// No reveal on skip: the answer stays hidden.
	e.bus.Broadcast(EvtRoundSkipped, nil)
}

func (e *Engine) handleReveal() {
	if e.room.Round.Phase != PhasePlaying {
		return
	}
	e.endRound()
}

func (e *Engine) handleDeadline(seq int) {
	// A deadline that fires after the round already left PLAYING, or for an
	// older round, is a no-op.
	if e.room.Round.Seq != seq || e.room.Round.Phase != PhasePlaying {
		return
	}
	e.endRound()
}

func (e *Engine) handleSubmit(connID, text string) {
	if e.room.Round.Phase != PhasePlaying || e.room.Round.Track == nil {
		return
	}
	rec := e.room.Roster.Get(connID)
	if rec == nil || rec.Banned {
		return
	}

	now := e.now()
	cooldown := time.Duration(e.room.Settings.AnswerCooldownMs) * time.Millisecond
	if last, ok := e.room.lastAnswerAt[connID]; ok && now.Sub(last) < cooldown {
		e.bus.SendTo(connID, EvtAnswerRejected, nil)
		return
	}
	e.room.lastAnswerAt[connID] = now

	track := *e.room.Round.Track
	elapsed := now.Sub(e.room.Round.StartedAt).Milliseconds()

	if !IsCorrect(text, track) {
		e.recordAnswer(rec, text, false, 0, elapsed)
		e.bus.SendTo(connID, EvtAnswerRejected, nil)
		return
	}

	if e.room.Round.HasAnswered(rec.Name) {
		e.bus.SendTo(connID, EvtAnswerRejected, nil)
		return
	}

	points := Points(elapsed, int64(e.room.Settings.AnswerWindowMs), e.room.Settings.BasePoints, e.room.Round.IsTest)
	if !e.room.Round.IsTest {
		rec.Score += points
	}
	e.room.Round.Answers = append(e.room.Round.Answers, AcceptedAnswer{
		ConnID:    connID,
		Name:      rec.Name,
		Points:    points,
		ElapsedMs: elapsed,
	})

	e.recordAnswer(rec, text, true, points, elapsed)
	e.bus.SendTo(connID, EvtAnswerAccepted, AnswerAcceptedEvent{Points: points})
	if !e.room.Round.IsTest {
		e.bus.Broadcast(EvtPlayers, e.room.Roster.Snapshot())
	}
}

// ========== internals ==========

func (e *Engine) startRound(track model.Track, isTest bool) {
	now := e.now()
	e.room.RoundCounter++
	seq := e.room.RoundCounter
	e.room.Round.Start(track, isTest, now, seq)
	e.room.RoundKey = 0

	e.persistRoundStart(track, seq, now)

	e.bus.Broadcast(EvtRoundStart, e.roundStartEvent(track))

	window := time.Duration(e.room.Settings.AnswerWindowMs) * time.Millisecond
	cancel := e.after(window+deadlineGrace, func() {
		e.dispatch(func() { e.handleDeadline(seq) })
	})
	e.room.Round.ArmDeadline(cancel)
}

func (e *Engine) endRound() {
	if !e.room.Round.Reveal() {
		return
	}
	e.finishRoundRecord()

	if t := e.room.Round.Track; t != nil {
		e.bus.Broadcast(EvtRoundReveal, e.roundRevealEvent(*t))
	}
	// The test flag only covers the round it was started for.
	e.room.Round.IsTest = false
}

func (e *Engine) roundStartEvent(track model.Track) RoundStartEvent {
	return RoundStartEvent{
		Preview:           track.Preview,
		Cover:             track.MediumCover(),
		ExtractDurationMs: e.room.Settings.ExtractDurationMs,
		AnswerWindowMs:    e.room.Settings.AnswerWindowMs,
		StartedAt:         e.room.Round.StartedAt.UnixMilli(),
		IsTestRound:       e.room.Round.IsTest,
	}
}

func (e *Engine) roundRevealEvent(track model.Track) RoundRevealEvent {
	return RoundRevealEvent{
		Title:       track.Title,
		Artist:      track.Artist,
		Cover:       track.BestCover(),
		Answers:     append([]AcceptedAnswer(nil), e.room.Round.Answers...),
		IsTestRound: e.room.Round.IsTest,
	}
}

// persist runs a fire-and-forget store write after the in-memory transition
// has committed. Failures are logged, never rolled back.
func (e *Engine) persist(op string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Warn("persistence write failed", logger.String("op", op), logger.ErrorField(err))
		}
	}()
}

// persistRoundStart chains game/track/round upserts off-loop and re-enters
// the queue to attach the round key, unless a newer round started meanwhile.
func (e *Engine) persistRoundStart(track model.Track, seq int, startedAt time.Time) {
	gameID := e.room.GameID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()

		gid := gameID
		if gid == 0 {
			g, err := e.store.EnsureGame(ctx, defaultGameName(startedAt))
			if err != nil {
				logger.Warn("ensure game failed", logger.ErrorField(err))
				return
			}
			gid = g.ID
			e.dispatch(func() {
				if e.room.GameID == 0 {
					e.room.GameID = g.ID
					e.room.GameName = g.Name
				}
			})
		}

		tid, err := e.store.EnsureTrack(ctx, track)
		if err != nil {
			logger.Warn("ensure track failed", logger.ErrorField(err))
			return
		}
		rid, err := e.store.CreateRound(ctx, gid, tid, seq, startedAt.UnixMilli())
		if err != nil {
			logger.Warn("create round failed", logger.ErrorField(err))
			return
		}
		e.dispatch(func() {
			if e.room.Round.Seq == seq {
				e.room.RoundKey = rid
			}
		})
	}()
}

func (e *Engine) finishRoundRecord() {
	roundKey := e.room.RoundKey
	if roundKey == 0 {
		return
	}
	endedAt := e.now().UnixMilli()
	e.persist("finish round", func(ctx context.Context) error {
		return e.store.FinishRound(ctx, roundKey, endedAt)
	})
}

func (e *Engine) recordAnswer(rec *PlayerRecord, text string, correct bool, points int, elapsedMs int64) {
	roundKey := e.room.RoundKey
	playerKey := rec.StoreKey
	if roundKey == 0 || playerKey == 0 {
		logger.Debug("answer not persisted, keys missing",
			logger.String("player", rec.Name),
			logger.Int64("round", roundKey))
		return
	}
	e.persist("record answer", func(ctx context.Context) error {
		return e.store.RecordAnswer(ctx, roundKey, playerKey, text, correct, points, elapsedMs)
	})
}

// ensurePlayerKey resolves the persistence key for a display name and
// attaches it to whichever record holds that name once the write returns.
// A fresh record joining a game that already has recorded answers gets its
// score restored from them, so a server restart does not zero the board.
func (e *Engine) ensurePlayerKey(name string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		key, err := e.store.EnsurePlayer(ctx, name)
		if err != nil {
			logger.Warn("ensure player failed", logger.String("name", name), logger.ErrorField(err))
			return
		}
		e.dispatch(func() {
			for _, p := range e.room.Roster.order {
				if p.Name == name {
					p.StoreKey = key
					if e.room.GameID != 0 && p.Score == 0 {
						e.restoreScore(e.room.GameID, key, name)
					}
					return
				}
			}
		})
	}()
}

// restoreScore recovers a player's score from the current game's recorded
// answers. Applied only while the record is still at zero: points earned in
// the meantime win over the historical sum.
func (e *Engine) restoreScore(gameID, playerKey int64, name string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		score, err := e.store.PlayerScore(ctx, gameID, playerKey)
		if err != nil {
			logger.Warn("score restore failed", logger.String("name", name), logger.ErrorField(err))
			return
		}
		if score == 0 {
			return
		}
		e.dispatch(func() {
			for _, p := range e.room.Roster.order {
				if p.Name == name {
					if p.Score == 0 {
						p.Score = score
						e.bus.Broadcast(EvtPlayers, e.room.Roster.Snapshot())
					}
					return
				}
			}
		})
	}()
}

func defaultGameName(now time.Time) string {
	return fmt.Sprintf("Game of %s", now.Format("2006-01-02 15:04"))
}
