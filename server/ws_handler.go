package server

import (
	"context"
	"encoding/json"
	"net/http"

	"blindtest/config"
	"blindtest/core/auth"
	"blindtest/core/game"
	"blindtest/core/room"
	"blindtest/logger"
	"blindtest/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades connections and routes inbound commands to the engine.
type WSHandler struct {
	hub      *room.Hub
	engine   *game.Engine
	cfg      *config.Config
	upgrader websocket.Upgrader
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(hub *room.Hub, engine *game.Engine, cfg *config.Config) *WSHandler {
	return &WSHandler{
		hub:    hub,
		engine: engine,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS handles the websocket endpoint. The role comes from a query
// parameter; the moderator and overlay roles are gated by the configured
// key.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	switch role {
	case room.RoleModerator, room.RoleOverlay:
		if h.cfg.ModeratorKey != "" && r.URL.Query().Get("key") != h.cfg.ModeratorKey {
			http.Error(w, "invalid moderator key", http.StatusForbidden)
			return
		}
	default:
		role = room.RolePlayer
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &room.Client{
		ID:   uuid.NewString(),
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Role: role,
	}

	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(context.Background(), h.handleMessage)
		// The connection is gone; the player record stays, flagged offline.
		h.engine.Leave(client.ID)
	}()

	logger.Info("websocket connected",
		logger.String("conn", client.ID),
		logger.String("role", role))
}

// Inbound command payloads.

type joinPayload struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type addTrackPayload struct {
	Track model.Track `json:"track"`
}

type startRoundPayload struct {
	Index *int `json:"index,omitempty"`
}

type settingsPayload struct {
	Settings game.SettingsPatch `json:"settings"`
}

type kickPayload struct {
	ID string `json:"id"`
}

type newGamePayload struct {
	Name string `json:"name,omitempty"`
}

// handleMessage maps one inbound message to an engine command. Unknown
// types and malformed payloads are dropped: network races make them
// routine, not exceptional.
func (h *WSHandler) handleMessage(client *room.Client, msg *room.WSMessage) {
	switch msg.Type {
	case "room:join":
		var p joinPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		name := p.Name
		if p.Token != "" {
			if verified, err := auth.ParseNameToken(h.cfg.JWTSecret, p.Token); err == nil {
				name = verified
			} else {
				logger.Debug("invalid name token", logger.ErrorField(err))
			}
		}
		h.engine.Join(client.ID, name, client.Role == room.RolePlayer)

	case "room:leave":
		h.engine.Leave(client.ID)

	case "answer:submit":
		var p answerPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		h.engine.SubmitAnswer(client.ID, p.Text)

	default:
		h.handleModeratorMessage(client, msg)
	}
}

func (h *WSHandler) handleModeratorMessage(client *room.Client, msg *room.WSMessage) {
	if client.Role != room.RoleModerator {
		return
	}

	switch msg.Type {
	case "admin:addTrack":
		var p addTrackPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		h.engine.AddTrack(p.Track)

	case "admin:clearPlaylist":
		h.engine.ClearPlaylist()

	case "admin:startRound":
		index := -1
		if len(msg.Data) > 0 {
			var p startRoundPayload
			if err := json.Unmarshal(msg.Data, &p); err == nil && p.Index != nil {
				index = *p.Index
			}
		}
		h.engine.StartRound(index)

	case "admin:startTestRound":
		h.engine.StartTestRound()

	case "admin:skip":
		h.engine.Skip()

	case "admin:reveal":
		h.engine.Reveal()

	case "admin:settings":
		var p settingsPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		h.engine.UpdateSettings(p.Settings)

	case "admin:kick":
		var p kickPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		h.engine.Kick(p.ID)

	case "admin:newGame":
		var p newGamePayload
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				return
			}
		}
		h.engine.NewGame(p.Name)
	}
}
