package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"blindtest/config"
	"blindtest/core/auth"
	"blindtest/core/deezer"
	"blindtest/core/game"
	"blindtest/core/importer"
	"blindtest/logger"
	"blindtest/repository"

	"github.com/gorilla/mux"
)

// APIHandler serves the REST surface next to the websocket room: track
// search, stats, song-list import and the Twitch login flow.
type APIHandler struct {
	deezer   *deezer.Client
	stats    *repository.StatsRepository
	importer *importer.Importer
	twitch   *auth.TwitchAuthenticator
	engine   *game.Engine
	cfg      *config.Config
}

// NewAPIHandler creates the REST handler. The stats repository may be nil
// when the database is unavailable.
func NewAPIHandler(
	deezerClient *deezer.Client,
	stats *repository.StatsRepository,
	imp *importer.Importer,
	twitch *auth.TwitchAuthenticator,
	engine *game.Engine,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		deezer:   deezerClient,
		stats:    stats,
		importer: imp,
		twitch:   twitch,
		engine:   engine,
		cfg:      cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write response failed", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Suggest proxies a track search, shaped like the upstream payload so the
// web app can reuse its renderer.
func (h *APIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
		return
	}

	tracks, err := h.deezer.Search(r.Context(), query)
	if err != nil {
		logger.Error("track search failed", logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "track search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": tracks})
}

// Track fetches one track by id.
func (h *APIHandler) Track(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	track, err := h.deezer.Track(r.Context(), id)
	if err != nil {
		logger.Error("track lookup failed", logger.String("id", id), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "track lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// Stats reports recorded-game aggregates, optionally scoped by gameId.
func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}

	var gameID *int64
	if raw := r.URL.Query().Get("gameId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gameId")
			return
		}
		gameID = &id
	}

	report, err := h.stats.Report(r.Context(), gameID)
	if err != nil {
		logger.Error("stats query failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "stats query failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Games lists recorded games, newest first.
func (h *APIHandler) Games(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}

	games, err := h.stats.ListGames(r.Context())
	if err != nil {
		logger.Error("game list query failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "game list query failed")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// ImportSongs resolves the configured song list and queues every match.
func (h *APIHandler) ImportSongs(w http.ResponseWriter, r *http.Request) {
	if err := h.importer.Load(); err != nil {
		logger.Error("song list load failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "song list unavailable")
		return
	}

	tracks, unmatched := h.importer.Resolve(r.Context())
	for _, track := range tracks {
		h.engine.AddTrack(track)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracks":    tracks,
		"unmatched": unmatched,
	})
}

// ExportPlaylist streams the current playlist as an "artist;title" CSV.
func (h *APIHandler) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	tracks := h.engine.PlaylistSnapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="playlist.csv"`)

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	_ = cw.Write([]string{"artist", "title"})
	for _, track := range tracks {
		_ = cw.Write([]string{track.Artist, track.Title})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Error("playlist export failed", logger.ErrorField(err))
	}
}

// TwitchLogin redirects the browser into the Twitch OAuth flow.
func (h *APIHandler) TwitchLogin(w http.ResponseWriter, r *http.Request) {
	if !h.twitch.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "twitch login not configured")
		return
	}
	http.Redirect(w, r, h.twitch.AuthorizeURL(h.cfg.TwitchRedirectURI), http.StatusFound)
}

// TwitchCallback finishes the OAuth flow and bounces back to the web app
// with the verified name and a signed token.
func (h *APIHandler) TwitchCallback(w http.ResponseWriter, r *http.Request) {
	if !h.twitch.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "twitch login not configured")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/?t_error=twitch", http.StatusFound)
		return
	}

	name, err := h.twitch.ResolveLogin(r.Context(), code, h.cfg.TwitchRedirectURI)
	if err != nil {
		logger.Error("twitch login failed", logger.ErrorField(err))
		http.Redirect(w, r, "/?t_error=twitch", http.StatusFound)
		return
	}

	token, err := auth.NameToken(h.cfg.JWTSecret, name)
	if err != nil {
		logger.Error("name token mint failed", logger.ErrorField(err))
		http.Redirect(w, r, "/?t_error=twitch", http.StatusFound)
		return
	}

	params := url.Values{
		"t_name":  {name},
		"t_token": {token},
	}
	http.Redirect(w, r, "/?"+params.Encode(), http.StatusFound)
}
