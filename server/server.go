package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blindtest/cache"
	"blindtest/config"
	"blindtest/core/auth"
	"blindtest/core/deezer"
	"blindtest/core/game"
	"blindtest/core/importer"
	"blindtest/core/room"
	"blindtest/db"
	"blindtest/logger"
	"blindtest/repository"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	defer logger.Sync()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// The room runs entirely in memory; both backing services are optional.
	// Without the database there is no durable record, without Redis no
	// search cache.
	var store game.Store = game.NopStore{}
	var statsRepo *repository.StatsRepository
	if err := db.Connect(cfg); err != nil {
		logger.Warn("database unavailable, games will not be recorded", logger.ErrorField(err))
	} else {
		defer db.Close()
		if err := db.Migrate(); err != nil {
			logger.Warn("database migration failed, games will not be recorded", logger.ErrorField(err))
		} else {
			store = repository.NewGameStore(db.DB)
			statsRepo = repository.NewStatsRepository(db.DB)
		}
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, track search cache disabled", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
	}

	trackCache := cache.NewTrackCache()
	deezerClient := deezer.NewClient(cfg.DeezerAPIURL, trackCache)
	twitchAuth := auth.NewTwitchAuthenticator(cfg.TwitchClientID, cfg.TwitchClientSecret)

	hub := room.NewHub()
	go hub.Run()

	engine := game.NewEngine(game.Settings{
		ExtractDurationMs: cfg.ExtractDurationMs,
		AnswerWindowMs:    cfg.AnswerWindowMs,
		BasePoints:        cfg.BasePoints,
		AnswerCooldownMs:  cfg.AnswerCooldownMs,
	}, hub, store, deezerClient)
	go engine.Run()
	engine.ResumeGame()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	songImporter := importer.New(cfg.SongsImportPath, deezerClient)
	if err := songImporter.Load(); err != nil {
		logger.Warn("song list not loaded", logger.String("path", cfg.SongsImportPath), logger.ErrorField(err))
	}
	go songImporter.Watch(watchCtx)

	apiHandler := NewAPIHandler(deezerClient, statsRepo, songImporter, twitchAuth, engine, cfg)
	wsHandler := NewWSHandler(hub, engine, cfg)

	router := mux.NewRouter()

	// CORS middleware.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Realtime room endpoint
	router.HandleFunc("/ws", wsHandler.ServeWS)

	// Track search proxy
	router.HandleFunc("/api/suggest", apiHandler.Suggest).Methods(http.MethodGet)
	router.HandleFunc("/api/track/{id}", apiHandler.Track).Methods(http.MethodGet)

	// Recorded games and stats
	router.HandleFunc("/api/stats", apiHandler.Stats).Methods(http.MethodGet)
	router.HandleFunc("/api/games", apiHandler.Games).Methods(http.MethodGet)

	// Song list import/export
	router.HandleFunc("/api/import-songs", apiHandler.ImportSongs).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/export", apiHandler.ExportPlaylist).Methods(http.MethodGet)

	// Twitch OAuth for verified display names
	router.HandleFunc("/auth/twitch/login", apiHandler.TwitchLogin).Methods(http.MethodGet)
	router.HandleFunc("/auth/twitch/callback", apiHandler.TwitchCallback).Methods(http.MethodGet)

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", logger.ErrorField(err))
	}

	engine.Stop()
	hub.Stop()
	logger.Info("server stopped")
}
