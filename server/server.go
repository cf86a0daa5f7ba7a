package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"EchoWave/cache"
	"EchoWave/config"
	"EchoWave/core/auth"
	"EchoWave/core/events"
	"EchoWave/core/importer"
	"EchoWave/core/media"
	"EchoWave/core/player"
	"EchoWave/db"
	"EchoWave/logger"
	"EchoWave/model"
	"EchoWave/repository"
	"EchoWave/storage"
)

// Start wires the stores and services and runs the HTTP server until the
// process receives SIGINT or SIGTERM. A store that fails to open is fatal.
func Start(cfg *config.Config) error {
	authStore, contentStore, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer closeStores(cfg)

	if err := storage.InitMinio(cfg); err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	if cfg.RedisHost != "" {
		if err := db.ConnectRedis(cfg); err != nil {
			logger.Warn("Redis unavailable, queue snapshots disabled", logger.ErrorField(err))
		} else {
			defer db.CloseRedis()
		}
	}

	authService := auth.NewService(authStore)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)

	hub := events.NewHub()
	go hub.Run()
	defer hub.Close()

	engine := player.New(media.NewNullElement(), contentStore.Tracks)
	engine.SetQueueListener(func(queue []*model.Track) {
		userID, ok, err := authStore.Sessions.CurrentSession()
		if err != nil || !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.SaveQueue(ctx, userID, queue); err != nil {
			logger.Warn("Failed to snapshot queue", logger.ErrorField(err))
		}
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ImportDir != "" && cfg.ImportUserID > 0 {
		im := importer.New(cfg.ImportDir, cfg.ImportUserID, contentStore.Tracks)
		go func() {
			if err := im.Watch(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Import watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	apiHandler := NewAPIHandler(contentStore, authService, tokens, engine, hub, cfg)
	router := newRouter(apiHandler)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-rootCtx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// openStores builds the auth and content stores for the configured driver.
func openStores(cfg *config.Config) (*repository.AuthStore, *repository.ContentStore, error) {
	switch cfg.StorageDriver {
	case config.DriverMySQL:
		if err := db.ConnectDB(cfg); err != nil {
			return nil, nil, err
		}
		if err := db.ConnectGormDB(cfg); err != nil {
			return nil, nil, err
		}
		if err := db.MigrateSchema(); err != nil {
			return nil, nil, err
		}
		return repository.NewMySQLAuthStore(db.DB), repository.NewMySQLContentStore(db.DB), nil

	case config.DriverMemory:
		authStore := repository.NewMemoryAuthStore()
		return authStore, repository.NewMemoryContentStore(authStore.Users), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.StorageDriver)
	}
}

func closeStores(cfg *config.Config) {
	if cfg.StorageDriver != config.DriverMySQL {
		return
	}
	if err := db.CloseGormDB(); err != nil {
		logger.Warn("Failed to close GORM connection", logger.ErrorField(err))
	}
	db.CloseDB()
}

// newRouter builds the full REST surface under /api.
func newRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	api := router.PathPrefix("/api").Subrouter()

	// Auth.
	api.HandleFunc("/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.AuthMiddleware(h.LogoutHandler)).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.AuthMiddleware(h.CurrentUserHandler)).Methods(http.MethodGet)
	api.HandleFunc("/auth/change-password", h.AuthMiddleware(h.ChangePasswordHandler)).Methods(http.MethodPost)

	// Users.
	api.HandleFunc("/users", h.GetUsersHandler).Methods(http.MethodGet)
	api.HandleFunc("/users", h.CreateUserHandler).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", h.GetUserHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", h.AuthMiddleware(h.UpdateUserHandler)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}/toggle-admin", h.AuthMiddleware(h.ToggleAdminHandler)).Methods(http.MethodPut)

	// Tracks.
	api.HandleFunc("/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks", h.CreateTrackHandler).Methods(http.MethodPost)
	api.HandleFunc("/tracks/{id:[0-9]+}", h.GetTrackHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id:[0-9]+}", h.AuthMiddleware(h.DeleteTrackHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/tracks/{id:[0-9]+}/increment-plays", h.IncrementPlaysHandler).Methods(http.MethodPut)
	api.HandleFunc("/tracks/user/{userId:[0-9]+}", h.GetUserTracksHandler).Methods(http.MethodGet)

	// Likes.
	api.HandleFunc("/likes", h.CreateLikeHandler).Methods(http.MethodPost)
	api.HandleFunc("/likes/user/{userId:[0-9]+}/track/{trackId:[0-9]+}", h.DeleteLikeHandler).Methods(http.MethodDelete)
	api.HandleFunc("/likes/track/{trackId:[0-9]+}", h.GetTrackLikesHandler).Methods(http.MethodGet)
	api.HandleFunc("/likes/user/{userId:[0-9]+}", h.GetUserLikesHandler).Methods(http.MethodGet)
	api.HandleFunc("/likes/check/user/{userId:[0-9]+}/track/{trackId:[0-9]+}", h.CheckLikeHandler).Methods(http.MethodGet)

	// Comments.
	api.HandleFunc("/comments", h.CreateCommentHandler).Methods(http.MethodPost)
	api.HandleFunc("/comments/track/{trackId:[0-9]+}", h.GetTrackCommentsHandler).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id:[0-9]+}", h.DeleteCommentHandler).Methods(http.MethodDelete)

	// Follows.
	api.HandleFunc("/follows", h.CreateFollowHandler).Methods(http.MethodPost)
	api.HandleFunc("/follows/follower/{followerId:[0-9]+}/followed/{followedId:[0-9]+}", h.DeleteFollowHandler).Methods(http.MethodDelete)
	api.HandleFunc("/follows/follower/{followerId:[0-9]+}", h.GetFollowingHandler).Methods(http.MethodGet)
	api.HandleFunc("/follows/followed/{followedId:[0-9]+}", h.GetFollowersHandler).Methods(http.MethodGet)
	api.HandleFunc("/follows/check/follower/{followerId:[0-9]+}/followed/{followedId:[0-9]+}", h.CheckFollowHandler).Methods(http.MethodGet)

	// Playlists.
	api.HandleFunc("/playlists", h.CreatePlaylistHandler).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.GetPlaylistHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.UpdatePlaylistHandler).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.DeletePlaylistHandler).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/user/{userId:[0-9]+}", h.GetUserPlaylistsHandler).Methods(http.MethodGet)

	// Playlist tracks.
	api.HandleFunc("/playlist-tracks", h.AddPlaylistTrackHandler).Methods(http.MethodPost)
	api.HandleFunc("/playlist-tracks/playlist/{playlistId:[0-9]+}", h.GetPlaylistTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlist-tracks/playlist/{playlistId:[0-9]+}/track/{trackId:[0-9]+}", h.RemovePlaylistTrackHandler).Methods(http.MethodDelete)
	api.HandleFunc("/playlist-tracks/playlist/{playlistId:[0-9]+}/track/{trackId:[0-9]+}/position", h.UpdatePlaylistTrackPositionHandler).Methods(http.MethodPut)

	// Stats.
	api.HandleFunc("/stats/trending", h.GetTrendingTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/stats/latest", h.GetLatestTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/stats/popular-users", h.GetPopularUsersHandler).Methods(http.MethodGet)

	// Player.
	api.HandleFunc("/player", h.GetPlayerStateHandler).Methods(http.MethodGet)
	api.HandleFunc("/player/play/{trackId:[0-9]+}", h.PlayTrackHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/toggle", h.TogglePlayHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", h.PauseHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/next", h.NextTrackHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/previous", h.PreviousTrackHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/seek", h.SeekHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/volume", h.SetVolumeHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/shuffle", h.ToggleShuffleHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/repeat", h.ToggleRepeatHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/queue/{trackId:[0-9]+}", h.AddToQueueHandler).Methods(http.MethodPost)
	api.HandleFunc("/player/queue/{trackId:[0-9]+}", h.RemoveFromQueueHandler).Methods(http.MethodDelete)
	api.HandleFunc("/player/queue", h.ClearQueueHandler).Methods(http.MethodDelete)
	api.HandleFunc("/player/queue/snapshot", h.AuthMiddleware(h.GetQueueSnapshotHandler)).Methods(http.MethodGet)

	// Uploads and events.
	api.HandleFunc("/upload", h.AuthMiddleware(h.UploadTrackHandler)).Methods(http.MethodPost)
	api.HandleFunc("/upload/cover", h.AuthMiddleware(h.UploadCoverHandler)).Methods(http.MethodPost)
	api.HandleFunc("/events/ws", h.EventsWSHandler).Methods(http.MethodGet)

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
