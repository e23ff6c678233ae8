// Package server is the composition root: it opens the database, builds
// the media store, services and handlers, and mounts them on a chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
	"github.com/ganeswar07/WatchWonders-Backend/internal/config"
	"github.com/ganeswar07/WatchWonders-Backend/internal/handler"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
	"github.com/ganeswar07/WatchWonders-Backend/internal/middleware"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/ratelimit"
	sqliteRepo "github.com/ganeswar07/WatchWonders-Backend/internal/repository/sqlite"
	"github.com/ganeswar07/WatchWonders-Backend/internal/service"
)

// Server owns the router and the resources that must be closed on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	redis  *redis.Client // nil when REDIS_ADDR is unset
}

// New wires every dependency from cfg. The caller must call Close (Start
// does so itself) to release the database and Redis connections.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	db, err := sqliteRepo.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	if err := s.setupRoutes(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database and Redis connections.
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

// mediaStore picks S3 when a bucket is configured and the local disk
// otherwise. The disk store is served back under /media.
func (s *Server) mediaStore(ctx context.Context) (media.Store, error) {
	if s.config.S3.Enabled() {
		store, err := media.NewS3Store(ctx, s.config.S3)
		if err != nil {
			return nil, err
		}
		s.logger.Info("media store: s3", slog.String("bucket", s.config.S3.Bucket))
		return store, nil
	}

	store, err := media.NewDiskStore(s.config.MediaDir, s.config.BaseURL+"/media")
	if err != nil {
		return nil, err
	}
	s.logger.Info("media store: disk", slog.String("dir", store.Root()))
	fileServer := http.FileServer(http.Dir(store.Root()))
	s.router.Handle("/media/*", http.StripPrefix("/media/", fileServer))
	return store, nil
}

// setupRoutes configures middleware and every route under /api/v1.
//
// Middleware order: RequestID, RealIP, Logger, Recoverer. RealIP has to
// run before the login rate limiter, which keys on the remote address. It is
// only installed with TRUST_PROXY, since X-Forwarded-For is client-controlled
// when nothing in front of the server rewrites it.
func (s *Server) setupRoutes(ctx context.Context) error {
	s.router.Use(chimiddleware.RequestID)
	if s.config.TrustProxy {
		s.router.Use(chimiddleware.RealIP)
	}
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	store, err := s.mediaStore(ctx)
	if err != nil {
		return fmt.Errorf("creating media store: %w", err)
	}
	staging, err := media.NewStaging(s.config.TempDir, s.config.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("creating staging area: %w", err)
	}

	tokens, err := auth.NewTokenService(s.config.TokenConfig())
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// === Services ===
	users := s.db.Users()
	videos := s.db.Videos()
	relations := s.db.Relations()
	tweets := s.db.Tweets()
	comments := s.db.Comments()

	mediaSvc := service.NewMediaService(store, staging, s.logger.With(slog.String("component", "media")))
	authSvc := service.NewAuthService(users, tokens, auth.NewPasswordService(), mediaSvc, s.logger.With(slog.String("component", "auth")))
	channelSvc := service.NewChannelService(users, relations, mediaSvc, s.logger)
	toggleSvc := service.NewToggleService(relations, users, videos, comments, tweets, s.logger)
	videoSvc := service.NewVideoService(videos, relations, users, mediaSvc, s.logger)
	tweetSvc := service.NewTweetService(tweets, users, s.logger)
	commentSvc := service.NewCommentService(comments, videos, s.logger)
	playlistSvc := service.NewPlaylistService(s.db.Playlists(), videos, users, s.logger)

	// === Handlers ===
	var github handler.OAuthProvider
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(s.config.GitHub)
	} else {
		s.logger.Info("GitHub login disabled (GITHUB_CLIENT_ID / GITHUB_CLIENT_SECRET not set)")
	}

	userHandler := handler.NewUserHandler(handler.UserHandlerConfig{
		Accounts:       authSvc,
		Profile:        channelSvc,
		GitHub:         github,
		Stager:         staging,
		MaxUploadBytes: s.config.MaxUploadBytes,
		Cookies: handler.CookieConfig{
			Secure:     s.config.CookieSecure,
			AccessTTL:  tokens.AccessTTL(),
			RefreshTTL: tokens.RefreshTTL(),
		},
		Logger: s.logger,
	})
	videoHandler := handler.NewVideoHandler(videoSvc, staging, s.config.MaxUploadBytes, s.logger)
	relationHandler := handler.NewRelationHandler(toggleSvc, videoSvc, channelSvc, s.logger)
	socialHandler := handler.NewSocialHandler(tweetSvc, commentSvc, playlistSvc, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	writeErr := handler.NewErrorWriter(s.logger)
	requireAuth := auth.RequireAuth(tokens, users, writeErr)

	var limiterStore ratelimit.Store
	if s.redis != nil {
		limiterStore = ratelimit.NewRedisStore(s.redis)
	}
	loginLimiter := ratelimit.New(ratelimit.Config{
		Limit:  s.config.LoginRateLimit,
		Window: s.config.LoginRateWindow,
	}, limiterStore, s.logger.With(slog.String("component", "ratelimit")))

	// === Routes ===
	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.HandleRegister)
			r.With(loginLimiter.Middleware(writeErr)).Post("/login", userHandler.HandleLogin)
			r.Patch("/tokens", userHandler.HandleRefresh)
			r.Get("/auth/github/login", userHandler.HandleGitHubLogin)
			r.Get("/auth/github/callback", userHandler.HandleGitHubCallback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", userHandler.HandleLogout)
				r.Patch("/change-password", userHandler.HandleChangePassword)
				r.Get("/current-user", userHandler.HandleCurrentUser)
				r.Patch("/update-accountDetails", userHandler.HandleUpdateAccount)
				r.Patch("/change-avatar", userHandler.HandleChangeAvatar)
				r.Patch("/change-coverImage", userHandler.HandleChangeCoverImage)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videoHandler.HandleList)
				r.Post("/", videoHandler.HandlePublish)
				r.Get("/{videoId}", videoHandler.HandleGet)
				r.Patch("/{videoId}", videoHandler.HandleUpdate)
				r.Delete("/{videoId}", videoHandler.HandleDelete)
				r.Patch("/toggle/publish/{videoId}", videoHandler.HandleTogglePublish)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", relationHandler.HandleToggle(model.KindVideoLike, "videoId"))
				r.Post("/toggle/c/{commentId}", relationHandler.HandleToggle(model.KindCommentLike, "commentId"))
				r.Post("/toggle/t/{tweetId}", relationHandler.HandleToggle(model.KindTweetLike, "tweetId"))
				r.Get("/videos", relationHandler.HandleLikedVideos)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", relationHandler.HandleToggle(model.KindSubscription, "channelId"))
				r.Get("/c/{channelId}", relationHandler.HandleSubscribers)
				r.Get("/u/{subscriberId}", relationHandler.HandleSubscribedChannels)
			})

			r.Route("/channel", func(r chi.Router) {
				r.Get("/profile/{channelName}", relationHandler.HandleChannelProfile)
				r.Post("/subscription/{channelName}", relationHandler.HandleSubscribe)
				r.Delete("/subscription/{channelName}", relationHandler.HandleUnsubscribe)
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", socialHandler.HandleCreateTweet)
				r.Get("/user/{userId}", socialHandler.HandleUserTweets)
				r.Patch("/{tweetId}", socialHandler.HandleUpdateTweet)
				r.Delete("/{tweetId}", socialHandler.HandleDeleteTweet)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", socialHandler.HandleVideoComments)
				r.Post("/{videoId}", socialHandler.HandleCreateComment)
				r.Patch("/c/{commentId}", socialHandler.HandleUpdateComment)
				r.Delete("/c/{commentId}", socialHandler.HandleDeleteComment)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Post("/", socialHandler.HandleCreatePlaylist)
				r.Get("/{playlistId}", socialHandler.HandleGetPlaylist)
				r.Patch("/{playlistId}", socialHandler.HandleUpdatePlaylist)
				r.Delete("/{playlistId}", socialHandler.HandleDeletePlaylist)
				r.Get("/user/{userId}", socialHandler.HandleUserPlaylists)
				r.Patch("/add/{videoId}/{playlistId}", socialHandler.HandleAddToPlaylist)
				r.Patch("/remove/{videoId}/{playlistId}", socialHandler.HandleRemoveFromPlaylist)
			})
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, &apperror.AppError{Err: apperror.ErrNotFound, Message: "Route not found: " + r.URL.Path})
	})

	return nil
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the server's resources.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads stream through the handler; no overall read/write timeout.
		IdleTimeout: 60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.BaseURL),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
