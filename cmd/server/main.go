package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"Murmur/internal/api/routes"
	"Murmur/internal/auth"
	"Murmur/internal/config"
	"Murmur/internal/core/cascade"
	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/stories"
	"Murmur/internal/core/users"
	"Murmur/internal/db/memory"
	"Murmur/internal/db/migrations"
	postgresRepo "Murmur/internal/db/postgres"
)

// repositories is the store selected by STORE_DRIVER
type repositories struct {
	users    users.Repository
	posts    posts.Repository
	comments comments.Repository
	stories  stories.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	repos, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	// Initialize services
	profiles := users.NewProfileCache(0, 0)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	userService := users.NewUserService(repos.users, hasher, profiles, logger)
	relationshipService := users.NewRelationshipService(repos.users, profiles, logger)
	postService := posts.NewPostService(repos.posts, repos.users, repos.comments, logger)
	commentService := comments.NewCommentService(repos.comments, repos.posts, repos.users, logger)
	storyService := stories.NewStoryService(repos.stories, repos.users, logger)
	orchestrator := cascade.NewOrchestrator(cascade.Deps{
		Users:    repos.users,
		Posts:    repos.posts,
		Comments: repos.comments,
		Stories:  repos.stories,
		Profiles: profiles,
		Logger:   logger,
	})

	router := routes.NewRouter(routes.Deps{
		Users:              userService,
		Relationships:      relationshipService,
		Posts:              postService,
		Comments:           commentService,
		Stories:            storyService,
		Deleter:            orchestrator,
		Tokens:             tokens,
		Verifier:           tokens,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		SecureCookies:      cfg.IsProduction(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Murmur API starting",
			slog.String("port", cfg.HTTPPort),
			slog.String("env", cfg.Env),
			slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStore connects the configured store and returns a cleanup func
func openStore(cfg *config.Config, logger *slog.Logger) (*repositories, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:    store.Users(),
			posts:    store.Posts(),
			comments: store.Comments(),
			stories:  store.Stories(),
		}, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("connected to database")

	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("migrations completed successfully")

	return &repositories{
			users:    postgresRepo.NewUserRepository(db),
			posts:    postgresRepo.NewPostRepository(db),
			comments: postgresRepo.NewCommentRepository(db),
			stories:  postgresRepo.NewStoryRepository(db),
		}, func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", slog.String("error", err.Error()))
			}
		}, nil
}
