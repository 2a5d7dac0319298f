package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/config"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/database"
	"github.com/yukikurage/studio-manager-api/internal/handlers"
	"github.com/yukikurage/studio-manager-api/internal/logging"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.Init(cfg.Environment, cfg.LogLevel)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Error("failed to create session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}

	invites, err := services.NewInviteIssuer(cfg.InviteSecret, cfg.InviteTTL)
	if err != nil {
		logger.Error("failed to create invite issuer", "error", err)
		os.Exit(1)
	}

	// Initialize AI service
	var generator services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(services.AIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.AITimeout,
		})
	} else {
		logger.Info("OPENAI_API_KEY not set, task suggestions disabled")
	}

	queryCache := cache.New(cfg.CacheTTL)

	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	authService := services.NewAuthService(accountRepo, profileRepo, invites)
	projectService := services.NewProjectService(projectRepo, clientRepo, profileRepo, queryCache)
	svc := handlers.Services{
		Auth:      authService,
		Users:     services.NewUserService(accountRepo, profileRepo, invites, queryCache),
		Clients:   services.NewClientService(clientRepo, queryCache),
		Projects:  projectService,
		Tasks:     services.NewTaskService(taskRepo, profileRepo, projectService, generator, queryCache),
		Time:      services.NewTimeService(entryRepo, taskRepo, projectService, queryCache),
		Dashboard: services.NewDashboardService(projectRepo, taskRepo, entryRepo, queryCache),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to ensure admin account", "email", cfg.AdminEmail, "error", err)
			os.Exit(1)
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(svc, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newSessionStore builds the redis or cookie store selected by config.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		s, err := redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			"",              // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = s
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
