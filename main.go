package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/auth"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/config"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/database"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/handlers"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/llm"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/middleware"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/repositories"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // flush on exit is best-effort

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("generation_model", cfg.Generation.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	// Redis (optional fingerprint index)
	rdb, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if rdb == nil {
		logger.Info("Redis not configured, fingerprint index disabled")
	}

	// LLM client
	llmClient, err := llm.NewFromConfig(&cfg.Generation, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Auth
	validator, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(validator, logger.Named("auth"))
	sessionStore := auth.NewSessionStore(cfg.SessionCookieSecret)

	// Repositories
	stateRepo := repositories.NewOnboardingStateRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	generationRepo := repositories.NewGenerationRepository(db)
	businessRepo := repositories.NewBusinessRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)

	// Services
	onboardingService := services.NewOnboardingService(stateRepo, profileRepo, businessRepo, generationRepo, catalogRepo, logger)
	generationService := services.NewGenerationService(generationRepo, businessRepo, llmClient, rdb, cfg.Generation.Temperature, logger)
	migrationService := services.NewMigrationService(stateRepo, profileRepo, generationRepo, businessRepo, catalogRepo, logger)

	// Handlers
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewOnboardingHandler(onboardingService, sessionStore, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewGenerationHandler(generationService, sessionStore, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewMigrationHandler(migrationService, logger).RegisterRoutes(mux, authMiddleware)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger.Named("http"))(mux),
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting hub-engine",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a production logger outside local development.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
