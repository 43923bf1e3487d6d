package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/config"
	"github.com/propfolio/market-engine/pkg/database"
	"github.com/propfolio/market-engine/pkg/handlers"
	"github.com/propfolio/market-engine/pkg/llm"
	"github.com/propfolio/market-engine/pkg/logging"
	"github.com/propfolio/market-engine/pkg/repositories"
	"github.com/propfolio/market-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("redis", cfg.Redis.Host),
		zap.String("ai_model", cfg.AI.Model))

	ctx := context.Background()

	// Migrations run over database/sql; the engine itself uses pgx pools.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Warn("Redis not configured; analysis caching disabled")
	}

	reasoningClient, err := llm.NewClient(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create reasoning client", zap.Error(err))
	}

	competitorRepo := repositories.NewCompetitorRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	snapshotRepo := repositories.NewSnapshotRepository(db)
	analysisCache := repositories.NewAnalysisCache(redisClient)

	overviewSvc := services.NewMarketOverviewService(competitorRepo, cfg.Market.AmenityVocabulary, logger)
	snapshotSvc := services.NewSnapshotService(overviewSvc, snapshotRepo, logger)
	demandSupplySvc := services.NewDemandSupplyService(competitorRepo, logger)
	analysisSvc := services.NewAnalysisService(
		projectRepo,
		competitorRepo,
		overviewSvc,
		analysisCache,
		reasoningClient,
		services.AnalysisConfigFromMarket(&cfg.Market),
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewMarketHandler(overviewSvc, snapshotSvc, demandSupplySvc, analysisSvc, logger).RegisterRoutes(mux)
	handlers.NewCompetitorHandler(competitorRepo, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting market-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
