package main

import (
	"context"
	"log"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"leadboard/internal/api"
	"leadboard/internal/config"
	"leadboard/internal/gateway"
	"leadboard/internal/repository"
	"leadboard/internal/service"
	"leadboard/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting application", zap.String("env", cfg.Server.Env))

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	// Single long-lived store client, injected everywhere. Every remote call
	// gets bounded retry with backoff.
	store := gateway.WithRetry(
		gateway.NewPgxGateway(pool),
		cfg.Gateway.RetryMaxAttempts,
		cfg.Gateway.RetryInterval,
	)

	teamRepo := repository.NewTeamRepository(store)
	memberRepo := repository.NewMemberRepository(store)
	leadRepo := repository.NewLeadRepository(store)

	directory := service.NewDirectoryService().WithTeamRepo(teamRepo).WithMemberRepo(memberRepo)
	ledger := service.NewLedgerService().WithMemberRepo(memberRepo).WithLeadRepo(leadRepo)
	dashboard := service.NewDashboardService().WithLeadRepo(leadRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(logger).
		WithDirectoryService(directory).
		WithLedgerService(ledger).
		WithDashboardService(dashboard).
		WithHealthChecker(healthChecker).
		WithRecentLeadsLimit(cfg.Report.RecentLeadsLimit)

	handler.RegisterRoutes(e)

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err = e.Start(":" + cfg.Server.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
