package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hireai/scheduling-service/internal/app"
	"github.com/hireai/scheduling-service/internal/config"
	"github.com/hireai/scheduling-service/internal/directory"
	"github.com/hireai/scheduling-service/internal/notify"
	"github.com/hireai/scheduling-service/internal/repository"
	"github.com/hireai/scheduling-service/internal/schedparse"
	"github.com/hireai/scheduling-service/internal/server"
	"github.com/hireai/scheduling-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	parser, err := buildParser(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to build slot parser", zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.SMTPEnabled() {
		notifier = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		logger.Warn("SMTP_HOST not set, outbound email disabled")
		notifier = notify.NewNopNotifier(logger)
	}

	schedulingRepo := repository.NewSchedulingRepository(pool)
	resolver := directory.NewPGResolver(pool)

	schedulingService := service.NewSchedulingService(
		schedulingRepo,
		resolver,
		parser,
		notifier,
		logger,
		cfg.ConfirmBaseURL,
	).WithTokenTTL(cfg.TokenTTL)

	handler := server.NewSchedulingHandler(schedulingService, logger)
	router := server.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	logger.Info("Starting scheduling service",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("parser_backend", cfg.ParserBackend),
	)

	if err := router.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func buildParser(ctx context.Context, cfg *config.Config) (schedparse.Parser, error) {
	switch cfg.ParserBackend {
	case "llm":
		return schedparse.NewLLMParser(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "remote":
		return schedparse.NewRemoteParser(cfg.ParserURL, 15*time.Second), nil
	default:
		return schedparse.NewRuleParser(), nil
	}
}
