// Command server exposes the ticket booking assistant over HTTP.
package main

import (
	"context"
	"database/sql"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/config"
	"github.com/iliyamo/cinema-ticket-assistant/internal/database"
	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
	"github.com/iliyamo/cinema-ticket-assistant/internal/handler"
	"github.com/iliyamo/cinema-ticket-assistant/internal/logger"
	appmw "github.com/iliyamo/cinema-ticket-assistant/internal/middleware"
	"github.com/iliyamo/cinema-ticket-assistant/internal/nlu"
	"github.com/iliyamo/cinema-ticket-assistant/internal/queue"
	"github.com/iliyamo/cinema-ticket-assistant/internal/repository"
	"github.com/iliyamo/cinema-ticket-assistant/internal/router"
	"github.com/iliyamo/cinema-ticket-assistant/internal/session"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.Get()

	ctx := context.Background()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatal("migrate schema", zap.Error(err))
	}
	if err := database.Seed(ctx, db); err != nil {
		log.Fatal("seed database", zap.Error(err))
	}

	gemini, err := nlu.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("create gemini client", zap.Error(err))
	}
	defer gemini.Close()

	store := repository.NewStore(db)
	engine := dialogue.NewEngine(store, gemini, gemini, log)

	// Booking events are optional: without a broker URL the assistant
	// still books, it just emits nothing.
	if cfg.RabbitURL != "" {
		publisher, err := queue.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			log.Warn("broker unavailable, booking events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			engine.Events = publisher
			go queue.StartBookingConsumer(cfg.RabbitURL)
		}
	}

	sessions := session.NewStore()
	chat := handler.NewChatHandler(engine, sessions, log)

	// Redis may be absent; the limiter degrades to a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}
	rateLimit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, chat, rateLimit)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func openDatabase(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == database.DriverMySQL {
		return database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	return database.OpenSQLite()
}
