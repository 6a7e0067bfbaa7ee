package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ritik/event-backend/internal/booking"
	"github.com/ritik/event-backend/internal/config"
	"github.com/ritik/event-backend/internal/database"
	"github.com/ritik/event-backend/internal/handler"
	"github.com/ritik/event-backend/internal/middleware"
	"github.com/ritik/event-backend/internal/queue"
	"github.com/ritik/event-backend/internal/repository"
	"github.com/ritik/event-backend/internal/router"
)

func main() {
	// Missing .env is fine in containers where the environment is set
	// by the orchestrator.
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Env == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connect failed")
	}
	defer db.Close()

	// Redis is optional; rate limiting and caching degrade to no-ops
	// without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable, rate limiting and caching disabled")
	}

	go queue.StartAuditConsumer()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	qrCodes := repository.NewQrCodeRepo(db)
	store := repository.NewBookingStore(db)

	tokenSvc := booking.NewTokenService(store)
	reservations := booking.NewReservationManager(store, store, tokenSvc)
	validations := booking.NewValidationEngine(store, tokenSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, tokens),
		Health:      handler.NewHealthHandler(db),
		Organizer:   handler.NewOrganizerEventHandler(events),
		Public:      handler.NewPublicEventHandler(events),
		Tickets:     handler.NewTicketHandler(reservations, tokenSvc, events, tickets, qrCodes),
		Validations: handler.NewValidationHandler(validations),
	}, cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
