package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"carpark/backend/libs/changefeed"
	libdb "carpark/backend/libs/db"
	libredis "carpark/backend/libs/redis"
	"carpark/backend/services/sessions-service/internal/config"
	httpserver "carpark/backend/services/sessions-service/internal/http"
	"carpark/backend/services/sessions-service/internal/http/handlers"
	"carpark/backend/services/sessions-service/internal/recognizer"
	"carpark/backend/services/sessions-service/internal/repository"
	"carpark/backend/services/sessions-service/internal/service"
	"carpark/backend/services/sessions-service/internal/ws"
)

// App wires sessions-service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	feed := changefeed.NewPublisher(redisClient, cfg.Feed.Stream, cfg.Feed.MaxLen)
	sessionRepo := repository.NewSessionRepository(sqlDB, feed, logger)

	hub := ws.NewHub(0, logger)
	sessionsService := service.NewSessionsService(sessionRepo, cfg.Billing.HourlyRate, hub, logger)

	detector := recognizer.NewClient(cfg.Recognizer.BaseURL, &http.Client{Timeout: cfg.Recognizer.Timeout})
	detectionsHandler := handlers.NewDetectionsHandler(detector, sessionsService, logger)

	routes := httpserver.Routes{
		Detections:   detectionsHandler.ServeHTTP,
		PlateLookup:  handlers.NewPlateLookupHandler(sessionsService),
		OpenSessions: handlers.NewOpenSessionsHandler(sessionsService),
		Monitor:      ws.NewMonitorHandler(hub, logger),
		Health:       handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and monitor hub.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
