package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"carpark/backend/libs/changefeed"
	libdb "carpark/backend/libs/db"
	libredis "carpark/backend/libs/redis"
	"carpark/backend/services/notifications-service/internal/config"
	"carpark/backend/services/notifications-service/internal/dispatcher"
	"carpark/backend/services/notifications-service/internal/owners"
	"carpark/backend/services/notifications-service/internal/transport"
)

// App wires notifications-service dependencies.
type App struct {
	consumer    *changefeed.Consumer
	dispatcher  *dispatcher.Dispatcher
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

	directory := owners.NewDirectory(sqlDB)
	publisher := transport.NewPublisher(redisClient, cfg.Topic)
	disp := dispatcher.NewDispatcher(directory, publisher, logger)

	consumer := changefeed.NewConsumer(
		redisClient,
		cfg.Feed.Stream,
		cfg.Feed.Group,
		cfg.Feed.Consumer,
		cfg.Feed.BatchSize,
		cfg.Feed.Block,
		logger,
	)

	return &App{
		consumer:    consumer,
		dispatcher:  disp,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run consumes the session change feed until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting change feed consumer")
	return a.consumer.Run(ctx, a.dispatcher.HandleBatch)
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
