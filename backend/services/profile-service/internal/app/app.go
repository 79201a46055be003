package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "carpark/backend/libs/db"
	libredis "carpark/backend/libs/redis"
	"carpark/backend/services/profile-service/internal/config"
	httpserver "carpark/backend/services/profile-service/internal/http"
	"carpark/backend/services/profile-service/internal/http/handlers"
	"carpark/backend/services/profile-service/internal/http/middleware"
	"carpark/backend/services/profile-service/internal/notify"
	"carpark/backend/services/profile-service/internal/password"
	"carpark/backend/services/profile-service/internal/repository"
	"carpark/backend/services/profile-service/internal/service"
)

// App wires dependencies for the profile service.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New builds application graph.
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

	userRepo := repository.NewUserRepository(sqlDB)
	hasher := password.NewBcryptHasher(0)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	subs := notify.NewSubscriptions(redisClient, cfg.Topic)

	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, subs, logger)
	profileSvc := service.NewProfileService(userRepo, subs, logger)

	profileHandler := handlers.NewProfileHandler(profileSvc, logger)
	authMW := middleware.Auth(tokenSvc)

	routes := httpserver.Routes{
		Signup:  handlers.NewSignupHandler(authSvc),
		Login:   handlers.NewLoginHandler(authSvc),
		Profile: authMW(profileHandler),
		Health:  handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
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
