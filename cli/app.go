package cli

import (
	"context"
	"fmt"

	"makazi/config"
	"makazi/constants"
	"makazi/middleware"
	"makazi/routes"
	"makazi/services"
	"makazi/services/logger"
	"makazi/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// App is the fully wired server.
type App struct {
	Config *config.Config
	Logger logger.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
	Melody *melody.Melody
	Cron   *cron.Cron
	Tours  *services.TourRequestService
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewDefaultLogger(logger.ParseLevel(cfg.LogLevel))
}

func openDB(cfg *config.Config, log logger.Logger) (*gorm.DB, error) {
	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Build connects every backing service and registers the routes.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := newLogger(cfg)

	db, err := openDB(cfg, log)
	if err != nil {
		return nil, err
	}

	var cache services.Cache = services.NoopCache{}
	rdb, err := config.ConnectRedis(ctx, cfg)
	switch {
	case err != nil:
		log.Warn("redis unavailable, running without cache: %v", err)
	case rdb == nil:
		log.Warn("REDIS_ADDR not set, running without cache")
	default:
		cache = services.NewRedisCache(rdb)
		log.Info("Connected to redis at %s", cfg.RedisAddr)
	}

	cld, err := config.ConnectCloudinary(cfg)
	if err != nil {
		return nil, err
	}
	var images services.ImageStore
	if cld != nil {
		images = services.NewCloudinaryStore(cld, constants.PropertyImageFolder)
	} else {
		log.Warn("cloudinary credentials not set, image uploads are disabled")
	}

	router, m, c, err := config.InitApp(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	notifier := notification.NewService(db, notification.NewMelodyService(m), log.WithField("component", "notification"))
	tokens := services.NewTokenService(cfg.AccessTokenSecret, cfg.AccessTokenTTL, cache, log)

	var google services.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = services.NewIDTokenVerifier(cfg.GoogleClientID)
	}

	auth := services.NewAuthService(services.AuthServiceOptions{
		DB:     db,
		Logger: log.WithField("component", "auth"),
		Tokens: tokens,
		Google: google,
	})
	properties := services.NewPropertyService(services.PropertyServiceOptions{
		DB:       db,
		Logger:   log.WithField("component", "property"),
		Cache:    cache,
		Images:   images,
		Notifier: notifier,
	})
	tours := services.NewTourRequestService(services.TourRequestServiceOptions{
		DB:       db,
		Logger:   log.WithField("component", "tour_request"),
		Notifier: notifier,
		Location: cfg.Location(),
	})
	messages := services.NewMessageService(services.MessageServiceOptions{
		DB:       db,
		Logger:   log.WithField("component", "message"),
		Notifier: notifier,
	})

	routes.SetupRoutes(router, routes.Dependencies{
		Logger:        log,
		Tokens:        tokens,
		Auth:          auth,
		Properties:    properties,
		Tours:         tours,
		Messages:      messages,
		Notifications: notifier,
		Melody:        m,
		AuthLimiter:   middleware.NewStrictRateLimiter(),
	})

	return &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  rdb,
		Router: router,
		Melody: m,
		Cron:   c,
		Tours:  tours,
	}, nil
}

// Close releases the connections held by the app.
func (a *App) Close() {
	if a.Melody != nil {
		_ = a.Melody.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
