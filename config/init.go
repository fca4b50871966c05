package config

import (
	"makazi/middleware"
	"makazi/services/logger"
	"makazi/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/robfig/cron/v3"
)

// InitApp builds the gin engine with the shared middleware, the websocket hub and the scheduler.
func InitApp(cfg *Config, log logger.Logger) (*gin.Engine, *melody.Melody, *cron.Cron, error) {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.RegisterBindings(); err != nil {
		return nil, nil, nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())

	configCors := cors.DefaultConfig()
	configCors.AddAllowHeaders("Authorization", middleware.SessionHeader)
	configCors.AddExposeHeaders(middleware.SessionHeader)
	configCors.AllowCredentials = true
	if len(cfg.CORSOrigins) > 0 {
		configCors.AllowOrigins = cfg.CORSOrigins
	} else {
		configCors.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}
	router.Use(cors.New(configCors))

	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, nil, nil, err
	}

	router.Use(middleware.SessionMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	m := melody.New()
	m.HandleError(func(s *melody.Session, err error) {
		log.Debug("websocket session error: %v", err)
	})

	c := cron.New(cron.WithLocation(cfg.Location()))

	return router, m, c, nil
}
