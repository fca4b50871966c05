package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"makazi/services/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func getDBConfigByEnv(cfg *Config) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}

	prefix := strings.ToUpper(cfg.Env)
	switch cfg.Env {
	case "dev", "qc", "prod", "test":
	default:
		return "", fmt.Errorf("unknown environment: %s", cfg.Env)
	}

	user := os.Getenv(prefix + "_DB_USER")
	password := os.Getenv(prefix + "_DB_PASSWORD")
	host := os.Getenv(prefix + "_DB_HOST")
	port := GetEnv(prefix+"_DB_PORT", "5432")
	name := os.Getenv(prefix + "_DB_NAME")
	if host == "" || user == "" || name == "" {
		return "", fmt.Errorf("%s_DB_HOST, %s_DB_USER and %s_DB_NAME are required", prefix, prefix, prefix)
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, name, port, cfg.DBSSLMode, cfg.Timezone), nil
}

// gormWriter sends gorm's own logging through the application logger.
type gormWriter struct {
	log logger.Logger
}

func (w gormWriter) Printf(format string, v ...interface{}) {
	w.log.Warn(format, v...)
}

func gormConfig(log logger.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{log: log}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// ConnectDB opens PostgreSQL, or a SQLite file when DB_DRIVER=sqlite.
func ConnectDB(cfg *Config, log logger.Logger) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		path := GetEnv("SQLITE_PATH", "makazi.db")
		db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		log.Info("Connected to sqlite database %s", path)
		return db, nil
	}

	dsn, err := getDBConfigByEnv(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("fail to connect to db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("Successfully connected to db (env=%s)", cfg.Env)
	return db, nil
}
