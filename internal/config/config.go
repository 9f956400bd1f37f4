// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/bnc4vk/pap-data-population/internal/oracle"
	"github.com/bnc4vk/pap-data-population/internal/retry"
	"github.com/bnc4vk/pap-data-population/internal/server"
	"github.com/bnc4vk/pap-data-population/internal/store"
	"github.com/bnc4vk/pap-data-population/internal/syncer"
)

type Config struct {
	Server server.Config
	Store  store.Config
	Oracle oracle.Config
	Sync   syncer.Config

	LogLevel     string
	SyncInterval time.Duration
	CatalogFile  string
}

func Load() Config {
	oracleCfg := oracle.DefaultConfig()
	oracleCfg.BaseURL = getEnv("ORACLE_URL", oracleCfg.BaseURL)
	oracleCfg.APIKey = getEnv("ORACLE_API_KEY", "")
	oracleCfg.Model = getEnv("ORACLE_MODEL", oracleCfg.Model)
	oracleCfg.Timeout = time.Duration(getEnvInt("ORACLE_TIMEOUT", 120)) * time.Second
	oracleCfg.Retry = retry.Config{
		MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 5),
		BaseDelay:   time.Duration(getEnvInt("RETRY_BASE_MS", 2000)) * time.Millisecond,
		MaxDelay:    time.Duration(getEnvInt("RETRY_CAP_MS", 30000)) * time.Millisecond,
	}

	return Config{
		Server: server.Config{
			Port:            getEnvInt("PORT", 8080),
			ReadTimeout:     getEnvInt("READ_TIMEOUT", 30),
			WriteTimeout:    getEnvInt("WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 10),
		},
		Store: store.Config{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", "./data/papsync.db"),
			DSN:    getEnv("DATABASE_URL", ""),
		},
		Oracle: oracleCfg,
		Sync: syncer.Config{
			BatchSize:  getEnvInt("BATCH_SIZE", 25),
			BatchPause: time.Duration(getEnvInt("BATCH_PAUSE_MS", 2000)) * time.Millisecond,
		},
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SyncInterval: getEnvDuration("SYNC_INTERVAL", 24*time.Hour),
		CatalogFile:  getEnv("CATALOG_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
