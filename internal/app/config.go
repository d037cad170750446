package app

import (
	"time"

	"github.com/yungbote/wrongbook-backend/internal/platform/envutil"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RebuildTimeout         time.Duration
	RebuildMaxAssociations int
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	logMode := envutil.GetEnv("LOG_MODE", "development", log)
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 604800, log)
	rebuildTimeout := envutil.GetEnvAsDuration("TAXONOMY_REBUILD_TIMEOUT", 5*time.Minute, log)
	rebuildMaxAssociations := envutil.GetEnvAsInt("TAXONOMY_REBUILD_MAX_ASSOCIATIONS", 500000, log)
	return Config{
		Port:                   port,
		LogMode:                logMode,
		JWTSecretKey:           jwtSecretKey,
		AccessTokenTTL:         time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL:        time.Duration(refreshTokenTTLSeconds) * time.Second,
		RebuildTimeout:         rebuildTimeout,
		RebuildMaxAssociations: rebuildMaxAssociations,
	}
}
