package app

import (
	"strings"
	"time"

	"github.com/storefront/orderflow/internal/platform/logger"
	"github.com/storefront/orderflow/internal/utils"
)

type Config struct {
	HTTPAddr     string
	AllowOrigins []string

	JWTSecretKey string
	TokenTTL     time.Duration

	RedisAddr string // empty disables the catalog cache

	PageSize         int
	PollInterval     time.Duration
	HeartbeatTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTLSeconds := utils.GetEnvAsInt("TOKEN_TTL", 3600, log)
	pollSeconds := utils.GetEnvAsInt("STATUS_POLL_INTERVAL", 10, log)
	heartbeatSeconds := utils.GetEnvAsInt("STATUS_HEARTBEAT_TIMEOUT", 2, log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)

	return Config{
		HTTPAddr:         utils.GetEnv("HTTP_ADDR", ":8080", log),
		AllowOrigins:     strings.Split(origins, ","),
		JWTSecretKey:     jwtSecretKey,
		TokenTTL:         time.Duration(tokenTTLSeconds) * time.Second,
		RedisAddr:        utils.GetEnv("REDIS_ADDR", "", log),
		PageSize:         utils.GetEnvAsInt("ORDERS_PAGE_SIZE", 10, log),
		PollInterval:     time.Duration(pollSeconds) * time.Second,
		HeartbeatTimeout: time.Duration(heartbeatSeconds) * time.Second,
	}
}
