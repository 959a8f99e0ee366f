package utils

import (
	"os"
	"strconv"

	"github.com/storefront/orderflow/internal/platform/logger"
)

func GetEnv(key, fallback string, log *logger.Logger) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	if log != nil {
		log.Debug("Env var not set, using fallback", "key", key, "fallback", fallback)
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int, log *logger.Logger) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not an integer, using fallback", "key", key, "value", raw)
		}
		return fallback
	}
	return val
}
