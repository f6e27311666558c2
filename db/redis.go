// file: db/redis.go

package db

import (
	"context"
	"fmt"
	"modesta-resort-api/config"
	"modesta-resort-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes and returns a new Redis client.
// It uses the configuration from the loaded AppConfig.
func ConnectRedis() (*redis.Client, error) {
	cfg := config.AppConfig.Redis

	redisAddr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:       redisAddr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping Redis")
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("address", redisAddr).Info("Redis connection established successfully")
	return rdb, nil
}
