package cache

import (
	"context"
	"fmt"
	"time"

	"ae-triage-intake/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient connects to the session store and pings it once.
func NewRedisClient(cfg config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	log.Infof("Connected to Redis session store at %s:%s (db %d)", cfg.Host, cfg.Port, cfg.DB)

	return client, nil
}
