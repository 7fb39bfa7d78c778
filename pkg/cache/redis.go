package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

const keyPrefix = "timetable"

// NewRedis returns a configured Redis client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Key builds a namespaced cache key such as "timetable:<id>:display:<section>".
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// Pattern returns a SCAN pattern matching every key under the given parts.
func Pattern(parts ...string) string {
	return Key(parts...) + ":*"
}
