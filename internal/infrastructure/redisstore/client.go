// Package redisstore implementa los colaboradores efímeros sobre Redis: el
// servicio OTP (códigos de un solo uso con vencimiento) y el Draft Store
// (borradores de sesión como blobs JSON, last-write-wins).
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/invorya/cyclecount-api/pkg/config"
)

// NewClient crea el cliente Redis y verifica conectividad.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
