// Package store picks the RoomStore backend named in config.
package store

import (
	"context"
	"fmt"

	"github.com/dkeye/coderoom/internal/adapters/store/memory"
	"github.com/dkeye/coderoom/internal/adapters/store/mongostore"
	"github.com/dkeye/coderoom/internal/adapters/store/redisstore"
	"github.com/dkeye/coderoom/internal/config"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Runner is implemented by stores that need a background loop.
type Runner interface {
	Run(ctx context.Context) error
}

// Closer is implemented by stores holding a network client.
type Closer interface {
	Close() error
}

func Open(ctx context.Context, cfg config.StoreConfig) (core.RoomStore, error) {
	logger := log.With().Str("module", "store").Str("driver", cfg.Driver).Logger()
	switch cfg.Driver {
	case "", config.DriverMemory:
		logger.Info().Msg("using in-memory room store")
		return memory.New(cfg.RoomTTL, cfg.JanitorInterval), nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s := redisstore.New(client, cfg.RedisPrefix, cfg.RoomTTL)
		if err := s.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		return s, nil
	case config.DriverMongo:
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.RoomTTL)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Str("collection", cfg.MongoCollection).Msg("connected to mongo")
		return s, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
