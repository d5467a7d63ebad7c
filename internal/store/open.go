// Package store provides the key-value backends behind the intake ledger.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/contracts"
)

// Supported drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures a backend
type Config struct {
	Driver        string `yaml:"driver"`
	Dir           string `yaml:"dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}

// Open builds the configured store. The returned closer releases any
// connection the backend holds and is never nil.
func Open(ctx context.Context, cfg Config) (contracts.KVStore, io.Closer, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStore(), nopCloser{}, nil

	case DriverFile, "":
		dir := cfg.Dir
		if dir == "" {
			dir = "./data/intake"
		}
		s, err := NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", dir).Msg("using file store")
		return s, nopCloser{}, nil

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		log.Info().Str("addr", cfg.RedisAddr).Str("prefix", prefix).Msg("using redis store")
		return NewRedisStore(client, prefix), client, nil

	case DriverPostgres:
		s, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using postgres store")
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
