package main

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/config"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/intake"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/loader"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/standings"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/store"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/contracts"
)

// closers releases resources in reverse order of acquisition
type closers []io.Closer

func (c closers) Close() error {
	for i := len(c) - 1; i >= 0; i-- {
		c[i].Close()
	}
	return nil
}

// buildSource assembles the document source described by cfg.Data
func buildSource(ctx context.Context, cfg config.DataConfig) (contracts.DocumentSource, io.Closer, error) {
	var src contracts.DocumentSource
	switch cfg.Source {
	case "http":
		src = loader.NewHTTPSource(cfg.BaseURL, cfg.Timeout)
	default:
		src = loader.NewFileSource(cfg.Dir)
	}

	switch cfg.Cache {
	case "none":
		return src, closers{}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("caching documents in redis")
		return loader.NewCachingSource(src, loader.NewRedisCache(client, cfg.CacheTTL)), closers{client}, nil

	default:
		return loader.NewCachingSource(src, loader.NewMemoryCache()), closers{}, nil
	}
}

// openLedger opens the configured store and the ledger on top of it
func openLedger(ctx context.Context, cfg *config.Config, opts ...intake.Option) (*intake.Ledger, io.Closer, error) {
	kv, closer, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	opts = append([]intake.Option{intake.WithNamespace(cfg.Intake.Namespace)}, opts...)
	ledger, err := intake.NewLedger(ctx, kv, opts...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return ledger, closer, nil
}

func newNormalizer(cfg config.TeamConfig) *standings.Normalizer {
	return standings.NewNormalizer(&standings.Config{
		TrackedTeamCode: cfg.Code,
		TrackedTeamName: cfg.Match,
		PlayoffCutoff:   cfg.PlayoffCutoff,
	})
}
