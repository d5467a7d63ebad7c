package loader

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/metrics"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/contracts"
)

// CachingSource tries the network first and falls back to the last good copy.
// Successful fetches are written through to the cache.
type CachingSource struct {
	source contracts.DocumentSource
	cache  DocumentCache
}

// NewCachingSource wraps source with cache
func NewCachingSource(source contracts.DocumentSource, cache DocumentCache) *CachingSource {
	return &CachingSource{
		source: source,
		cache:  cache,
	}
}

// Fetch implements contracts.DocumentSource
func (s *CachingSource) Fetch(ctx context.Context, name string) (map[string]interface{}, error) {
	doc, fetchErr := s.source.Fetch(ctx, name)
	if fetchErr == nil {
		if err := s.cache.Put(ctx, name, doc); err != nil {
			log.Warn().Err(err).Str("document", name).Msg("failed to cache document")
		}
		return doc, nil
	}

	cached, found, err := s.cache.Get(ctx, name)
	if err != nil {
		metrics.CacheFallbacks.WithLabelValues(name, "error").Inc()
		log.Warn().Err(err).Str("document", name).Msg("cache read failed")
		return nil, fetchErr
	}
	if !found {
		metrics.CacheFallbacks.WithLabelValues(name, "miss").Inc()
		return nil, fmt.Errorf("%w (no cached copy)", fetchErr)
	}

	metrics.CacheFallbacks.WithLabelValues(name, "hit").Inc()
	log.Info().Err(fetchErr).Str("document", name).Msg("serving cached document")
	return cached, nil
}
