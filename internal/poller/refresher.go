// Package poller keeps the latest normalized standings view fresh.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/metrics"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/standings"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// DefaultInterval matches the hourly data update cadence
const DefaultInterval = time.Hour

// Loader gathers one snapshot of the raw documents
type Loader interface {
	Load(ctx context.Context) models.RawDocuments
}

// Publisher receives each refreshed view
type Publisher interface {
	PublishView(view models.NormalizedView)
}

// Refresher reloads and normalizes the documents on a ticker
type Refresher struct {
	loader     Loader
	normalizer *standings.Normalizer
	publisher  Publisher
	interval   time.Duration

	refreshMu sync.Mutex

	mu        sync.RWMutex
	latest    models.NormalizedView
	ready     bool
	refreshed time.Time
}

// NewRefresher creates a refresher. A nil publisher disables broadcasting.
func NewRefresher(loader Loader, normalizer *standings.Normalizer, publisher Publisher, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{
		loader:     loader,
		normalizer: normalizer,
		publisher:  publisher,
		interval:   interval,
	}
}

// Run refreshes once immediately, then on every tick until ctx is done
func (r *Refresher) Run(ctx context.Context) {
	log.Info().Dur("interval", r.interval).Msg("starting standings refresher")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping standings refresher")
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh performs one load-normalize-publish cycle and returns the new view.
// Concurrent calls are serialized.
func (r *Refresher) Refresh(ctx context.Context) models.NormalizedView {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	docs := r.loader.Load(ctx)
	view := r.normalizer.NormalizeAll(docs)

	for _, w := range view.Warnings {
		metrics.DataQualityWarnings.WithLabelValues(w.Field).Inc()
	}
	metrics.Refreshes.Inc()

	r.mu.Lock()
	r.latest = view
	r.ready = true
	r.refreshed = time.Now()
	r.mu.Unlock()

	log.Info().
		Bool("standing", view.Current != nil).
		Bool("probabilities", view.Probabilities != nil).
		Int("games", len(view.Games)).
		Int("teams", len(view.Standings)).
		Int("warnings", len(view.Warnings)).
		Msg("standings refreshed")

	if r.publisher != nil {
		r.publisher.PublishView(view)
	}
	return view
}

// Latest returns the most recent view; ok is false before the first refresh
func (r *Refresher) Latest() (view models.NormalizedView, refreshedAt time.Time, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.refreshed, r.ready
}
