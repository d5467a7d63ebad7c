// Package loader gathers the four dashboard documents from a DocumentSource.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/metrics"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/contracts"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// Loader fetches every dashboard document concurrently
type Loader struct {
	source contracts.DocumentSource
}

// New creates a loader over source
func New(source contracts.DocumentSource) *Loader {
	return &Loader{source: source}
}

// Load fetches all documents and waits for every fetch to settle. A failed
// fetch leaves its document nil; the rest of the snapshot is still returned.
func (l *Loader) Load(ctx context.Context) models.RawDocuments {
	start := time.Now()

	docs := make([]map[string]interface{}, len(models.DocumentNames))
	var wg sync.WaitGroup

	for i, name := range models.DocumentNames {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			doc, err := l.source.Fetch(ctx, name)
			metrics.DocumentFetches.WithLabelValues(name, metrics.Result(err)).Inc()
			if err != nil {
				log.Warn().Err(err).Str("document", name).Msg("document unavailable")
				return
			}
			docs[i] = doc
		}(i, name)
	}

	wg.Wait()

	var snapshot models.RawDocuments
	missing := 0
	for i, name := range models.DocumentNames {
		if docs[i] == nil {
			missing++
		}
		snapshot = snapshot.With(name, docs[i])
	}

	elapsed := time.Since(start)
	metrics.RefreshDuration.Observe(elapsed.Seconds())
	log.Debug().Dur("elapsed", elapsed).Int("missing", missing).Msg("documents loaded")

	return snapshot
}
