package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/standings"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

type stubLoader struct {
	mu    sync.Mutex
	docs  models.RawDocuments
	loads int
}

func (s *stubLoader) Load(ctx context.Context) models.RawDocuments {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.docs
}

func (s *stubLoader) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

type recordingPublisher struct {
	mu    sync.Mutex
	views []models.NormalizedView
}

func (p *recordingPublisher) PublishView(view models.NormalizedView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

func TestRefresher_RefreshStoresAndPublishes(t *testing.T) {
	loader := &stubLoader{docs: models.RawDocuments{
		Standings: map[string]interface{}{
			"maccabi_standing": map[string]interface{}{"W": 15.0, "L": 3.0, "position": 2.0},
		},
		Probabilities: map[string]interface{}{
			"probabilities": map[string]interface{}{"playoff": 120.0, "final_four": 40.0},
		},
	}}
	pub := &recordingPublisher{}
	r := NewRefresher(loader, standings.NewNormalizer(nil), pub, time.Hour)

	_, _, ok := r.Latest()
	assert.False(t, ok)

	view := r.Refresh(context.Background())
	require.NotNil(t, view.Current)
	assert.Equal(t, "2", view.Current.Position)
	assert.Len(t, view.Warnings, 1)

	latest, at, ok := r.Latest()
	assert.True(t, ok)
	assert.False(t, at.IsZero())
	assert.Equal(t, view, latest)
	assert.Equal(t, 1, pub.count())
}

func TestRefresher_EmptyDocumentsStillRefresh(t *testing.T) {
	r := NewRefresher(&stubLoader{}, standings.NewNormalizer(nil), nil, 0)

	view := r.Refresh(context.Background())
	assert.Nil(t, view.Current)
	assert.Nil(t, view.Probabilities)
	assert.Equal(t, DefaultInterval, r.interval)
}

func TestRefresher_RunRefreshesImmediatelyAndOnTick(t *testing.T) {
	loader := &stubLoader{}
	pub := &recordingPublisher{}
	r := NewRefresher(loader, standings.NewNormalizer(nil), pub, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return loader.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
	assert.GreaterOrEqual(t, pub.count(), 3)
}
