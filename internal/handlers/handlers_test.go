package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/hub"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/intake"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/store"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// mockStandings implements StandingsService for testing
type mockStandings struct {
	mu        sync.Mutex
	view      models.NormalizedView
	ready     bool
	refreshes int
}

func (m *mockStandings) Latest() (models.NormalizedView, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view, time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC), m.ready
}

func (m *mockStandings) Refresh(ctx context.Context) models.NormalizedView {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	m.ready = true
	return m.view
}

type testEnv struct {
	router    http.Handler
	standings *mockStandings
	ledger    *intake.Ledger
	hub       *hub.Hub
}

func newTestEnv(t *testing.T, burst int) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub()
	go h.Run(ctx)

	clock := func() time.Time { return time.Date(2026, time.March, 7, 8, 30, 0, 0, time.Local) }
	ledger, err := intake.NewLedger(ctx, store.NewMemoryStore(), intake.WithClock(clock), intake.WithNotifier(h.PublishLedger))
	require.NoError(t, err)

	position := "3"
	standings := &mockStandings{view: models.NormalizedView{
		Current: &models.CurrentStanding{Position: position, Wins: 15, Losses: 3, WinPct: 83.3},
	}}

	handler := NewHandler(ctx, standings, ledger, h)
	router := NewRouter(handler, RouterOptions{RateLimitRPS: 1, RateLimitBurst: burst})

	return &testEnv{router: router, standings: standings, ledger: ledger, hub: h}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, 10)

	w := env.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["standings_ready"])
}

func TestGetStandings(t *testing.T) {
	env := newTestEnv(t, 10)

	w := env.do(t, "GET", "/api/v1/standings", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var errResp models.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, http.StatusServiceUnavailable, errResp.Code)

	w = env.do(t, "POST", "/api/v1/standings/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.standings.refreshes)

	w = env.do(t, "GET", "/api/v1/standings", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		View        models.NormalizedView `json:"view"`
		RefreshedAt time.Time             `json:"refreshed_at"`
	}
	decode(t, w, &resp)
	require.NotNil(t, resp.View.Current)
	assert.Equal(t, "3", resp.View.Current.Position)
	assert.Equal(t, 83.3, resp.View.Current.WinPct)
}

func TestAddAndRemoveEntry(t *testing.T) {
	env := newTestEnv(t, 10)

	w := env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":500}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var added models.AddResult
	decode(t, w, &added)
	assert.Equal(t, 500, added.TotalMl)
	assert.False(t, added.GoalJustReached)

	w = env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":1600}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var second models.AddResult
	decode(t, w, &second)
	assert.Equal(t, 2100, second.TotalMl)
	assert.True(t, second.GoalJustReached)

	w = env.do(t, "GET", "/api/v1/intake", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap models.LedgerSnapshot
	decode(t, w, &snap)
	assert.Equal(t, "waterTracker_2026-3-7", snap.DateKey)
	assert.Equal(t, 100, snap.Percentage)
	assert.Len(t, snap.Entries, 2)

	w = env.do(t, "DELETE", "/api/v1/intake/entries/"+strconv.FormatInt(added.Entry.ID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	var removed map[string]int
	decode(t, w, &removed)
	assert.Equal(t, 1600, removed["total_ml"])
}

func TestAddEntry_InvalidAmount(t *testing.T) {
	env := newTestEnv(t, 20)

	for _, body := range []string{`{"amount_ml":0}`, `{"amount_ml":-5}`, `{"amount_ml":"lots"}`, `{}`, `not json`} {
		w := env.do(t, "POST", "/api/v1/intake/entries", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var errResp models.ErrorResponse
		decode(t, w, &errResp)
		assert.Equal(t, "please enter a valid amount", errResp.Message)
	}

	snap, err := env.ledger.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalMl)
}

func TestRemoveEntry_UnknownAndInvalidID(t *testing.T) {
	env := newTestEnv(t, 10)

	w := env.do(t, "DELETE", "/api/v1/intake/entries/12345", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "DELETE", "/api/v1/intake/entries/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearToday(t *testing.T) {
	env := newTestEnv(t, 10)

	env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":300}`)

	w := env.do(t, "DELETE", "/api/v1/intake/entries", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.LedgerSnapshot
	decode(t, w, &snap)
	assert.Equal(t, 0, snap.TotalMl)
	assert.Empty(t, snap.Entries)
}

func TestSetGoal(t *testing.T) {
	env := newTestEnv(t, 10)

	w := env.do(t, "PUT", "/api/v1/intake/goal", `{"goal_ml":6000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp models.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, "goal must be between 500ml and 5000ml", errResp.Message)

	w = env.do(t, "PUT", "/api/v1/intake/goal", `{"goal_ml":2500}`)
	require.Equal(t, http.StatusOK, w.Code)
	var snap models.LedgerSnapshot
	decode(t, w, &snap)
	assert.Equal(t, 2500, snap.GoalMl)

	w = env.do(t, "PUT", "/api/v1/intake/goal", `{"goal_ml":"high"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDay(t *testing.T) {
	env := newTestEnv(t, 10)
	env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":750}`)

	w := env.do(t, "GET", "/api/v1/intake/days/2026-3-7", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap models.LedgerSnapshot
	decode(t, w, &snap)
	assert.Equal(t, 750, snap.TotalMl)

	w = env.do(t, "GET", "/api/v1/intake/days/2026-3-6", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Equal(t, 0, snap.TotalMl)

	w = env.do(t, "GET", "/api/v1/intake/days/march", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, 2)

	assert.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":100}`).Code)
	assert.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":100}`).Code)

	w := env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":100}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// Reads are not limited
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/api/v1/intake", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, 10)
	env.do(t, "POST", "/api/v1/intake/entries", `{"amount_ml":100}`)

	w := env.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_ledger_operations_total")
}

func TestWebSocket_ReceivesLedgerUpdates(t *testing.T) {
	env := newTestEnv(t, 10)
	server := httptest.NewServer(env.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageTypeSubscribe, Topics: []string{models.TopicIntake}}))
	require.Eventually(t, func() bool { return env.hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Give the read pump a moment to apply the subscription
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Post(server.URL+"/api/v1/intake/entries", "application/json", strings.NewReader(`{"amount_ml":400}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string                `json:"type"`
		Topic   string                `json:"topic"`
		Payload models.LedgerSnapshot `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.MessageTypeLedgerUpdate, msg.Type)
	assert.Equal(t, models.TopicIntake, msg.Topic)
	assert.Equal(t, 400, msg.Payload.TotalMl)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	base := time.Date(2026, time.March, 7, 8, 0, 0, 0, time.UTC)
	now := base
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }
	l.lastSweep = base

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.limiter(ip)
	}
	assert.Equal(t, 3, l.Len())

	now = base.Add(5 * time.Minute)
	l.limiter("10.0.0.3")

	now = base.Add(limiterIdleTTL + time.Minute)
	l.limiter("10.0.0.4")

	// Only the client seen five minutes in and the new one survive the sweep
	assert.Equal(t, 2, l.Len())
}
