package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/client"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func receive(t *testing.T, c *client.Client) models.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return models.ServerMessage{}
	}
}

func TestHub_RegisterAndCount(t *testing.T) {
	h, _ := startHub(t)

	c := client.NewClient("c1", nil, h)
	h.Register(c)

	assert.Eventually(t, func() bool { return h.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unregister(c)
	assert.Eventually(t, func() bool { return h.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok, "unregister closes the send channel")
}

func TestHub_PublishRespectsTopics(t *testing.T) {
	h, _ := startHub(t)

	all := client.NewClient("all", nil, h)
	intakeOnly := client.NewClient("intake", nil, h)
	intakeOnly.Subscribe([]string{models.TopicIntake})

	h.Register(all)
	h.Register(intakeOnly)

	h.PublishView(models.NormalizedView{})
	h.PublishLedger(models.LedgerSnapshot{DateKey: "waterTracker_2026-3-7", TotalMl: 500})

	first := receive(t, all)
	assert.Equal(t, models.MessageTypeViewUpdate, first.Type)
	assert.Equal(t, models.TopicStandings, first.Topic)

	second := receive(t, all)
	assert.Equal(t, models.MessageTypeLedgerUpdate, second.Type)

	got := receive(t, intakeOnly)
	assert.Equal(t, models.MessageTypeLedgerUpdate, got.Type)
	assert.Equal(t, 500, got.Payload.(models.LedgerSnapshot).TotalMl)
	assert.Empty(t, intakeOnly.Send)
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	h, _ := startHub(t)

	slow := client.NewClient("slow", nil, h)
	h.Register(slow)

	// Nobody drains slow.Send, so its buffer eventually overflows
	for i := 0; i < 200; i++ {
		h.PublishLedger(models.LedgerSnapshot{TotalMl: i})
	}

	assert.Eventually(t, func() bool { return h.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h, cancel := startHub(t)

	c := client.NewClient("c1", nil, h)
	h.Register(c)
	require.Eventually(t, func() bool { return h.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on shutdown")
	}

	// Calls after shutdown do not block
	h.Unregister(c)
	h.Register(client.NewClient("late", nil, h))
}

func TestHub_GetMetrics(t *testing.T) {
	h, _ := startHub(t)
	h.Register(client.NewClient("c1", nil, h))

	require.Eventually(t, func() bool { return h.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	m := h.GetMetrics()
	assert.Equal(t, 1, m["active_clients"])
	assert.Equal(t, int64(1), m["total_connections"])
	assert.Equal(t, 256, m["broadcast_capacity"])
}
