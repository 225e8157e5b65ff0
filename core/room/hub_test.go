package room

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func testClient(h *Hub, id, role string) *Client {
	return &Client{ID: id, Hub: h, Send: make(chan []byte, 16), Role: role}
}

func recv(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return WSMessage{}
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	h := newTestHub(t)

	player := testClient(h, "c1", RolePlayer)
	overlay := testClient(h, "c2", RoleOverlay)
	h.Register(player)
	h.Register(overlay)

	h.Broadcast("room:players", []string{"alice"})

	for _, c := range []*Client{player, overlay} {
		msg := recv(t, c)
		assert.Equal(t, "room:players", msg.Type)
		assert.JSONEq(t, `["alice"]`, string(msg.Data))
	}
}

func TestHubSendToTargetsOneClient(t *testing.T) {
	h := newTestHub(t)

	a := testClient(h, "c1", RolePlayer)
	b := testClient(h, "c2", RolePlayer)
	h.Register(a)
	h.Register(b)

	h.SendTo("c1", "answer:accepted", map[string]int{"points": 500})

	msg := recv(t, a)
	assert.Equal(t, "answer:accepted", msg.Type)
	assert.Empty(t, b.Send)

	// Unknown ids are ignored, not an error.
	h.SendTo("ghost", "answer:accepted", nil)
}

func TestHubDuplicateIDReplacesClient(t *testing.T) {
	h := newTestHub(t)

	old := testClient(h, "c1", RolePlayer)
	h.Register(old)

	replacement := testClient(h, "c1", RolePlayer)
	h.Register(replacement)
	// A further register can only be received once the previous one has been
	// applied, so this flushes the hub loop.
	h.Register(testClient(h, "flush", RoleOverlay))

	h.SendTo("c1", "room:settings", nil)

	msg := recv(t, replacement)
	assert.Equal(t, "room:settings", msg.Type)

	// The replaced client's send channel is closed.
	select {
	case _, ok := <-old.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("old client send channel not closed")
	}
}

func TestHubSlowClientDoesNotStallBroadcasts(t *testing.T) {
	h := newTestHub(t)

	slow := &Client{ID: "slow", Hub: h, Send: make(chan []byte, 1), Role: RolePlayer}
	h.Register(slow)

	// The first broadcast fills the 1-slot buffer; the second finds it full
	// and must drop the client without blocking the hub loop.
	h.Broadcast("room:players", nil)
	h.Broadcast("room:players", nil)

	fresh := testClient(h, "fresh", RolePlayer)
	registered := make(chan struct{})
	go func() {
		h.Register(fresh)
		close(registered)
	}()
	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("hub loop stalled after a slow client filled its buffer")
	}

	h.Broadcast("room:settings", nil)
	for {
		msg := recv(t, fresh)
		if msg.Type == "room:settings" {
			break
		}
	}
}

func TestHubUnregister(t *testing.T) {
	h := newTestHub(t)

	c := testClient(h, "c1", RolePlayer)
	h.Register(c)
	h.Unregister(c)

	// Give the hub loop a beat to process, then verify no delivery.
	h.Broadcast("room:players", nil)
	select {
	case _, ok := <-c.Send:
		assert.False(t, ok, "expected closed channel, got a message")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("send channel should be closed after unregister")
	}
}
