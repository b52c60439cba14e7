package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_PublishToRestaurant(t *testing.T) {
	hub := startHub(t)

	owner := NewClient(hub, nil, 1, 10)
	other := NewClient(hub, nil, 2, 20)
	hub.Register(owner)
	hub.Register(other)

	require.Eventually(t, func() bool {
		return hub.SessionCount(10) == 1 && hub.SessionCount(20) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.PublishToRestaurant(10, map[string]interface{}{"type": "qr_scan", "scan_count": 3}))

	select {
	case msg := <-owner.Send:
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &decoded))
		assert.Equal(t, "qr_scan", decoded["type"])
		assert.Equal(t, float64(3), decoded["scan_count"])
	case <-time.After(time.Second):
		t.Fatal("owner did not receive the event")
	}

	select {
	case <-other.Send:
		t.Fatal("other restaurant must not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, 1, 10)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.SessionCount(10) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.SessionCount(10) == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-client.Send
	assert.False(t, ok)

	// unregistering twice is a no-op
	hub.Unregister(client)
	require.NoError(t, hub.PublishToRestaurant(10, map[string]string{"type": "qr_scan"}))
}
