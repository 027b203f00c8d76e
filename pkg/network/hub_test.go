package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func testMessage(t *testing.T, gameID string, turn int) *messages.Message {
	t.Helper()
	state := types.NewGameState(0)
	state.CurrentTurn = turn
	msg, err := messages.NewGameStateMessage(gameID, state)
	require.NoError(t, err)
	return msg
}

func TestHub_PublishByGame(t *testing.T) {
	hub := NewHub(nil)
	s1 := hub.Subscribe("g1")
	s2 := hub.Subscribe("g1")
	other := hub.Subscribe("g2")
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Equal(t, 2, hub.Count("g1"))

	assert.Equal(t, 2, hub.Publish("g1", testMessage(t, "g1", 1)))
	assert.Len(t, s1.Messages(), 1)
	assert.Len(t, s2.Messages(), 1)
	assert.Len(t, other.Messages(), 0)

	hub.Unsubscribe(s1.ID)
	_, open := <-s1.Messages()
	assert.True(t, open, "buffered messages are still delivered")
	_, open = <-s1.Messages()
	assert.False(t, open)
	assert.Equal(t, 1, hub.Count("g1"))

	hub.Unsubscribe(s1.ID)
}

func TestHub_SlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	s := hub.Subscribe("g1")

	for i := 0; i < SubscriberBufferSize; i++ {
		require.Equal(t, 1, hub.Publish("g1", testMessage(t, "g1", i)))
	}
	assert.Equal(t, 0, hub.Publish("g1", testMessage(t, "g1", 99)))
	assert.Len(t, s.Messages(), SubscriberBufferSize)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil)
	s := hub.Subscribe("g1")
	hub.Close()

	_, open := <-s.Messages()
	assert.False(t, open)
	assert.Equal(t, 0, hub.Count("g1"))
}

func TestHub_ServeSubscription(t *testing.T) {
	hub := NewHub(nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeSubscription(w, r, hub.Subscribe("g1"), testMessage(t, "g1", 0), WSOptions{OriginPatterns: []string{"*"}})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	initial, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, messages.MessageTypeServerGameState, initial.Type)
	assert.Equal(t, "g1", initial.GameID)

	require.Eventually(t, func() bool { return hub.Count("g1") == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish("g1", testMessage(t, "g1", 3))

	update, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	state, err := update.GameState()
	require.NoError(t, err)
	assert.Equal(t, 3, state.CurrentTurn)
}

func TestHub_ServeSubscription_DeliversEarlySnapshots(t *testing.T) {
	hub := NewHub(nil)
	subscriber := hub.Subscribe("g1")
	// published after subscribing but before the connection is served
	hub.Publish("g1", testMessage(t, "g1", 2))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeSubscription(w, r, subscriber, testMessage(t, "g1", 1), WSOptions{OriginPatterns: []string{"*"}})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	for _, turn := range []int{1, 2} {
		msg, err := ReadMessageFromWS(ctx, conn)
		require.NoError(t, err)
		state, err := msg.GameState()
		require.NoError(t, err)
		assert.Equal(t, turn, state.CurrentTurn)
	}

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return hub.Count("g1") == 0 }, time.Second, 10*time.Millisecond)
}
