package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cbodonnell/tabletop/pkg/api"
	"github.com/cbodonnell/tabletop/pkg/game"
	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/network"
	"github.com/cbodonnell/tabletop/pkg/queue"
	"github.com/cbodonnell/tabletop/pkg/repositories"
	"github.com/cbodonnell/tabletop/pkg/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDone = errors.New("done")

type testEnv struct {
	client *Client
	events queue.Queue
	hub    *network.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	events := queue.NewInMemoryQueue(64)
	hub := network.NewHub(nil)
	registry := game.NewRegistry(game.NewRegistryOptions{
		Repository: repositories.NewInMemoryRepository(),
		Events:     events,
	})
	t.Cleanup(registry.Stop)

	server := httptest.NewServer(api.NewHandler(api.NewAPIServerOptions{
		Router: game.NewRouter(registry),
		Hub:    hub,
	}))
	t.Cleanup(server.Close)

	return &testEnv{
		client: NewClient(NewClientOptions{BaseURL: server.URL}),
		events: events,
		hub:    hub,
	}
}

func TestClient_Actions(t *testing.T) {
	ctx := context.Background()
	c := newTestEnv(t).client

	gameID, err := c.CreateGame(ctx)
	require.NoError(t, err)

	player, err := c.Join(ctx, gameID, "a", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", player.Name)

	_, err = c.Start(ctx, gameID)
	assert.ErrorIs(t, err, game.ErrNotEnoughPlayers)

	_, err = c.Join(ctx, gameID, "b", "Bob")
	require.NoError(t, err)
	state, err := c.Start(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, types.Phase1, state.CurrentPhase)

	_, err = c.NextPhase(ctx, gameID, "b")
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	state, err = c.NextPhase(ctx, gameID, "a")
	require.NoError(t, err)
	assert.Equal(t, types.Phase2, state.CurrentPhase)

	_, err = c.PerformAction(ctx, gameID, "a", "attack", nil)
	assert.ErrorIs(t, err, game.ErrWrongPhase)

	_, err = c.PerformAction(ctx, gameID, "a", "move", json.RawMessage(`{"to":"c4"}`))
	require.NoError(t, err)

	require.NoError(t, c.Leave(ctx, gameID, "b"))
	state, err = c.GetState(ctx, gameID)
	require.NoError(t, err)
	assert.False(t, state.FindPlayer("b").IsActive)
}

func TestClient_ErrorCodes(t *testing.T) {
	c := newTestEnv(t).client

	_, err := c.GetState(context.Background(), "not/valid")
	require.Error(t, err)

	_, err = c.Join(context.Background(), "g1", "", "")
	var gameErr *game.Error
	require.ErrorAs(t, err, &gameErr)
	assert.Equal(t, game.CodeInvalidRequest, gameErr.Code)
}

func TestClient_Watch(t *testing.T) {
	env := newTestEnv(t)
	c := env.client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(chan int, 8)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, "g1", 10*time.Millisecond, func(state *types.GameState) error {
			seen <- len(state.Players)
			if len(state.Players) == 1 {
				return errDone
			}
			return nil
		})
	}()

	assert.Equal(t, 0, <-seen)
	_, err := c.Join(ctx, "g1", "a", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, <-seen)
	assert.ErrorIs(t, <-done, errDone)
}

func TestClient_Subscribe(t *testing.T) {
	env := newTestEnv(t)
	c := env.client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	broadcaster := workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		Hub:      env.hub,
		Events:   env.events,
		Interval: 10 * time.Millisecond,
	})
	go broadcaster.Start(ctx)

	seen := make(chan int, 8)
	done := make(chan error, 1)
	go func() {
		done <- c.Subscribe(ctx, "g1", func(state *types.GameState) error {
			seen <- len(state.Players)
			if len(state.Players) == 1 {
				return errDone
			}
			return nil
		})
	}()

	assert.Equal(t, 0, <-seen, "the current state is sent first")
	require.Eventually(t, func() bool { return env.hub.Count("g1") == 1 }, time.Second, 5*time.Millisecond)

	_, err := c.Join(ctx, "g1", "a", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, <-seen)
	assert.ErrorIs(t, <-done, errDone)
}
