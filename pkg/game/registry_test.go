package game

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/cbodonnell/tabletop/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, clock *fakeClock) (*Registry, repositories.Repository) {
	t.Helper()
	repository := repositories.NewInMemoryRepository()
	registry := NewRegistry(NewRegistryOptions{
		Repository: repository,
		Clock:      clock.Now,
	})
	t.Cleanup(registry.Stop)
	return registry, repository
}

func TestRegistry_OneActorPerGame(t *testing.T) {
	registry, _ := newTestRegistry(t, newFakeClock())

	a := registry.Actor("g1")
	assert.Same(t, a, registry.Actor("g1"))
	assert.NotSame(t, a, registry.Actor("g2"))
	assert.Equal(t, 2, registry.Len())
}

func TestRegistry_GamesAreIndependent(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t, newFakeClock())

	_, err := registry.Actor("g1").AddPlayer(ctx, "a", "Alice")
	require.NoError(t, err)

	state, err := registry.Actor("g2").GetState(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Players)
}

func TestRegistry_EvictIdle(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	registry, _ := newTestRegistry(t, clock)

	first := registry.Actor("g1")
	_, err := first.AddPlayer(ctx, "a", "Alice")
	require.NoError(t, err)

	assert.Equal(t, 0, registry.EvictIdle(time.Minute))
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, registry.EvictIdle(time.Minute))
	assert.Equal(t, 0, registry.Len())

	second := registry.Actor("g1")
	assert.NotSame(t, first, second)
	state, err := second.GetState(ctx)
	require.NoError(t, err)
	require.Len(t, state.Players, 1, "evicted games are reloaded from the repository")
	assert.Equal(t, "a", state.Players[0].UserID)
}

func TestRegistry_DoRetriesStoppedActor(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t, newFakeClock())

	stale := registry.Actor("g1")
	calls := 0
	v, err := registry.Do(ctx, "g1", func(a *Actor) (interface{}, error) {
		calls++
		if calls == 1 {
			// simulate eviction between lookup and execution
			registry.EvictIdle(0)
			return stale.GetState(ctx)
		}
		return a.GetState(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.IsType(t, &types.GameState{}, v)
}

func TestRouter_Dispatch(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t, newFakeClock())
	router := NewRouter(registry)

	v, err := router.Dispatch(ctx, "g1", JoinCommand{UserID: "a", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.(*types.Player).Name)

	_, err = router.Dispatch(ctx, "g1", JoinCommand{UserID: "b", Name: "Bob"})
	require.NoError(t, err)

	v, err = router.Dispatch(ctx, "g1", StartCommand{})
	require.NoError(t, err)
	assert.True(t, v.(*types.GameState).GameStarted)

	_, err = router.Dispatch(ctx, "g1", NextPhaseCommand{UserID: "b"})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	v, err = router.Dispatch(ctx, "g1", NextPhaseCommand{UserID: "a"})
	require.NoError(t, err)
	assert.Equal(t, types.Phase2, v.(*types.GameState).CurrentPhase)

	v, err = router.Dispatch(ctx, "g1", PerformActionCommand{PlayerID: "a", GameAction: types.ActionMove, Name: "move"})
	require.NoError(t, err)
	assert.NotNil(t, v)

	v, err = router.Dispatch(ctx, "g1", LeaveCommand{UserID: "b"})
	require.NoError(t, err)
	assert.Equal(t, messages.AckResponse{OK: true}, v)

	v, err = router.Dispatch(ctx, "g1", GetStateCommand{})
	require.NoError(t, err)
	state := v.(*types.GameState)
	assert.False(t, state.FindPlayer("b").IsActive)
}

func TestRouter_Dispatch_Errors(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t, newFakeClock())
	router := NewRouter(registry)

	v, err := router.Dispatch(ctx, "bad id", GetStateCommand{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Nil(t, v)
	assert.Equal(t, 0, registry.Len())

	v, err = router.Dispatch(ctx, "g1", StartCommand{})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Nil(t, v)
}
