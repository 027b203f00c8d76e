package rules

import (
	"encoding/json"
	"testing"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePlayers() *types.GameState {
	g := types.NewGameState(0)
	g.Players = []*types.Player{
		{UserID: "a", IsActive: true},
		{UserID: "b", IsActive: false},
		{UserID: "c", IsActive: true},
	}
	return g
}

func TestTurnLimit_Winner(t *testing.T) {
	r := NewTurnLimit(5)
	r.Intn = func(n int) int { return n - 1 }

	g := threePlayers()
	g.CurrentTurn = 4
	_, over := r.Winner(g)
	assert.False(t, over)

	g.CurrentTurn = 5
	winner, over := r.Winner(g)
	assert.True(t, over)
	assert.Equal(t, "c", winner)

	g.Players[0].IsActive = false
	g.Players[2].IsActive = false
	_, over = r.Winner(g)
	assert.False(t, over, "no winner can be named without active players")
}

func TestLastStanding_Winner(t *testing.T) {
	r := &LastStanding{}
	g := threePlayers()

	_, over := r.Winner(g)
	assert.False(t, over)

	g.Players[0].IsActive = false
	winner, over := r.Winner(g)
	assert.True(t, over)
	assert.Equal(t, "c", winner)
}

func TestNew(t *testing.T) {
	r, err := New("", 0)
	require.NoError(t, err)
	assert.Equal(t, TurnLimitName, r.Name())
	assert.Equal(t, 5, r.(*TurnLimit).MaxTurns)

	r, err = New(LastStandingName, 0)
	require.NoError(t, err)
	assert.Equal(t, LastStandingName, r.Name())

	_, err = New("chess", 0)
	assert.Error(t, err)
}

func TestApplyAction_Ledger(t *testing.T) {
	g := threePlayers()
	g.CurrentTurn = 1
	g.CurrentPhase = types.Phase2
	g.Board = json.RawMessage(`{"size":9}`)

	r := NewTurnLimit(5)
	require.NoError(t, r.ApplyAction(g, Action{Type: types.ActionMove, PlayerID: "a", Data: json.RawMessage(`{"to":3}`), At: 10}))
	g.CurrentPhase = types.Phase3
	require.NoError(t, r.ApplyAction(g, Action{Type: types.ActionAttack, PlayerID: "a", At: 11}))

	entries, err := Ledger(g.Board)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, types.ActionMove, entries[0].Type)
	assert.Equal(t, types.Phase2, entries[0].Phase)
	assert.JSONEq(t, `{"to":3}`, string(entries[0].Data))
	assert.Equal(t, types.ActionAttack, entries[1].Type)
	assert.Equal(t, "null", string(entries[1].Data))

	board := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(g.Board, &board))
	assert.Equal(t, "9", string(board["size"]))
}

func TestApplyAction_InvalidBoard(t *testing.T) {
	g := threePlayers()
	g.Board = json.RawMessage(`[1,2]`)
	err := NewTurnLimit(5).ApplyAction(g, Action{Type: types.ActionMove, PlayerID: "a"})
	assert.Error(t, err)
}
