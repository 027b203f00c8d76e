package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name   string
		action string
		body   string
		want   Command
		code   ErrorCode
	}{
		{name: "get-state", action: "get-state", want: GetStateCommand{}},
		{name: "state alias", action: "state", want: GetStateCommand{}},
		{name: "start", action: "start-game", body: `{}`, want: StartCommand{}},
		{name: "join", action: "join", body: `{"userId":"u1","name":" Alice "}`, want: JoinCommand{UserID: "u1", Name: "Alice"}},
		{name: "join alias", action: "ADD-PLAYER", body: `{"userId":"u1","name":"Alice"}`, want: JoinCommand{UserID: "u1", Name: "Alice"}},
		{name: "join missing name", action: "join", body: `{"userId":"u1"}`, code: CodeInvalidRequest},
		{name: "join empty body", action: "join", code: CodeInvalidRequest},
		{name: "join long name", action: "join", body: `{"userId":"u1","name":"` + strings.Repeat("x", 33) + `"}`, code: CodeInvalidRequest},
		{name: "next-phase", action: "advance-phase", body: `{"userId":"u1"}`, want: NextPhaseCommand{UserID: "u1"}},
		{name: "next-phase missing user", action: "next-phase", body: `{}`, code: CodeInvalidRequest},
		{name: "leave", action: "remove-player", body: `{"userId":"u1"}`, want: LeaveCommand{UserID: "u1"}},
		{name: "malformed body", action: "leave", body: `{"userId":`, code: CodeInvalidRequest},
		{
			name:   "perform-action",
			action: "perform-action",
			body:   `{"playerId":"u1","action":"move","actionData":{"to":"a3"}}`,
			want: PerformActionCommand{
				PlayerID:   "u1",
				GameAction: types.ActionMove,
				Name:       "move",
				Data:       json.RawMessage(`{"to":"a3"}`),
			},
		},
		{
			name:   "perform-action unknown game action",
			action: "perform-action",
			body:   `{"playerId":"u1","action":"dance"}`,
			want:   PerformActionCommand{PlayerID: "u1", GameAction: types.ActionUnknown, Name: "dance"},
		},
		{name: "perform-action missing action", action: "perform-action", body: `{"playerId":"u1"}`, code: CodeInvalidRequest},
		{name: "unknown", action: "fly", code: CodeUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.action, []byte(tt.body))
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseCommand_UnknownActionMessage(t *testing.T) {
	_, err := ParseCommand("fly", nil)
	assert.EqualError(t, err, "unknown action: fly")
	assert.True(t, IsValidation(err))
}

func TestParseActionRequest(t *testing.T) {
	cmd, err := ParseActionRequest([]byte(`{"action":"join","data":{"userId":"u1","name":"Alice"}}`))
	require.NoError(t, err)
	assert.Equal(t, JoinCommand{UserID: "u1", Name: "Alice"}, cmd)

	cmd, err = ParseActionRequest([]byte(`{"action":"perform-action","data":{"playerId":"u1","action":"attack"}}`))
	require.NoError(t, err)
	assert.Equal(t, types.ActionAttack, cmd.(PerformActionCommand).GameAction)

	_, err = ParseActionRequest([]byte(`{"data":{}}`))
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	_, err = ParseActionRequest([]byte(`{"action":"teleport"}`))
	assert.Equal(t, CodeUnknownAction, CodeOf(err))
}

func TestValidateGameID(t *testing.T) {
	for _, id := range []string{"g1", "my_game-2", strings.Repeat("a", 64)} {
		assert.NoError(t, ValidateGameID(id), id)
	}
	for _, id := range []string{"", "a/b", "game 1", "ü", strings.Repeat("a", 65)} {
		assert.ErrorIs(t, ValidateGameID(id), ErrInvalidRequest, id)
	}
}

func TestError_Is(t *testing.T) {
	err := newError(CodeNotYourTurn, "player %s may not act", "u2")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.NotErrorIs(t, err, ErrWrongPhase)

	wrapped := wrapError(CodeStorageFailure, "failed to persist game state", assert.AnError)
	assert.ErrorIs(t, wrapped, ErrStorageFailure)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(assert.AnError))
}
