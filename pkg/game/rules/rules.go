package rules

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/cbodonnell/tabletop/pkg/game/constants"
	"github.com/cbodonnell/tabletop/pkg/game/types"
)

// Action is an accepted in-turn action, already checked for turn ownership and phase.
type Action struct {
	Type     types.ActionType
	PlayerID string
	Data     json.RawMessage
	// At is the unix millisecond time the action was accepted
	At int64
}

// Ruleset holds the game specific policy the actor delegates to.
// Implementations are shared by all games and must be safe for concurrent use.
type Ruleset interface {
	// Name identifies the ruleset in configuration and logs.
	Name() string
	// ApplyAction applies the effect of action to state.Board.
	ApplyAction(state *types.GameState, action Action) error
	// Winner is evaluated every time a round completes. over reports whether
	// the game has ended; winner is then the user ID of the winning player.
	Winner(state *types.GameState) (winner string, over bool)
}

// New returns the ruleset registered under name.
func New(name string, maxTurns int) (Ruleset, error) {
	switch name {
	case "", TurnLimitName:
		return NewTurnLimit(maxTurns), nil
	case LastStandingName:
		return &LastStanding{}, nil
	default:
		return nil, fmt.Errorf("unknown ruleset: %s", name)
	}
}

const TurnLimitName = "turn-limit"

// TurnLimit ends the game once the round counter reaches MaxTurns and picks
// the winner uniformly among the active players.
type TurnLimit struct {
	MaxTurns int
	// Intn returns a number in [0, n). Defaults to math/rand.Intn.
	Intn func(n int) int
}

var _ Ruleset = &TurnLimit{}

func NewTurnLimit(maxTurns int) *TurnLimit {
	if maxTurns <= 0 {
		maxTurns = constants.DefaultMaxTurns
	}
	return &TurnLimit{
		MaxTurns: maxTurns,
		Intn:     rand.Intn,
	}
}

func (r *TurnLimit) Name() string {
	return TurnLimitName
}

func (r *TurnLimit) ApplyAction(state *types.GameState, action Action) error {
	return appendToLedger(state, action)
}

func (r *TurnLimit) Winner(state *types.GameState) (string, bool) {
	if state.CurrentTurn < r.MaxTurns {
		return "", false
	}
	active := state.ActivePlayers()
	if len(active) == 0 {
		return "", false
	}
	intn := r.Intn
	if intn == nil {
		intn = rand.Intn
	}
	return active[intn(len(active))].UserID, true
}

const LastStandingName = "last-standing"

// LastStanding ends the game when a single active player remains at the end
// of a round.
type LastStanding struct{}

var _ Ruleset = &LastStanding{}

func (r *LastStanding) Name() string {
	return LastStandingName
}

func (r *LastStanding) ApplyAction(state *types.GameState, action Action) error {
	return appendToLedger(state, action)
}

func (r *LastStanding) Winner(state *types.GameState) (string, bool) {
	active := state.ActivePlayers()
	if len(active) != 1 {
		return "", false
	}
	return active[0].UserID, true
}
