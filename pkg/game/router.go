package game

import (
	"context"

	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
)

// Router translates commands into calls on the owning actor. It is shared by
// every transport.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{
		registry: registry,
	}
}

// Dispatch executes cmd on the game gameID. Join returns the *types.Player,
// leave a messages.AckResponse, every other command the full *types.GameState.
func (r *Router) Dispatch(ctx context.Context, gameID string, cmd Command) (interface{}, error) {
	if err := ValidateGameID(gameID); err != nil {
		return nil, err
	}

	return r.registry.Do(ctx, gameID, func(a *Actor) (interface{}, error) {
		switch c := cmd.(type) {
		case GetStateCommand:
			return nilIfErr(a.GetState(ctx))
		case JoinCommand:
			return nilIfErr(a.AddPlayer(ctx, c.UserID, c.Name))
		case StartCommand:
			return nilIfErr(a.StartGame(ctx))
		case NextPhaseCommand:
			return nilIfErr(a.AdvancePhaseAs(ctx, c.UserID))
		case PerformActionCommand:
			return nilIfErr(a.ProcessGameAction(ctx, c.GameAction, c.PlayerID, c.Data))
		case LeaveCommand:
			if err := a.RemovePlayer(ctx, c.UserID); err != nil {
				return nil, err
			}
			return messages.AckResponse{OK: true}, nil
		default:
			return nil, newError(CodeUnknownAction, "unknown action: %T", cmd)
		}
	})
}

// nilIfErr keeps a typed nil pointer from being returned as a non-nil interface.
func nilIfErr[T *types.GameState | *types.Player](v T, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
