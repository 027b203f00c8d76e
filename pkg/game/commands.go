package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cbodonnell/tabletop/pkg/game/constants"
	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
)

// Action names accepted by ParseCommand.
const (
	ActionGetState      = "get-state"
	ActionJoin          = "join"
	ActionStart         = "start"
	ActionNextPhase     = "next-phase"
	ActionPerformAction = "perform-action"
	ActionLeave         = "leave"
)

var actionAliases = map[string]string{
	"state":         ActionGetState,
	"add-player":    ActionJoin,
	"start-game":    ActionStart,
	"advance-phase": ActionNextPhase,
	"remove-player": ActionLeave,
}

// Command is one request to a game actor. The set of commands is closed.
type Command interface {
	Action() string
	isCommand()
}

type GetStateCommand struct{}

type JoinCommand struct {
	UserID string
	Name   string
}

type StartCommand struct{}

type NextPhaseCommand struct {
	UserID string
}

type PerformActionCommand struct {
	PlayerID   string
	GameAction types.ActionType
	// Name is the action as requested, kept for error messages
	Name string
	Data json.RawMessage
}

type LeaveCommand struct {
	UserID string
}

func (GetStateCommand) Action() string      { return ActionGetState }
func (JoinCommand) Action() string          { return ActionJoin }
func (StartCommand) Action() string         { return ActionStart }
func (NextPhaseCommand) Action() string     { return ActionNextPhase }
func (PerformActionCommand) Action() string { return ActionPerformAction }
func (LeaveCommand) Action() string         { return ActionLeave }

func (GetStateCommand) isCommand()      {}
func (JoinCommand) isCommand()          {}
func (StartCommand) isCommand()         {}
func (NextPhaseCommand) isCommand()     {}
func (PerformActionCommand) isCommand() {}
func (LeaveCommand) isCommand()         {}

// NormalizeAction resolves aliases to the canonical action name.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if canonical, ok := actionAliases[action]; ok {
		return canonical
	}
	return action
}

// ParseCommand builds a command from an action name and its JSON body.
func ParseCommand(action string, body []byte) (Command, error) {
	switch NormalizeAction(action) {
	case ActionGetState:
		return GetStateCommand{}, nil
	case ActionStart:
		return StartCommand{}, nil
	case ActionJoin:
		req := messages.JoinRequest{}
		if err := decodeBody(body, &req); err != nil {
			return nil, err
		}
		userID := strings.TrimSpace(req.UserID)
		name := strings.TrimSpace(req.Name)
		if userID == "" || name == "" {
			return nil, InvalidRequest("missing userId or name")
		}
		if len(name) > constants.MaxPlayerNameLength {
			return nil, InvalidRequest("name must be at most %d characters", constants.MaxPlayerNameLength)
		}
		return JoinCommand{UserID: userID, Name: name}, nil
	case ActionNextPhase:
		req := messages.PlayerRequest{}
		if err := decodeBody(body, &req); err != nil {
			return nil, err
		}
		if req.UserID == "" {
			return nil, InvalidRequest("missing userId")
		}
		return NextPhaseCommand{UserID: req.UserID}, nil
	case ActionLeave:
		req := messages.PlayerRequest{}
		if err := decodeBody(body, &req); err != nil {
			return nil, err
		}
		if req.UserID == "" {
			return nil, InvalidRequest("missing userId")
		}
		return LeaveCommand{UserID: req.UserID}, nil
	case ActionPerformAction:
		req := messages.PerformActionRequest{}
		if err := decodeBody(body, &req); err != nil {
			return nil, err
		}
		if req.PlayerID == "" || req.Action == "" {
			return nil, InvalidRequest("missing playerId or action")
		}
		return PerformActionCommand{
			PlayerID:   req.PlayerID,
			GameAction: types.ParseActionType(req.Action),
			Name:       req.Action,
			Data:       req.ActionData,
		}, nil
	default:
		return nil, newError(CodeUnknownAction, "unknown action: %s", action)
	}
}

// ParseActionRequest parses the structured form {"action": ..., "data": {...}}
// into the same command the path form would produce.
func ParseActionRequest(body []byte) (Command, error) {
	req := messages.ActionRequest{}
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	if req.Action == "" {
		return nil, InvalidRequest("missing action")
	}
	return ParseCommand(req.Action, req.Data)
}

func decodeBody(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return InvalidRequest("malformed request body: %v", err)
	}
	return nil
}

var gameIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateGameID checks that id can be used as a storage key.
func ValidateGameID(id string) error {
	if id == "" || len(id) > constants.MaxGameIDLength || !gameIDPattern.MatchString(id) {
		return InvalidRequest("invalid game id %q", id)
	}
	return nil
}

func (c PerformActionCommand) String() string {
	return fmt.Sprintf("%s by %s", c.Name, c.PlayerID)
}
