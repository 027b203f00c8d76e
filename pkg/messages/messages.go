package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/tabletop/pkg/game/types"
)

// MessageType identifies a realtime message pushed to subscribers
type MessageType string

const (
	// MessageTypeServerGameState carries a full GameState snapshot
	MessageTypeServerGameState MessageType = "state"
	// MessageTypeServerError is sent before the server closes a subscription
	MessageTypeServerError MessageType = "error"
)

// Message represents a realtime message for serialization/deserialization
type Message struct {
	Type    MessageType     `json:"type"`
	GameID  string          `json:"gameId"`
	Payload json.RawMessage `json:"payload"`
}

// ActionRequest is the structured form of any request. Action selects the
// operation and Data carries the body the path form of that action takes.
type ActionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// JoinRequest is the body of a join request
type JoinRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// PlayerRequest is the body of requests that only identify the caller
type PlayerRequest struct {
	UserID string `json:"userId"`
}

// PerformActionRequest is the body of a perform-action request
type PerformActionRequest struct {
	PlayerID   string          `json:"playerId"`
	Action     string          `json:"action"`
	ActionData json.RawMessage `json:"actionData,omitempty"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AckResponse acknowledges operations that return no resource
type AckResponse struct {
	OK bool `json:"ok"`
}

// CreateGameResponse is returned when a new game ID is issued
type CreateGameResponse struct {
	GameID string `json:"gameId"`
}

// NewGameStateMessage wraps a snapshot for realtime delivery
func NewGameStateMessage(gameID string, state *types.GameState) (*Message, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    MessageTypeServerGameState,
		GameID:  gameID,
		Payload: payload,
	}, nil
}

// GameState decodes the payload of a state message
func (m *Message) GameState() (*types.GameState, error) {
	if m.Type != MessageTypeServerGameState {
		return nil, fmt.Errorf("message type %s does not carry a game state", m.Type)
	}
	state := &types.GameState{}
	if err := json.Unmarshal(m.Payload, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %v", err)
	}
	return state, nil
}
