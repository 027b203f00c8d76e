package rules

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/tabletop/pkg/game/types"
)

const ledgerKey = "actions"

// LedgerEntry is one accepted action as recorded on the board.
type LedgerEntry struct {
	Type     types.ActionType `json:"type"`
	PlayerID string           `json:"playerId"`
	Turn     int              `json:"turn"`
	Phase    types.Phase      `json:"phase"`
	Data     json.RawMessage  `json:"data"`
	At       int64            `json:"at"`
}

// appendToLedger records action under board.actions, keeping any other keys
// of the board untouched.
func appendToLedger(state *types.GameState, action Action) error {
	board := map[string]json.RawMessage{}
	if len(state.Board) > 0 && string(state.Board) != "null" {
		if err := json.Unmarshal(state.Board, &board); err != nil {
			return fmt.Errorf("board is not a JSON object: %v", err)
		}
	}

	var entries []LedgerEntry
	if raw, ok := board[ledgerKey]; ok {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("failed to decode action ledger: %v", err)
		}
	}

	data := action.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	entries = append(entries, LedgerEntry{
		Type:     action.Type,
		PlayerID: action.PlayerID,
		Turn:     state.CurrentTurn,
		Phase:    state.CurrentPhase,
		Data:     data,
		At:       action.At,
	})

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode action ledger: %v", err)
	}
	board[ledgerKey] = raw

	b, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode board: %v", err)
	}
	state.Board = b
	return nil
}

// Ledger decodes the actions recorded on a board.
func Ledger(board json.RawMessage) ([]LedgerEntry, error) {
	if len(board) == 0 {
		return nil, nil
	}
	var b struct {
		Actions []LedgerEntry `json:"actions"`
	}
	if err := json.Unmarshal(board, &b); err != nil {
		return nil, fmt.Errorf("failed to decode board: %v", err)
	}
	return b.Actions, nil
}
