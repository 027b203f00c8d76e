package types

// StateChangedEvent is emitted after a mutation of a game has been persisted.
type StateChangedEvent struct {
	GameID string
	State  *GameState
}
