package types

import "encoding/json"

// GameState is the authoritative state of one game.
type GameState struct {
	// Players in join order. Turn order follows this order.
	Players     []*Player `json:"players"`
	CurrentTurn int       `json:"currentTurn"`
	// CurrentPhase is the step of the current player's turn
	CurrentPhase Phase `json:"currentPhase"`
	// CurrentPlayerIndex indexes ActivePlayers(), not Players
	CurrentPlayerIndex int     `json:"currentPlayerIndex"`
	GameStarted        bool    `json:"gameStarted"`
	GameOver           bool    `json:"gameOver"`
	Winner             *string `json:"winner"`
	// Board is game specific and only interpreted by the ruleset
	Board json.RawMessage `json:"board"`
	// LastUpdated is the unix millisecond time of the last persisted mutation
	LastUpdated int64 `json:"lastUpdated"`
}

// NewGameState returns the state of a game nobody has joined yet.
func NewGameState(now int64) *GameState {
	return &GameState{
		Players:            make([]*Player, 0),
		CurrentTurn:        0,
		CurrentPhase:       PhaseSetup,
		CurrentPlayerIndex: 0,
		Board:              json.RawMessage(`{}`),
		LastUpdated:        now,
	}
}

// Copy returns a deep copy of the game state
func (g *GameState) Copy() *GameState {
	c := &GameState{
		Players:            make([]*Player, len(g.Players)),
		CurrentTurn:        g.CurrentTurn,
		CurrentPhase:       g.CurrentPhase,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		GameStarted:        g.GameStarted,
		GameOver:           g.GameOver,
		LastUpdated:        g.LastUpdated,
	}
	for i, p := range g.Players {
		c.Players[i] = p.Copy()
	}
	if g.Winner != nil {
		winner := *g.Winner
		c.Winner = &winner
	}
	if g.Board != nil {
		c.Board = append(json.RawMessage(nil), g.Board...)
	}
	return c
}

// FindPlayer returns the player with the given user ID, or nil.
func (g *GameState) FindPlayer(userID string) *Player {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the active players in join order.
func (g *GameState) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// CurrentPlayer returns the active player whose turn it is, or nil when
// there is none.
func (g *GameState) CurrentPlayer() *Player {
	active := g.ActivePlayers()
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(active) {
		return nil
	}
	return active[g.CurrentPlayerIndex]
}

// ActiveIndexOf returns the index of userID among the active players, or -1.
func (g *GameState) ActiveIndexOf(userID string) int {
	for i, p := range g.ActivePlayers() {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// InProgress reports whether phases can be advanced.
func (g *GameState) InProgress() bool {
	return g.GameStarted && !g.GameOver
}
