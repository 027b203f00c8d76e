package types

// Player is a participant of a single game. Players are never removed,
// only deactivated.
type Player struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"`
	IsActive bool   `json:"isActive"`
}

// Copy returns a copy of the player
func (p *Player) Copy() *Player {
	c := *p
	return &c
}
