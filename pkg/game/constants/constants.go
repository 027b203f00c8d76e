package constants

import "time"

const (
	// MinActivePlayers is the number of active players required to start a game
	MinActivePlayers int = 2
	// DefaultMaxTurns is the round at which the turn-limit ruleset ends the game
	DefaultMaxTurns int = 5

	// MaxGameIDLength is the maximum length of a game identifier
	MaxGameIDLength int = 64
	// MaxPlayerNameLength is the maximum length of a player display name
	MaxPlayerNameLength int = 32

	// ActorInboxSize is the number of operations that may wait on a single game actor
	ActorInboxSize int = 64
	// DefaultActorIdleTimeout is how long an actor stays resident without traffic
	DefaultActorIdleTimeout time.Duration = 10 * time.Minute
)
