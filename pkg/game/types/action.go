package types

// ActionType is a closed set of in-turn actions. Each one is bound to exactly
// one phase of the turn cycle.
type ActionType string

const (
	ActionUnknown ActionType = ""
	ActionMove    ActionType = "move"
	ActionAttack  ActionType = "attack"
)

var actionPhases = map[ActionType]Phase{
	ActionMove:   Phase2,
	ActionAttack: Phase3,
}

// ParseActionType maps a wire name onto an ActionType.
// Unrecognized names map to ActionUnknown so that turn ownership can be
// checked before the action itself is rejected.
func ParseActionType(s string) ActionType {
	a := ActionType(s)
	if _, ok := actionPhases[a]; ok {
		return a
	}
	return ActionUnknown
}

// Phase returns the phase the action is allowed in.
func (a ActionType) Phase() (Phase, bool) {
	p, ok := actionPhases[a]
	return p, ok
}

func (a ActionType) Valid() bool {
	_, ok := actionPhases[a]
	return ok
}
