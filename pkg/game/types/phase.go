package types

import "fmt"

// Phase is a named step of a player's turn. Phases are declared in play order.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	Phase1        Phase = "phase_1"
	Phase2        Phase = "phase_2"
	Phase3        Phase = "phase_3"
	Phase4        Phase = "phase_4"
	Phase5        Phase = "phase_5"
	Phase6        Phase = "phase_6"
	PhaseGameOver Phase = "game_over"
)

// InGamePhases is the cycle a single player's turn walks through.
var InGamePhases = []Phase{Phase1, Phase2, Phase3, Phase4, Phase5, Phase6}

// FirstInGamePhase is the phase a game and every turn starts in.
func FirstInGamePhase() Phase {
	return InGamePhases[0]
}

// IsInGame reports whether p is part of the turn cycle.
func (p Phase) IsInGame() bool {
	return p.index() >= 0
}

func (p Phase) index() int {
	for i, phase := range InGamePhases {
		if phase == p {
			return i
		}
	}
	return -1
}

// Next returns the phase following p in the turn cycle.
// wrapped is true when p is the last phase and the cycle restarts.
func (p Phase) Next() (next Phase, wrapped bool, err error) {
	i := p.index()
	if i < 0 {
		return p, false, fmt.Errorf("phase %q is not part of the turn cycle", p)
	}
	if i == len(InGamePhases)-1 {
		return InGamePhases[0], true, nil
	}
	return InGamePhases[i+1], false, nil
}

// ParsePhase parses a phase name.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhaseSetup, PhaseGameOver:
		return p, nil
	default:
		if p.IsInGame() {
			return p, nil
		}
		return "", fmt.Errorf("unknown phase: %s", s)
	}
}
