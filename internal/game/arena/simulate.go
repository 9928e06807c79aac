package arena

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Strategy picks the player's next command from the available ones.
//
// Precondition: avail is non-empty.
type Strategy func(s *Session, avail []combat.ActionKind) combat.ActionKind

// LightOnly attacks whenever it can and defends otherwise.
func LightOnly(_ *Session, avail []combat.ActionKind) combat.ActionKind {
	if slices.Contains(avail, combat.ActionLight) {
		return combat.ActionLight
	}
	return combat.ActionDefend
}

// DefendOnly never attacks.
func DefendOnly(_ *Session, _ []combat.ActionKind) combat.ActionKind {
	return combat.ActionDefend
}

const greedyHealRatio = 0.4

// Greedy prefers the strongest available attack, healing first when below 40% HP.
func Greedy(s *Session, avail []combat.ActionKind) combat.ActionKind {
	has := func(k combat.ActionKind) bool { return slices.Contains(avail, k) }
	switch {
	case has(combat.ActionElite):
		return combat.ActionElite
	case has(combat.ActionHeal) && s.Player().HPRatio() < greedyHealRatio:
		return combat.ActionHeal
	case has(combat.ActionHeavy):
		return combat.ActionHeavy
	case has(combat.ActionLight):
		return combat.ActionLight
	default:
		return combat.ActionDefend
	}
}

// Strategies maps strategy names to Strategy functions.
var Strategies = map[string]Strategy{
	"light_only":  LightOnly,
	"defend_only": DefendOnly,
	"greedy":      Greedy,
}

// Simulate plays the session to its end, choosing every player action with
// strategy. It starts the session if it has not started.
//
// Postcondition: on success the session has ended and its result is returned.
func (s *Session) Simulate(strategy Strategy) (Result, error) {
	if s.state == StateInactive {
		if err := s.Start(); err != nil {
			return ResultNone, err
		}
	}
	for s.state == StatePlayerTurn {
		avail := s.PlayerAvailableActions()
		if len(avail) == 0 {
			return ResultNone, fmt.Errorf("arena: %s has no available action on turn %d", s.player.Name, s.turn)
		}
		kind := strategy(s, avail)
		res, err := s.ExecutePlayerAction(kind)
		if err != nil {
			return ResultNone, err
		}
		if !res.Success {
			return ResultNone, fmt.Errorf("arena: strategy chose %s on turn %d: %s", kind, s.turn, res.Message)
		}
	}
	return s.result, nil
}
