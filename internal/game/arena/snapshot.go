package arena

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/enemy"
)

// Status is a read-only view of a session for display.
type Status struct {
	ID      string         `json:"id"`
	State   State          `json:"state"`
	Result  Result         `json:"result,omitempty"`
	Turn    int            `json:"turn"`
	Player  combat.Stats   `json:"player"`
	Enemy   combat.Stats   `json:"enemy"`
	Log     []Event        `json:"log"`
	Rewards *enemy.Rewards `json:"rewards,omitempty"`
}

// Status returns the session's current view.
func (s *Session) Status() Status {
	st := Status{
		ID:     s.id,
		State:  s.state,
		Result: s.result,
		Turn:   s.turn,
		Player: s.player.Stats(),
		Enemy:  s.foe.Stats(),
		Log:    s.Log(),
	}
	if r, ok := s.Rewards(); ok {
		st.Rewards = &r
	}
	return st
}

// Snapshot is the serializable state of a Session. Restoring it onto
// combatants built from the same descriptors resumes the combat exactly.
type Snapshot struct {
	ID          string       `json:"id"`
	State       State        `json:"state"`
	Result      Result       `json:"result,omitempty"`
	PlayerFirst bool         `json:"player_first"`
	Active      int          `json:"active"`
	Turn        int          `json:"turn"`
	TurnCeiling int          `json:"turn_ceiling"`
	Phase       enemy.Phase  `json:"phase"`
	Rewarded    bool         `json:"rewarded"`
	Player      combat.State `json:"player"`
	Enemy       combat.State `json:"enemy"`
	Log         []Event      `json:"log"`
	// RNG is the dice source's state, present when the source can capture it.
	RNG []byte `json:"rng,omitempty"`
}

// Snapshot captures the session.
//
// Postcondition: RNG is empty when the session's source is stateless.
func (s *Session) Snapshot() (Snapshot, error) {
	p, err := s.player.Capture()
	if err != nil {
		return Snapshot{}, err
	}
	e, err := s.foe.Capture()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ID:          s.id,
		State:       s.state,
		Result:      s.result,
		PlayerFirst: s.order[0] == s.player,
		Active:      s.active,
		Turn:        s.turn,
		TurnCeiling: s.ceiling,
		Phase:       s.phase,
		Rewarded:    s.rewarded,
		Player:      p,
		Enemy:       e,
		Log:         s.Log(),
	}
	if m, ok := s.src.(encoding.BinaryMarshaler); ok {
		rng, err := m.MarshalBinary()
		if err != nil && !errors.Is(err, dice.ErrStateless) {
			return Snapshot{}, fmt.Errorf("arena: capturing dice state: %w", err)
		}
		snap.RNG = rng
	}
	return snap, nil
}

// Restore overwrites an inactive session with snap.
//
// Precondition: the session's combatants were built from the same player
// spec and enemy descriptor as the snapshot's.
// Postcondition: on error the session must be discarded.
func (s *Session) Restore(snap Snapshot) error {
	if s.state != StateInactive {
		return ErrAlreadyStarted
	}
	switch {
	case snap.Player.Archetype != s.player.Archetype:
		return fmt.Errorf("%w: player is %s, snapshot has %s", ErrSnapshotMismatch, s.player.Archetype, snap.Player.Archetype)
	case snap.Enemy.Archetype != s.foe.Archetype:
		return fmt.Errorf("%w: enemy is %s, snapshot has %s", ErrSnapshotMismatch, s.foe.Archetype, snap.Enemy.Archetype)
	case snap.Active != 0 && snap.Active != 1:
		return fmt.Errorf("%w: active index %d", ErrSnapshotMismatch, snap.Active)
	case snap.TurnCeiling < 1:
		return fmt.Errorf("%w: turn ceiling %d", ErrSnapshotMismatch, snap.TurnCeiling)
	}
	if err := s.player.Restore(snap.Player); err != nil {
		return err
	}
	if err := s.foe.Restore(snap.Enemy); err != nil {
		return err
	}
	if len(snap.RNG) > 0 {
		u, ok := s.src.(encoding.BinaryUnmarshaler)
		if !ok {
			return fmt.Errorf("%w: snapshot carries dice state the source cannot restore", ErrSnapshotMismatch)
		}
		if err := u.UnmarshalBinary(snap.RNG); err != nil {
			return fmt.Errorf("arena: restoring dice state: %w", err)
		}
	}
	if snap.ID != "" {
		s.id = snap.ID
		s.logger = s.root.With(zap.String("combat_id", s.id))
	}
	s.state = snap.State
	s.result = snap.Result
	if snap.PlayerFirst {
		s.order = [2]*combat.Combatant{s.player, s.foe}
	} else {
		s.order = [2]*combat.Combatant{s.foe, s.player}
	}
	s.active = snap.Active
	s.turn = snap.Turn
	s.ceiling = snap.TurnCeiling
	s.phase = snap.Phase
	s.rewarded = snap.Rewarded
	s.log = append([]Event(nil), snap.Log...)
	return nil
}

// MarshalSnapshot encodes snap as JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalSnapshot decodes a JSON snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("arena: decoding snapshot: %w", err)
	}
	return snap, nil
}
