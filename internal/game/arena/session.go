// Package arena implements the combat orchestrator: initiative ordering, the
// alternating turn loop, action resolution against the opposing combatant,
// terminal detection, and the event log that audits all of it.
package arena

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/enemy"
)

// DefaultTurnCeiling is the number of rounds after which a combat is a draw.
const DefaultTurnCeiling = 20

var (
	// ErrNotStarted is returned when a session is used before Start.
	ErrNotStarted = errors.New("arena: combat not started")
	// ErrAlreadyStarted is returned when Start or Restore is called on a running session.
	ErrAlreadyStarted = errors.New("arena: combat already started")
	// ErrSnapshotMismatch is returned when a snapshot does not fit the session's combatants.
	ErrSnapshotMismatch = errors.New("arena: snapshot does not match combatants")
)

// State is the orchestrator's position in the combat lifecycle.
type State string

const (
	StateInactive   State = "inactive"
	StatePlayerTurn State = "player_turn"
	StateEnemyTurn  State = "enemy_turn"
	StateEnded      State = "ended"
)

// Result is the terminal outcome of a combat.
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultDraw    Result = "draw"
)

// Options configures a Session.
type Options struct {
	// TurnCeiling forces a draw once this many rounds have passed; 0 means DefaultTurnCeiling.
	TurnCeiling int
	// Src drives every roll in the combat, including the enemy's decisions.
	Src        dice.Source
	Strategies *ai.Strategies
	// Clock stamps events; nil means time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Session is one combat between a player and an enemy.
//
// A Session is not safe for concurrent use. All methods are synchronous: an
// enemy turn resolves inside the call that ended the player's turn.
//
// Invariant: while not inactive, order holds the two combatants and active
// indexes the one whose turn it is.
type Session struct {
	id      string
	player  *combat.Combatant
	foe     *combat.Combatant
	src     dice.Source
	model   *ai.Model
	clock   func() time.Time
	logger  *zap.Logger
	root    *zap.Logger
	ceiling int

	state    State
	result   Result
	order    [2]*combat.Combatant
	active   int
	turn     int
	phase    enemy.Phase
	rewarded bool
	log      []Event
}

// NewSession prepares a combat between player and foe.
//
// Precondition: opts.Src and opts.Strategies must not be nil.
// Postcondition: the session is inactive, or an error describes why the
// combatants cannot fight.
func NewSession(player, foe *combat.Combatant, opts Options) (*Session, error) {
	if opts.Src == nil || opts.Strategies == nil {
		panic("arena.NewSession: opts.Src and opts.Strategies must not be nil")
	}
	switch {
	case player == nil || foe == nil:
		return nil, errors.New("arena: both combatants are required")
	case player.Kind != combat.KindPlayer:
		return nil, fmt.Errorf("arena: %s is not a player", player.Name)
	case foe.Kind != combat.KindEnemy:
		return nil, fmt.Errorf("arena: %s is not an enemy", foe.Name)
	case !player.IsAlive() || !foe.IsAlive():
		return nil, errors.New("arena: both combatants must be alive")
	case opts.TurnCeiling < 0:
		return nil, fmt.Errorf("arena: turn ceiling must be >= 0, got %d", opts.TurnCeiling)
	}
	if opts.TurnCeiling == 0 {
		opts.TurnCeiling = DefaultTurnCeiling
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		id:      id,
		player:  player,
		foe:     foe,
		src:     opts.Src,
		model:   ai.NewModel(opts.Strategies, opts.Src, opts.Logger),
		clock:   opts.Clock,
		logger:  opts.Logger.With(zap.String("combat_id", id)),
		root:    opts.Logger,
		ceiling: opts.TurnCeiling,
		state:   StateInactive,
	}, nil
}

// ID returns the session's unique combat ID.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Result returns the terminal result, or ResultNone while the combat runs.
func (s *Session) Result() Result { return s.result }

// Turn returns the current round number.
func (s *Session) Turn() int { return s.turn }

// Player returns the player combatant.
func (s *Session) Player() *combat.Combatant { return s.player }

// Enemy returns the enemy combatant.
func (s *Session) Enemy() *combat.Combatant { return s.foe }

// Log returns a copy of the event log.
func (s *Session) Log() []Event {
	out := make([]Event, len(s.log))
	copy(out, s.log)
	return out
}

// Start resets both combatants, orders them by initiative, and runs turns up
// to the first player decision or the end of the combat.
//
// Postcondition: State() is StatePlayerTurn or StateEnded.
func (s *Session) Start() error {
	if s.state != StateInactive {
		return ErrAlreadyStarted
	}
	s.player.ResetForCombat()
	s.foe.ResetForCombat()

	first, second := s.player, s.foe
	switch {
	case s.foe.Initiative > s.player.Initiative:
		first, second = s.foe, s.player
	case s.foe.Initiative == s.player.Initiative && s.src.Intn(2) == 1:
		first, second = s.foe, s.player
	}
	s.order = [2]*combat.Combatant{first, second}
	s.active = 1
	s.phase = enemy.PhaseIntro

	s.emit(CategoryCombatStart, "%s (initiative %d) faces %s (initiative %d); %s acts first",
		s.player.Name, s.player.Initiative, s.foe.Name, s.foe.Initiative, first.Name)
	if b, ok := enemy.BehaviorOf(s.foe); ok {
		if d := b.Description(); d != "" {
			s.emit(CategoryCombatStart, "%s", d)
		}
		if line := b.Flavor(s.src); line != "" {
			s.emit(CategoryCombatStart, "%s", line)
		}
		s.speak(b, enemy.PhaseIntro)
	}
	s.logger.Debug("combat started",
		zap.String("player", s.player.Name),
		zap.String("enemy", s.foe.Name),
		zap.String("first", first.Name),
	)
	s.advance()
	return nil
}

// PlayerAvailableActions lists the commands the player may issue now, in
// command order. It is empty outside the player's turn.
func (s *Session) PlayerAvailableActions() []combat.ActionKind {
	if s.state != StatePlayerTurn {
		return nil
	}
	var out []combat.ActionKind
	for _, k := range playerCommands {
		if s.player.CanPerform(k) {
			out = append(out, k)
		}
	}
	return out
}

var playerCommands = []combat.ActionKind{
	combat.ActionLight, combat.ActionHeavy, combat.ActionDefend, combat.ActionHeal, combat.ActionElite,
}

// ExecuteCommand parses cmd and executes it as the player's action.
//
// Postcondition: once the combat has ended the event log no longer grows.
func (s *Session) ExecuteCommand(cmd string) (combat.ActionResult, error) {
	kind, err := combat.ParseCommand(cmd)
	if err != nil {
		switch s.state {
		case StateInactive:
			return combat.ActionResult{}, ErrNotStarted
		case StateEnded:
			return combat.Failed(combat.Action{Name: cmd}, "combat has ended"), nil
		}
		res := combat.Failed(combat.Action{Name: cmd}, err.Error())
		s.emit(CategoryFailedAction, "%s", res.Message)
		return res, nil
	}
	return s.ExecutePlayerAction(kind)
}

// ExecutePlayerAction resolves one player action against the enemy.
//
// A rejected action is returned as a failed result and leaves every combatant
// and the turn unchanged so the caller can prompt again. The player's turn
// ends once no moves remain; the enemy's reply then resolves before return.
//
// Postcondition: returns ErrNotStarted only before Start.
func (s *Session) ExecutePlayerAction(kind combat.ActionKind) (combat.ActionResult, error) {
	switch s.state {
	case StateInactive:
		return combat.ActionResult{}, ErrNotStarted
	case StateEnded:
		return combat.Failed(combat.Action{Kind: kind, Name: kind.String()}, "combat has ended"), nil
	case StateEnemyTurn:
		return combat.Failed(combat.Action{Kind: kind, Name: kind.String()}, "it is not your turn"), nil
	}
	if kind == combat.ActionAbility || kind == combat.ActionUnknown {
		res := combat.Failed(combat.Action{Kind: kind, Name: kind.String()}, fmt.Sprintf("%s is not a player command", kind))
		s.emit(CategoryFailedAction, "%s", res.Message)
		return res, nil
	}

	res := s.player.Perform(combat.Action{Kind: kind, Name: kind.String()}, s.context(s.foe))
	if !res.Success {
		s.emit(CategoryFailedAction, "%s", res.Message)
		return res, nil
	}
	s.resolve(s.player, s.foe, res, CategoryPlayerAction)
	if s.state == StateEnded {
		return res, nil
	}
	if b, ok := enemy.BehaviorOf(s.foe); ok {
		if line := b.React(s.foe, kind, s.src); line != "" {
			s.emit(CategoryEnemyReaction, "%s", line)
		}
	}
	if s.player.RemainingMoves() == 0 {
		s.advance()
	}
	return res, nil
}

// advance hands the turn to the next combatant, running enemy turns until the
// player must decide or the combat ends.
func (s *Session) advance() {
	for s.state != StateEnded {
		s.active = 1 - s.active
		if !s.beginTurn() {
			return
		}
		if s.order[s.active] == s.player {
			s.state = StatePlayerTurn
			return
		}
		s.state = StateEnemyTurn
		s.enemyTurn()
	}
}

// beginTurn runs the current combatant's turn-start hook. A new round starts
// with the first combatant in initiative order.
//
// Postcondition: returns false iff the combat ended.
func (s *Session) beginTurn() bool {
	c := s.order[s.active]
	if s.active == 0 {
		s.turn++
		if s.turn > s.ceiling {
			s.finish(ResultDraw, fmt.Sprintf("the turn limit of %d was reached", s.ceiling))
			return false
		}
	}
	s.emit(CategoryTurnStart, "%s's turn", c.Name)
	rep := c.StartTurn()
	for _, t := range rep.Ticks {
		if t.Damage > 0 {
			s.emit(CategoryStatusTick, "%s takes %d %s damage (HP %d/%d)", c.Name, t.Damage, t.Kind, c.HP(), c.MaxHP)
		}
		if t.Expired {
			s.emit(CategoryStatusTick, "%s on %s wears off", t.Kind, c.Name)
		}
	}
	for _, n := range rep.Notes {
		s.emit(CategorySpecial, "%s: %s", c.Name, n)
	}
	if rep.LockedOut && !rep.Died {
		s.emit(CategorySpecial, "%s cannot attack this turn", c.Name)
	}
	if rep.Died {
		s.settle()
		return false
	}
	s.checkPhase()
	return true
}

// enemyTurn asks the decision model for one action and resolves it.
func (s *Session) enemyTurn() {
	d, err := s.model.Decide(s.foe, s.player)
	if d.NoTarget {
		s.emit(CategorySpecial, "%s cannot find a target", s.foe.Name)
	}
	if err != nil {
		s.emit(CategoryFailedAction, "%s hesitates", s.foe.Name)
		return
	}
	res := s.foe.Perform(d.Action, s.context(s.player))
	if !res.Success {
		s.emit(CategoryFailedAction, "%s", res.Message)
		return
	}
	s.resolve(s.foe, s.player, res, CategoryEnemyAction)
}

// resolve applies a successful action's damage and statuses to target, then
// any reflection or counter-attack back onto actor, then checks for death.
func (s *Session) resolve(actor, target *combat.Combatant, res combat.ActionResult, cat Category) {
	s.emit(cat, "%s", res.Message)
	for _, n := range res.Notes {
		s.emit(CategorySpecial, "%s", n)
	}
	if res.Missed {
		return
	}
	landed := true
	if res.Damage > 0 {
		out := target.TakeDamage(res.Damage, s.context(actor))
		for _, n := range out.Notes {
			s.emit(CategorySpecial, "%s: %s", target.Name, n)
		}
		if out.Evaded {
			landed = false
			s.emit(CategoryDamage, "%s evades the attack", target.Name)
		} else {
			s.emit(CategoryDamage, "%s takes %d damage (HP %d/%d)", target.Name, out.Final, target.HP(), target.MaxHP)
		}
		if target.IsAlive() {
			s.bounce(target, actor, out.Reflected, "reflects")
			s.bounce(target, actor, out.Counter, "counters")
		}
	}
	if landed && target.IsAlive() {
		for _, app := range res.Statuses {
			msg, err := target.ApplyStatus(app)
			if err != nil {
				s.logger.Warn("status not applied", zap.String("target", target.Name), zap.Error(err))
				continue
			}
			s.emit(CategoryStatusEffect, "%s", msg)
		}
	}
	s.checkPhase()
	s.settle()
}

// bounce deals n damage from defender back onto attacker without mitigation.
func (s *Session) bounce(defender, attacker *combat.Combatant, n int, verb string) {
	if n <= 0 || !attacker.IsAlive() {
		return
	}
	out := attacker.ApplyDirectDamage(n)
	s.emit(CategoryReflection, "%s %s %d damage onto %s (HP %d/%d)", defender.Name, verb, out.Final, attacker.Name, attacker.HP(), attacker.MaxHP)
	for _, note := range out.Notes {
		s.emit(CategorySpecial, "%s: %s", attacker.Name, note)
	}
}

// settle ends the combat if either side has fallen. The enemy is checked first.
func (s *Session) settle() {
	switch {
	case !s.foe.IsAlive():
		s.finish(ResultVictory, fmt.Sprintf("%s is defeated", s.foe.Name))
	case !s.player.IsAlive():
		s.finish(ResultDefeat, fmt.Sprintf("%s has fallen", s.player.Name))
	}
}

// checkPhase logs boss dialogue when the enemy's health crosses into a new phase.
func (s *Session) checkPhase() {
	if !s.foe.IsAlive() {
		return
	}
	p := enemy.PhaseFor(s.foe.HPRatio())
	if p == s.phase {
		return
	}
	s.phase = p
	if b, ok := enemy.BehaviorOf(s.foe); ok {
		s.speak(b, p)
	}
}

func (s *Session) speak(b enemy.Behavior, p enemy.Phase) {
	if line := b.Line(p, s.src); line != "" {
		s.emit(CategoryDialogue, "%s: %s", s.foe.Name, line)
	}
}

// finish moves to the terminal state. Rewards are logged exactly once, on victory.
func (s *Session) finish(r Result, why string) {
	if s.state == StateEnded {
		return
	}
	s.state = StateEnded
	s.result = r
	s.emit(CategoryCombatEnd, "%s: %s", r, why)
	b, ok := enemy.BehaviorOf(s.foe)
	if r == ResultVictory && ok {
		s.phase = enemy.PhaseDefeat
		s.speak(b, enemy.PhaseDefeat)
		if !s.rewarded {
			s.rewarded = true
			s.emit(CategoryRewards, "%s", describeRewards(b.Rewards()))
		}
	}
	s.logger.Info("combat ended",
		zap.String("result", string(r)),
		zap.Int("turn", s.turn),
		zap.Int("player_hp", s.player.HP()),
		zap.Int("enemy_hp", s.foe.HP()),
	)
}

// Rewards returns the enemy's rewards once the player has won.
func (s *Session) Rewards() (enemy.Rewards, bool) {
	if s.result != ResultVictory {
		return enemy.Rewards{}, false
	}
	b, ok := enemy.BehaviorOf(s.foe)
	if !ok {
		return enemy.Rewards{}, false
	}
	return b.Rewards(), true
}

func (s *Session) context(target *combat.Combatant) combat.Context {
	return combat.Context{Src: s.src, Target: target}
}

func (s *Session) emit(c Category, format string, args ...any) {
	s.log = append(s.log, Event{
		Turn:      s.turn,
		Category:  c,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: s.clock(),
	})
}

func describeRewards(r enemy.Rewards) string {
	parts := []string{fmt.Sprintf("%d gold", r.Gold), fmt.Sprintf("%d XP", r.XP)}
	if r.BonusXP > 0 {
		parts = append(parts, fmt.Sprintf("%d bonus XP", r.BonusXP))
	}
	if r.Prestige > 0 {
		parts = append(parts, fmt.Sprintf("%d prestige", r.Prestige))
	}
	for _, item := range r.Loot {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.ItemID))
	}
	if r.UniqueLoot != "" {
		parts = append(parts, r.UniqueLoot)
	}
	return strings.Join(parts, ", ")
}
