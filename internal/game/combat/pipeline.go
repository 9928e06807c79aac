package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const (
	heavyCooldown = 2
	healCooldown  = 2
	healPercent   = 40
	critPercent   = 150
	// EliteMinLevel is the level at which elite skills unlock.
	EliteMinLevel = 3
)

// CanPerform reports whether kind is currently legal. It never mutates state.
//
// Postcondition: ActionElite requires Level >= EliteMinLevel and two remaining
// moves; ActionAbility always returns false (use CanUse).
func (c *Combatant) CanPerform(kind ActionKind) bool {
	if !c.IsAlive() {
		return false
	}
	moves := c.moves.Remaining()
	switch kind {
	case ActionLight:
		return moves >= kind.Cost() && !c.AttackLocked()
	case ActionHeavy:
		return moves >= kind.Cost() && !c.AttackLocked() && c.cooldowns.Ready(CooldownHeavy)
	case ActionDefend:
		return moves >= kind.Cost()
	case ActionHeal:
		return moves >= kind.Cost() && c.Potions > 0 && c.cooldowns.Ready(CooldownHeal)
	case ActionElite:
		if c.Level < EliteMinLevel || moves < kind.Cost() || c.AttackLocked() {
			return false
		}
		key := c.behavior.EliteCooldown(c)
		return key != "" && c.cooldowns.Ready(key)
	default:
		return false
	}
}

// CanUse reports whether action is currently legal, covering abilities.
func (c *Combatant) CanUse(action Action) bool {
	if action.Kind != ActionAbility {
		return c.CanPerform(action.Kind)
	}
	user, ok := c.behavior.(AbilityUser)
	if !ok || !c.IsAlive() || c.moves.Remaining() < 1 {
		return false
	}
	if !c.cooldowns.Ready(action.Ability) {
		return false
	}
	if action.Traits.Has(TraitDamaging) && c.AttackLocked() {
		return false
	}
	return user.AbilityReady(c, action.Ability)
}

// Actions returns every action the combatant could ever select: the base
// actions followed by any abilities.
func (c *Combatant) Actions() []Action {
	out := []Action{AttackAction, HeavyAction, DefendAction}
	if user, ok := c.behavior.(AbilityUser); ok {
		out = append(out, user.Abilities()...)
	}
	return out
}

// LightAttack performs the baseline attack.
//
// Postcondition: a failed result leaves the combatant unchanged.
func (c *Combatant) LightAttack(ctx Context) ActionResult {
	action := Action{Kind: ActionLight, Name: "attack", Traits: AttackAction.Traits}
	if !c.CanPerform(ActionLight) {
		return Failed(action, fmt.Sprintf("%s cannot attack right now", c.Name))
	}
	c.spend(ActionLight)
	if c.rollMiss(ctx) {
		return c.missed(action)
	}
	return c.land(action, c.behavior.LightAttack(c, ctx))
}

// HeavyAttack performs the heavy attack, putting it on cooldown and locking
// out damaging actions through the combatant's next turn.
//
// Postcondition: a failed result leaves the combatant unchanged.
func (c *Combatant) HeavyAttack(ctx Context) ActionResult {
	action := Action{Kind: ActionHeavy, Name: "heavy_attack", Traits: HeavyAction.Traits}
	if !c.CanPerform(ActionHeavy) {
		return Failed(action, fmt.Sprintf("%s cannot use a heavy attack right now", c.Name))
	}
	c.spend(ActionHeavy)
	c.cooldowns.Set(CooldownHeavy, heavyCooldown)
	c.lockPending = true
	if c.rollMiss(ctx) {
		return c.missed(action)
	}
	res := c.land(action, c.behavior.HeavyAttack(c, ctx))
	res.Message += " (cannot attack next turn)"
	return res
}

// Defend enters a defensive stance until the combatant's next turn start.
// Mitigation is evaluated when damage arrives, not here.
func (c *Combatant) Defend() ActionResult {
	action := DefendAction
	if !c.CanPerform(ActionDefend) {
		return Failed(action, fmt.Sprintf("%s cannot defend right now", c.Name))
	}
	c.spend(ActionDefend)
	c.defending = true
	return ActionResult{Action: action, Success: true, Message: c.behavior.Defend(c)}
}

// Heal drinks a potion, restoring a fixed share of MaxHP reduced by any
// healing-reduction effect.
//
// Postcondition: HP() <= MaxHP.
func (c *Combatant) Heal() ActionResult {
	action := Action{Kind: ActionHeal, Name: "heal", Traits: TraitDefensive}
	if !c.CanPerform(ActionHeal) {
		return Failed(action, fmt.Sprintf("%s cannot heal right now", c.Name))
	}
	c.spend(ActionHeal)
	c.Potions--
	c.cooldowns.Set(CooldownHeal, healCooldown)

	amount := pct(c.MaxHP, healPercent)
	if r := c.statuses.HealReduction(); r > 0 {
		amount -= int(float64(amount) * r)
	}
	before := c.hp
	c.SetHP(c.hp + amount)
	healed := c.hp - before
	return ActionResult{
		Action:  action,
		Success: true,
		Healed:  healed,
		Message: fmt.Sprintf("%s drinks a potion and recovers %d HP (%d potions left)", c.Name, healed, c.Potions),
	}
}

// Elite runs the archetype's elite skill, consuming two moves.
//
// Postcondition: the skill fails for any combatant below EliteMinLevel.
func (c *Combatant) Elite(ctx Context) ActionResult {
	action := Action{Kind: ActionElite, Name: "elite"}
	if !c.CanPerform(ActionElite) {
		if c.Level < EliteMinLevel {
			return Failed(action, fmt.Sprintf("%s has not unlocked an elite skill (level %d required)", c.Name, EliteMinLevel))
		}
		return Failed(action, fmt.Sprintf("%s cannot use an elite skill right now", c.Name))
	}
	c.spend(ActionElite)
	res := c.behavior.Elite(c, ctx)
	res.Action.Kind = ActionElite
	res.Success = true
	return res
}

// UseAbility resolves a signature ability and puts it on its cooldown.
//
// Postcondition: a failed result leaves the combatant unchanged.
func (c *Combatant) UseAbility(id Cooldown, ctx Context) ActionResult {
	action, ok := c.ability(id)
	if !ok {
		return Failed(Action{Kind: ActionAbility, Ability: id, Name: string(id)}, fmt.Sprintf("%s has no ability %q", c.Name, id))
	}
	if !c.CanUse(action) {
		return Failed(action, fmt.Sprintf("%s cannot use %s right now", c.Name, action.Name))
	}
	c.spend(ActionAbility)
	c.cooldowns.Set(id, action.CooldownTurns)
	if action.Traits.Has(TraitDamaging) && c.rollMiss(ctx) {
		return c.missed(action)
	}
	res := c.behavior.(AbilityUser).UseAbility(c, id, ctx)
	res.Action = action
	res.Success = true
	return res
}

// Perform dispatches action to the matching operation.
func (c *Combatant) Perform(action Action, ctx Context) ActionResult {
	switch action.Kind {
	case ActionLight:
		return c.LightAttack(ctx)
	case ActionHeavy:
		return c.HeavyAttack(ctx)
	case ActionDefend:
		return c.Defend()
	case ActionHeal:
		return c.Heal()
	case ActionElite:
		return c.Elite(ctx)
	case ActionAbility:
		return c.UseAbility(action.Ability, ctx)
	default:
		return Failed(action, fmt.Sprintf("%s cannot perform %s", c.Name, action))
	}
}

// TakeDamage applies the archetype's mitigation to raw and lowers HP.
//
// Precondition: the combatant must be alive.
// Postcondition: HP() >= 0; IsAlive() is false iff HP() == 0.
func (c *Combatant) TakeDamage(raw int, ctx Context) DamageOutcome {
	if !c.IsAlive() {
		panic(fmt.Sprintf("combat: TakeDamage precondition violated: %s is already defeated", c.Name))
	}
	if raw < 0 {
		raw = 0
	}
	m := c.behavior.Mitigate(c, raw, ctx)
	if m.Final < 0 {
		m.Final = 0
	}
	out := c.lose(m.Final)
	out.Raw = raw
	out.Evaded = m.Evaded
	out.Reflected = m.Reflected
	out.Counter = m.Counter
	out.Notes = append(m.Notes, out.Notes...)
	return out
}

// ApplyDirectDamage lowers HP by n without mitigation. Status ticks, reflection,
// and counter-attacks land this way.
//
// Precondition: the combatant must be alive.
func (c *Combatant) ApplyDirectDamage(n int) DamageOutcome {
	if !c.IsAlive() {
		panic(fmt.Sprintf("combat: ApplyDirectDamage precondition violated: %s is already defeated", c.Name))
	}
	if n < 0 {
		n = 0
	}
	out := c.lose(n)
	out.Raw = n
	return out
}

// StartTurn runs the turn-start bookkeeping: turn counter, cooldown tick,
// lockout carry-over, status ticks, move reset, defend reset, and the
// archetype's own turn-start rules.
//
// Precondition: the combatant must be alive.
// Postcondition: RemainingMoves() == MovesPerTurn() unless status damage killed it.
func (c *Combatant) StartTurn() TurnReport {
	if !c.IsAlive() {
		panic(fmt.Sprintf("combat: StartTurn precondition violated: %s is already defeated", c.Name))
	}
	c.turns++
	report := TurnReport{Turn: c.turns}
	c.cooldowns.Tick()

	// Stun is read before ticking so a one-turn stun covers this turn.
	c.lockActive = c.lockPending || c.statuses.BlocksAttacks()
	c.lockPending = false
	report.LockedOut = c.lockActive

	for _, t := range c.statuses.Tick() {
		tick := StatusTick{Kind: t.Kind, Expired: t.Expired}
		if t.Damage > 0 && c.IsAlive() {
			out := c.lose(t.Damage)
			tick.Damage = out.Final
			report.Notes = append(report.Notes, out.Notes...)
		}
		report.Ticks = append(report.Ticks, tick)
	}
	if !c.IsAlive() {
		report.Died = true
		return report
	}

	c.moves.Reset()
	wasDefending := c.defending
	c.defending = false
	report.Notes = append(report.Notes, c.behavior.StartTurn(c, wasDefending)...)
	return report
}

func (c *Combatant) spend(kind ActionKind) {
	if err := c.moves.Spend(kind.Cost()); err != nil {
		panic("combat: move accounting violated after gating: " + err.Error())
	}
}

func (c *Combatant) rollMiss(ctx Context) bool {
	p := c.statuses.MissChance()
	return p > 0 && dice.Chance(ctx.Src, p)
}

func (c *Combatant) missed(action Action) ActionResult {
	return ActionResult{
		Action:  action,
		Success: true,
		Missed:  true,
		Message: fmt.Sprintf("%s's %s misses", c.Name, action.Name),
	}
}

// land totals a strike, consuming expose for a critical.
func (c *Combatant) land(action Action, s Strike) ActionResult {
	crit := s.Critical
	if c.statuses.Consume(condition.Expose) {
		crit = true
	}
	hits := make([]int, len(s.Hits))
	total := s.Bonus
	for i, h := range s.Hits {
		if crit {
			h = pct(h, critPercent)
		}
		hits[i] = h
		total += h
	}
	msg := fmt.Sprintf("%s %s for %d damage", c.Name, s.Verb, total)
	if crit {
		msg += " (critical!)"
	}
	if len(s.Notes) > 0 {
		msg += "; " + strings.Join(s.Notes, "; ")
	}
	return ActionResult{
		Action:   action,
		Success:  true,
		Damage:   total,
		Hits:     hits,
		Critical: crit,
		Statuses: s.Statuses,
		Message:  msg,
	}
}

func (c *Combatant) lose(n int) DamageOutcome {
	c.SetHP(c.hp - n)
	out := DamageOutcome{Final: n, HP: c.hp, Alive: c.IsAlive()}
	if out.Alive && n > 0 {
		out.Notes = c.behavior.OnDamaged(c)
	}
	return out
}

func (c *Combatant) ability(id Cooldown) (Action, bool) {
	user, ok := c.behavior.(AbilityUser)
	if !ok {
		return Action{}, false
	}
	for _, a := range user.Abilities() {
		if a.Ability == id {
			return a, true
		}
	}
	return Action{}, false
}
