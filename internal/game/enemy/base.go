package enemy

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const defendPct = 50

// Enemy type keys.
const (
	TypeGoblin           = "goblin"
	TypeKnoll            = "knoll"
	TypeGiantLizard      = "giant_lizard"
	TypeGladiatorWarrior = "gladiator_warrior"
)

// Behavior is the full contract of an enemy's archetype behavior.
type Behavior interface {
	combat.Behavior
	combat.AbilityUser
	combat.Reactor
	ai.Tactician
	Rewards() Rewards
	Title() string
	Description() string
	// Flavor returns a random line of flavor text, or "" if the type has none.
	Flavor(src dice.Source) string
	// Line returns a random dialogue line for phase, or "" if the type is silent.
	Line(phase Phase, src dice.Source) string
}

// BehaviorOf returns c's enemy behavior.
func BehaviorOf(c *combat.Combatant) (Behavior, bool) {
	b, ok := c.Behavior().(Behavior)
	return b, ok
}

// Rewards are granted to the player for defeating the enemy.
type Rewards struct {
	Gold     int `json:"gold"`
	XP       int `json:"xp"`
	BonusXP  int `json:"bonus_xp,omitempty"`
	Prestige int `json:"prestige,omitempty"`
	// Loot was rolled from the enemy's loot table when it was created.
	Loot       []LootItem `json:"loot,omitempty"`
	UniqueLoot string     `json:"unique_loot,omitempty"`
}

// TotalXP returns XP plus BonusXP.
func (r Rewards) TotalXP() int { return r.XP + r.BonusXP }

type kind struct {
	abilities []combat.Cooldown
	build     func(b base) Behavior
}

var kinds = map[string]kind{
	TypeGoblin: {
		abilities: []combat.Cooldown{combat.CooldownPoisonedBlade, combat.CooldownDirtyFighting},
		build:     func(b base) Behavior { return &Goblin{base: b} },
	},
	TypeKnoll: {
		abilities: []combat.Cooldown{combat.CooldownSavageBite, combat.CooldownHowl, combat.CooldownPackTactics},
		build:     func(b base) Behavior { return &Knoll{base: b} },
	},
	TypeGiantLizard: {
		abilities: []combat.Cooldown{combat.CooldownTailWhip, combat.CooldownVenomSpit, combat.CooldownScaleHardening, combat.CooldownCrushingBite},
		build:     func(b base) Behavior { return &GiantLizard{base: b} },
	},
	TypeGladiatorWarrior: {
		abilities: []combat.Cooldown{combat.CooldownIronGuard, combat.CooldownEndurance, combat.CooldownExecution, combat.CooldownWarriorShout},
		build:     func(b base) Behavior { return &GladiatorWarrior{base: b} },
	},
}

// base carries what every enemy shares: catalog data, the difficulty profile,
// damage variance, and the rewards rolled at creation. Only Reward is
// serialized; the rest is rebuilt by the factory.
type base struct {
	entry    *Entry
	profile  combat.Profile
	variance float64
	actions  []combat.Action

	Reward Rewards `json:"rewards"`
}

func (b *base) Type() string            { return b.entry.Type }
func (b *base) Profile() combat.Profile { return b.profile }
func (b *base) Rewards() Rewards        { return b.Reward }
func (b *base) Title() string           { return b.entry.Title }
func (b *base) Description() string     { return b.entry.Description }

func (b *base) Flavor(src dice.Source) string { return pick(b.entry.Flavor, src) }

func (b *base) Line(phase Phase, src dice.Source) string {
	d := b.entry.Dialogue
	if d == nil {
		return ""
	}
	switch phase {
	case PhaseIntro:
		return pick(d.Intro, src)
	case PhaseMid:
		return pick(d.Mid, src)
	case PhaseLow:
		return pick(d.Low, src)
	case PhaseDefeat:
		return pick(d.Defeat, src)
	}
	return ""
}

func (b *base) Cooldowns() []combat.Cooldown {
	out := make([]combat.Cooldown, 0, len(b.actions))
	for _, a := range b.actions {
		out = append(out, a.Ability)
	}
	return out
}

func (b *base) EliteCooldown(*combat.Combatant) combat.Cooldown { return "" }

func (b *base) Abilities() []combat.Action { return b.actions }

func (b *base) AbilityReady(*combat.Combatant, combat.Cooldown) bool { return true }

func (b *base) LightAttack(c *combat.Combatant, ctx combat.Context) combat.Strike {
	return combat.Strike{Hits: []int{b.vary(ctx, c.Attack())}, Verb: "attacks"}
}

func (b *base) HeavyAttack(c *combat.Combatant, ctx combat.Context) combat.Strike {
	return combat.Strike{Hits: []int{b.vary(ctx, 2*c.Attack())}, Verb: "lands a heavy blow"}
}

func (b *base) Defend(c *combat.Combatant) string {
	return fmt.Sprintf("%s takes a defensive stance", c.Name)
}

func (b *base) Elite(c *combat.Combatant, _ combat.Context) combat.ActionResult {
	panic(fmt.Sprintf("enemy: %s has no elite skill", c.Name))
}

func (b *base) Mitigate(c *combat.Combatant, raw int, _ combat.Context) combat.Mitigation {
	return b.mitigate(c, raw, 0)
}

func (b *base) StartTurn(*combat.Combatant, bool) []string { return nil }

func (b *base) OnDamaged(*combat.Combatant) []string { return nil }

// React answers a player command with one of the catalog's reaction lines.
func (b *base) React(_ *combat.Combatant, action combat.ActionKind, src dice.Source) string {
	return pick(b.entry.Reactions[action.String()], src)
}

// mitigate removes natural armor, then half of defense while defending.
//
// Postcondition: a positive raw never mitigates below 1.
func (b *base) mitigate(c *combat.Combatant, raw, armor int) combat.Mitigation {
	m := combat.Mitigation{Final: raw}
	if raw <= 0 {
		return m
	}
	if armor > 0 {
		m.Final = max(1, raw-armor)
		m.Notes = append(m.Notes, fmt.Sprintf("natural armor absorbs %d", raw-m.Final))
	}
	if c.IsDefending() {
		before := m.Final
		m.Final = max(1, m.Final-combat.Pct(c.TotalDefense(), defendPct))
		if blocked := before - m.Final; blocked > 0 {
			m.Notes = append(m.Notes, fmt.Sprintf("guard stops %d", blocked))
		}
	}
	return m
}

func (b *base) vary(ctx combat.Context, dmg int) int {
	return dice.Vary(ctx.Src, dmg, b.variance)
}

// hit builds a damaging ability result from per-hit damage.
func hit(msg string, hits ...int) combat.ActionResult {
	total := 0
	for _, h := range hits {
		total += h
	}
	return combat.ActionResult{Damage: total, Hits: hits, Message: fmt.Sprintf("%s for %d damage", msg, total)}
}

func afflict(kind condition.Kind, turns int, source combat.Archetype, magnitude int) condition.Application {
	return condition.Application{Kind: kind, Duration: turns, Source: string(source), Magnitude: magnitude}
}

// selfApply attaches app to c, returning the log message or the error text.
func selfApply(c *combat.Combatant, app condition.Application) string {
	msg, err := c.ApplyStatus(app)
	if err != nil {
		return err.Error()
	}
	return msg
}

func pick(lines []string, src dice.Source) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	}
	return lines[src.Intn(len(lines))]
}
