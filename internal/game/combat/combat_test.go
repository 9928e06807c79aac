package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// plainBehavior is a minimal archetype: flat strikes and block-style mitigation.
type plainBehavior struct {
	Defends int `json:"defends"`
}

func (b *plainBehavior) Cooldowns() []combat.Cooldown { return []combat.Cooldown{combat.CooldownEndure} }
func (b *plainBehavior) EliteCooldown(*combat.Combatant) combat.Cooldown {
	return combat.CooldownEndure
}
func (b *plainBehavior) Reset(*combat.Combatant) { b.Defends = 0 }
func (b *plainBehavior) LightAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	return combat.Strike{Hits: []int{c.Attack()}, Verb: "hits"}
}
func (b *plainBehavior) HeavyAttack(c *combat.Combatant, _ combat.Context) combat.Strike {
	return combat.Strike{Hits: []int{2 * c.Attack()}, Verb: "smashes"}
}
func (b *plainBehavior) Defend(c *combat.Combatant) string {
	b.Defends++
	return c.Name + " braces"
}
func (b *plainBehavior) Elite(c *combat.Combatant, _ combat.Context) combat.ActionResult {
	c.Cooldowns().Set(combat.CooldownEndure, 5)
	return combat.ActionResult{Message: c.Name + " roars"}
}
func (b *plainBehavior) Mitigate(c *combat.Combatant, raw int, _ combat.Context) combat.Mitigation {
	if c.IsDefending() && raw > 0 {
		return combat.Mitigation{Final: max(1, raw-c.TotalDefense())}
	}
	return combat.Mitigation{Final: raw}
}
func (b *plainBehavior) StartTurn(*combat.Combatant, bool) []string { return nil }
func (b *plainBehavior) OnDamaged(*combat.Combatant) []string    { return nil }

func registry(t require.TestingT) *condition.Registry {
	reg, err := condition.Default()
	require.NoError(t, err)
	return reg
}

func newFighter(t require.TestingT, level int) *combat.Combatant {
	moves := 2
	if level == 1 {
		moves = 1
	}
	c, err := combat.New(combat.Spec{
		ID: "p1", Kind: combat.KindPlayer, Name: "Aric", Archetype: combat.Warrior,
		Level: level, MaxHP: 100, BaseAttack: 10, Defense: 10, BaseInitiative: 12,
		MovesPerTurn: moves, Potions: 3,
	}, &plainBehavior{}, registry(t))
	require.NoError(t, err)
	return c
}

func ctx(target *combat.Combatant) combat.Context {
	return combat.Context{Src: dice.NewScriptedSource(nil, []float64{0.5}), Target: target}
}

func TestNew_RejectsInvalidSpecs(t *testing.T) {
	reg := registry(t)
	base := combat.Spec{Kind: combat.KindPlayer, Name: "x", Archetype: combat.Warrior, Level: 1, MaxHP: 10, MovesPerTurn: 1}

	cases := map[string]func(s *combat.Spec){
		"enemy archetype for player": func(s *combat.Spec) { s.Archetype = combat.Gladiator },
		"player archetype for enemy": func(s *combat.Spec) { s.Kind = combat.KindEnemy },
		"zero hp":                    func(s *combat.Spec) { s.MaxHP = 0 },
		"zero moves":                 func(s *combat.Spec) { s.MovesPerTurn = 0 },
		"zero level":                 func(s *combat.Spec) { s.Level = 0 },
		"negative attack":            func(s *combat.Spec) { s.BaseAttack = -1 },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			spec := base
			mutate(&spec)
			_, err := combat.New(spec, &plainBehavior{}, reg)
			assert.Error(t, err)
		})
	}
}

func TestParseCommand(t *testing.T) {
	for cmd, want := range map[string]combat.ActionKind{
		"attack": combat.ActionLight, "heavy_attack": combat.ActionHeavy,
		"defend": combat.ActionDefend, "heal": combat.ActionHeal, "elite": combat.ActionElite,
	} {
		got, err := combat.ParseCommand(cmd)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, cmd, got.String())
	}
	_, err := combat.ParseCommand("flee")
	assert.Error(t, err)
}

func TestActionKind_Cost(t *testing.T) {
	assert.Equal(t, 0, combat.ActionUnknown.Cost())
	assert.Equal(t, 1, combat.ActionLight.Cost())
	assert.Equal(t, 2, combat.ActionElite.Cost())
}

func TestLightAttack_UsesAttackPlusWeapon(t *testing.T) {
	c := newFighter(t, 1)
	c.Equipment.WeaponBonus = 4
	res := c.LightAttack(ctx(nil))
	require.True(t, res.Success)
	assert.Equal(t, 14, res.Damage)
	assert.Equal(t, 0, c.RemainingMoves())
}

func TestLightAttack_ExposeCritIsConsumed(t *testing.T) {
	c := newFighter(t, 1)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.Expose, Source: "rogue"})
	require.NoError(t, err)

	res := c.LightAttack(ctx(nil))
	assert.True(t, res.Critical)
	assert.Equal(t, 15, res.Damage, "floor(10 * 1.5)")
	assert.False(t, c.Statuses().Has(condition.Expose))

	c.StartTurn()
	res = c.LightAttack(ctx(nil))
	assert.False(t, res.Critical)
	assert.Equal(t, 10, res.Damage)
}

func TestHeavyAttack_LockoutLastsExactlyOneTurn(t *testing.T) {
	c := newFighter(t, 3)
	c.StartTurn()
	res := c.HeavyAttack(ctx(nil))
	require.True(t, res.Success)
	assert.Equal(t, 20, res.Damage)
	assert.Equal(t, 2, c.Cooldowns().Get(combat.CooldownHeavy))

	c.StartTurn()
	for _, k := range []combat.ActionKind{combat.ActionLight, combat.ActionHeavy, combat.ActionElite} {
		assert.False(t, c.CanPerform(k), "%s must be locked the turn after a heavy attack", k)
	}
	assert.True(t, c.CanPerform(combat.ActionDefend))

	c.StartTurn()
	for _, k := range []combat.ActionKind{combat.ActionLight, combat.ActionHeavy, combat.ActionElite} {
		assert.True(t, c.CanPerform(k), "%s must be available again", k)
	}
}

func TestElite_FailsBelowLevelThree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 2).Draw(rt, "level")
		c := newFighter(rt, level)
		c.StartTurn()
		res := c.Elite(ctx(nil))
		assert.False(rt, res.Success)
		assert.Equal(rt, c.MovesPerTurn(), c.RemainingMoves(), "failed elite must not spend moves")
	})
}

func TestElite_ConsumesBothMovesAndSetsCooldown(t *testing.T) {
	c := newFighter(t, 3)
	c.StartTurn()
	res := c.Elite(ctx(nil))
	require.True(t, res.Success)
	assert.Equal(t, combat.ActionElite, res.Action.Kind)
	assert.Equal(t, 0, c.RemainingMoves())
	assert.Equal(t, 5, c.Cooldowns().Get(combat.CooldownEndure))
	assert.False(t, c.CanPerform(combat.ActionElite))
}

func TestDefend_BlockMitigation(t *testing.T) {
	c := newFighter(t, 1)
	require.True(t, c.Defend().Success)
	out := c.TakeDamage(15, ctx(nil))
	assert.Equal(t, 5, out.Final, "max(1, 15-10)")
	assert.Equal(t, 95, c.HP())

	c.StartTurn()
	assert.False(t, c.IsDefending(), "defending clears at the next turn start")
	out = c.TakeDamage(15, ctx(nil))
	assert.Equal(t, 15, out.Final)
}

func TestHeal_RestoresFortyPercentClamped(t *testing.T) {
	c := newFighter(t, 1)
	c.SetHP(30)
	res := c.Heal()
	require.True(t, res.Success)
	assert.Equal(t, 40, res.Healed)
	assert.Equal(t, 70, c.HP())
	assert.Equal(t, 2, c.Potions)
	assert.Equal(t, 2, c.Cooldowns().Get(combat.CooldownHeal))

	c.StartTurn()
	assert.False(t, c.Heal().Success, "heal is on cooldown")
	c.StartTurn()
	res = c.Heal()
	require.True(t, res.Success)
	assert.Equal(t, 30, res.Healed, "clamped to max HP")
	assert.Equal(t, 100, c.HP())
}

func TestHeal_ReducedByToxicVenom(t *testing.T) {
	c := newFighter(t, 1)
	c.SetHP(10)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.ToxicVenom, Duration: 5, Source: "large_beast", Magnitude: 1})
	require.NoError(t, err)
	res := c.Heal()
	assert.Equal(t, 20, res.Healed)
}

func TestHeal_RequiresPotion(t *testing.T) {
	c := newFighter(t, 1)
	c.Potions = 0
	assert.False(t, c.CanPerform(combat.ActionHeal))
	assert.False(t, c.Heal().Success)
}

func TestStun_BlocksAttacksOnNextTurn(t *testing.T) {
	c := newFighter(t, 1)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.Stun, Duration: 1, Source: "large_beast"})
	require.NoError(t, err)

	report := c.StartTurn()
	assert.True(t, report.LockedOut)
	assert.False(t, c.CanPerform(combat.ActionLight))
	assert.False(t, c.Statuses().Has(condition.Stun))

	c.StartTurn()
	assert.True(t, c.CanPerform(combat.ActionLight))
}

func TestChill_ExtendsRunningCooldowns(t *testing.T) {
	c := newFighter(t, 3)
	c.StartTurn()
	require.True(t, c.HeavyAttack(ctx(nil)).Success)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.Chill, Duration: 1, Source: "mage"})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Cooldowns().Get(combat.CooldownHeavy))
	assert.Equal(t, 0, c.Cooldowns().Get(combat.CooldownHeal), "idle cooldowns stay at zero")
}

func TestBlinded_CanMiss(t *testing.T) {
	c := newFighter(t, 1)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.Blinded, Duration: 2, Source: "small_humanoid"})
	require.NoError(t, err)
	res := c.LightAttack(combat.Context{Src: dice.NewScriptedSource(nil, []float64{0.1})})
	assert.True(t, res.Success)
	assert.True(t, res.Missed)
	assert.Zero(t, res.Damage)
}

func TestStatusTick_DamagesAtTurnStart(t *testing.T) {
	c := newFighter(t, 1)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.Burn, Duration: 2, Source: "mage", Magnitude: 12})
	require.NoError(t, err)
	report := c.StartTurn()
	require.Len(t, report.Ticks, 1)
	assert.Equal(t, 12, report.Ticks[0].Damage)
	assert.Equal(t, 88, c.HP())
}

func TestStatusTick_CanKill(t *testing.T) {
	c := newFighter(t, 1)
	c.SetHP(5)
	_, err := c.ApplyStatus(condition.Application{Kind: condition.Burn, Duration: 2, Source: "mage", Magnitude: 12})
	require.NoError(t, err)
	report := c.StartTurn()
	assert.True(t, report.Died)
	assert.False(t, c.IsAlive())
	assert.Panics(t, func() { c.StartTurn() })
}

func TestFailedAction_LeavesStateUnchanged(t *testing.T) {
	c := newFighter(t, 1)
	require.True(t, c.LightAttack(ctx(nil)).Success)
	before, err := c.Capture()
	require.NoError(t, err)

	for _, kind := range []combat.ActionKind{combat.ActionLight, combat.ActionHeavy, combat.ActionDefend, combat.ActionHeal, combat.ActionElite} {
		res := c.Perform(combat.Action{Kind: kind}, ctx(nil))
		assert.False(t, res.Success, "%s with no moves left", kind)
		after, err := c.Capture()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	}
}

func TestTakeDamage_OnDefeatedPanics(t *testing.T) {
	c := newFighter(t, 1)
	out := c.TakeDamage(500, ctx(nil))
	assert.False(t, out.Alive)
	assert.Equal(t, 0, c.HP())
	assert.Panics(t, func() { c.TakeDamage(1, ctx(nil)) })
}

func TestResetForCombat_RestoresBaseline(t *testing.T) {
	c := newFighter(t, 3)
	c.StartTurn()
	c.HeavyAttack(ctx(nil))
	_, _ = c.ApplyStatus(condition.Application{Kind: condition.Burn, Duration: 2, Source: "mage", Magnitude: 1})
	c.Initiative = 99
	c.SetHP(40)

	c.ResetForCombat()
	assert.Equal(t, 40, c.HP(), "HP carries between combats")
	assert.Equal(t, c.MovesPerTurn(), c.RemainingMoves())
	assert.False(t, c.AttackLocked())
	assert.Zero(t, c.Statuses().Len())
	assert.False(t, c.Cooldowns().AnyActive())
	assert.Equal(t, c.BaseInitiative, c.Initiative)
	assert.Zero(t, c.Turns())
}

func TestCaptureRestore_RoundTrip(t *testing.T) {
	c := newFighter(t, 3)
	c.StartTurn()
	c.Defend()
	c.HeavyAttack(ctx(nil))
	_, _ = c.ApplyStatus(condition.Application{Kind: condition.Burn, Duration: 2, Source: "mage", Magnitude: 12})
	c.TakeDamage(7, ctx(nil))
	state, err := c.Capture()
	require.NoError(t, err)

	fresh := newFighter(t, 3)
	require.NoError(t, fresh.Restore(state))
	restored, err := fresh.Capture()
	require.NoError(t, err)
	assert.Equal(t, state, restored)
	assert.Equal(t, 1, fresh.Behavior().(*plainBehavior).Defends)
}

func TestRestore_RejectsOtherArchetype(t *testing.T) {
	c := newFighter(t, 1)
	state, err := c.Capture()
	require.NoError(t, err)
	state.Archetype = combat.Mage
	assert.Error(t, newFighter(t, 1).Restore(state))
}

func TestPropertyCombatant_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 5).Draw(rt, "level")
		c := newFighter(rt, level)
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		wasDead := false
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps && c.IsAlive(); i++ {
			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				c.StartTurn()
			case 1:
				c.LightAttack(combat.Context{Src: src})
			case 2:
				c.HeavyAttack(combat.Context{Src: src})
			case 3:
				c.Defend()
			case 4:
				c.Heal()
			case 5:
				c.Elite(combat.Context{Src: src})
			case 6:
				c.TakeDamage(rapid.IntRange(-5, 40).Draw(rt, "dmg"), combat.Context{Src: src})
			}
			assert.GreaterOrEqual(rt, c.HP(), 0)
			assert.LessOrEqual(rt, c.HP(), c.MaxHP)
			assert.GreaterOrEqual(rt, c.RemainingMoves(), 0)
			assert.LessOrEqual(rt, c.RemainingMoves(), c.MovesPerTurn())
			for k, v := range c.Cooldowns().Map() {
				assert.GreaterOrEqual(rt, v, 0, "cooldown %s", k)
			}
			assert.Equal(rt, c.HP() > 0, c.IsAlive())
			if wasDead {
				assert.False(rt, c.IsAlive(), "death is one-directional")
			}
			wasDead = !c.IsAlive()
		}
	})
}
