package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/class"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/enemy"
)

func registry(t require.TestingT) *condition.Registry {
	reg, err := condition.Default()
	require.NoError(t, err)
	return reg
}

func strategies(t require.TestingT) *ai.Strategies {
	s, err := ai.DefaultStrategies()
	require.NoError(t, err)
	return s
}

func player(t require.TestingT, a combat.Archetype, level int) *combat.Combatant {
	table, err := class.Default()
	require.NoError(t, err)
	p, err := table.NewPlayer(class.PlayerSpec{Class: a, Level: level}, registry(t))
	require.NoError(t, err)
	return p
}

func foe(t require.TestingT, typ string, p *combat.Combatant, profile combat.Profile) *combat.Combatant {
	cat, err := enemy.DefaultCatalog()
	require.NoError(t, err)
	cat.Variance = 0
	e, err := enemy.NewFactory(cat, registry(t), nil).Create(enemy.Descriptor{
		Type: typ, Stage: 1, Profile: profile, Player: enemy.StatsOf(p),
	}, dice.NewScriptedSource(nil, nil))
	require.NoError(t, err)
	return e
}

// flat returns a model with no jitter.
func flat(t require.TestingT) *ai.Model {
	return ai.NewModel(strategies(t), dice.NewScriptedSource(nil, nil), nil)
}

func scoreOf(d ai.Decision, name string) (float64, bool) {
	for _, s := range d.Scores {
		if s.Action.String() == name {
			return s.Score, true
		}
	}
	return 0, false
}

func TestTagsFor(t *testing.T) {
	s := strategies(t)
	healthy := ai.Context{PlayerClass: combat.Warrior, EnemyHealthy: true}
	low := ai.Context{PlayerClass: combat.Warrior, EnemyLow: true}

	assert.Equal(t, []ai.Tag{ai.PreferStatusEffects, ai.Outlast}, s.TagsFor(enemy.TypeKnoll, healthy))
	assert.Equal(t, []ai.Tag{ai.PreferStatusEffects, ai.AvoidDirectConfrontation, ai.Outlast}, s.TagsFor(enemy.TypeKnoll, low))
	assert.Equal(t, []ai.Tag{ai.PreferStatusEffects, ai.AvoidDirectConfrontation}, s.TagsFor(enemy.TypeGoblin, low), "no duplicates")
	assert.Equal(t,
		[]ai.Tag{ai.PreferInterruption, ai.PrioritizeAggression, ai.PrioritizeControl},
		s.TagsFor(enemy.TypeGladiatorWarrior, ai.Context{PlayerClass: combat.Mage}))
	assert.Empty(t, s.TagsFor("", ai.Context{PlayerClass: combat.Archetype("bard")}))
}

func TestStrategies_Bonus(t *testing.T) {
	s := strategies(t)
	assert.Equal(t, 25, s.Bonus([]ai.Tag{ai.PreferStatusEffects}, combat.TraitStatus|combat.TraitDamaging))
	assert.Equal(t, 25, s.Bonus([]ai.Tag{ai.PreferInterruption, ai.PrioritizeControl}, combat.TraitControl))
	assert.Zero(t, s.Bonus([]ai.Tag{ai.PreferStatusEffects}, combat.TraitDefensive))
	assert.Zero(t, s.Bonus(nil, combat.TraitStatus))
}

func TestLoadStrategies_RejectsBadData(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "counters: []\nbogus: 1\n",
		"unknown tag":       "counters:\n  - class: warrior\n    tags: [berserk]\n",
		"enemy class":       "counters:\n  - class: goblin\n    tags: [outlast]\n",
		"unknown condition": "counters:\n  - class: warrior\n    when: raining\n    tags: [outlast]\n",
		"empty tags":        "refinements:\n  - enemy: goblin\n    class: mage\n    tags: []\n",
		"unknown trait":     "rules:\n  - tag: outlast\n    trait: sneaky\n    bonus: 5\n",
	}
	for name, data := range cases {
		_, err := ai.LoadStrategies([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestBuildContext(t *testing.T) {
	p := player(t, combat.Warrior, 3)
	e := foe(t, enemy.TypeGoblin, p, combat.ProfileNormal)

	ctx := ai.BuildContext(e, p)
	assert.Equal(t, combat.Warrior, ctx.PlayerClass)
	assert.True(t, ctx.PlayerHealthy)
	assert.False(t, ctx.PlayerLow)
	assert.True(t, ctx.PlayerHeavyReady)
	assert.True(t, ctx.PlayerEliteReady)
	assert.False(t, ctx.PlayerHasEffects)
	assert.True(t, ctx.EnemyHealthy)
	assert.Empty(t, ctx.Tags)

	src := dice.NewScriptedSource(nil, nil)
	require.True(t, p.HeavyAttack(combat.Context{Src: src, Target: e}).Success)
	_, err := p.ApplyStatus(condition.Application{Kind: condition.Poison, Duration: 3, Source: string(combat.SmallHumanoid), Magnitude: 1})
	require.NoError(t, err)
	p.SetHP(p.MaxHP / 5)

	ctx = ai.BuildContext(e, p)
	assert.True(t, ctx.PlayerLow)
	assert.True(t, ctx.PlayerHeavyOnCooldown)
	assert.False(t, ctx.PlayerHeavyReady)
	assert.True(t, ctx.PlayerHasEffects)
}

func TestBuildContext_NoEliteBelowLevelThree(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	ctx := ai.BuildContext(foe(t, enemy.TypeGoblin, p, combat.ProfileNormal), p)
	assert.False(t, ctx.PlayerEliteReady)
	assert.False(t, ctx.PlayerEliteOnCooldown)
}

func TestDecide_GoblinOpensWithPoison(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	e := foe(t, enemy.TypeGoblin, p, combat.ProfileNormal)

	d, err := flat(t).Decide(e, p)
	require.NoError(t, err)
	assert.Equal(t, combat.CooldownPoisonedBlade, d.Action.Ability)
	assert.Len(t, d.Scores, 5)
	blade, _ := scoreOf(d, "poisoned_blade")
	assert.Equal(t, 45.0, blade)
	dirt, _ := scoreOf(d, "dirty_fighting")
	assert.Equal(t, 40.0, dirt)
	def, _ := scoreOf(d, "defend")
	assert.Equal(t, 10.0, def)
}

func TestDecide_GoblinBlindsAPoisonedTarget(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	e := foe(t, enemy.TypeGoblin, p, combat.ProfileNormal)
	_, err := p.ApplyStatus(condition.Application{Kind: condition.Poison, Duration: 3, Source: string(combat.SmallHumanoid), Magnitude: 1})
	require.NoError(t, err)

	d, err := flat(t).Decide(e, p)
	require.NoError(t, err)
	assert.Equal(t, combat.CooldownDirtyFighting, d.Action.Ability)
}

func TestDecide_FinishesALowPlayer(t *testing.T) {
	p := player(t, combat.Rogue, 1)
	e := foe(t, enemy.TypeGoblin, p, combat.ProfileNormal)
	require.NoError(t, e.Cooldowns().Restore(map[combat.Cooldown]int{
		combat.CooldownPoisonedBlade: 2, combat.CooldownDirtyFighting: 2,
	}))
	p.SetHP(10)

	d, err := flat(t).Decide(e, p)
	require.NoError(t, err)
	assert.Equal(t, combat.ActionLight, d.Action.Kind)
	attack, _ := scoreOf(d, "attack")
	assert.Equal(t, 30.0, attack)
}

func TestDecide_StealthedPlayerLeavesOnlyUntargetedActions(t *testing.T) {
	p := player(t, combat.Rogue, 3)
	e := foe(t, enemy.TypeGoblin, p, combat.ProfileNormal)
	require.True(t, p.Elite(combat.Context{Src: dice.NewScriptedSource(nil, nil), Target: e}).Success)
	require.True(t, p.Untargetable())

	d, err := flat(t).Decide(e, p)
	require.NoError(t, err)
	assert.True(t, d.NoTarget)
	assert.Equal(t, combat.ActionDefend, d.Action.Kind)
	for _, s := range d.Scores {
		assert.False(t, s.Action.Traits.Has(combat.TraitTargeted), s.Action.String())
	}
}

func TestDecide_AggressiveGladiatorExecutes(t *testing.T) {
	p := player(t, combat.Warrior, 3)
	e := foe(t, enemy.TypeGladiatorWarrior, p, combat.ProfileAggressive)
	p.SetHP(p.MaxHP / 5)

	d, err := flat(t).Decide(e, p)
	require.NoError(t, err)
	assert.Equal(t, combat.CooldownExecution, d.Action.Ability)
	assert.Equal(t, combat.ProfileAggressive, d.Context.Profile)
}

func TestDecide_NoMovesLeft(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	e := foe(t, enemy.TypeGoblin, p, combat.ProfileNormal)
	require.True(t, e.Defend().Success)

	_, err := flat(t).Decide(e, p)
	assert.ErrorIs(t, err, ai.ErrNoAction)
}

func TestDecide_AlwaysPicksALegalAction(t *testing.T) {
	types := []string{enemy.TypeGoblin, enemy.TypeKnoll, enemy.TypeGiantLizard, enemy.TypeGladiatorWarrior}
	rapid.Check(t, func(rt *rapid.T) {
		p := player(rt, rapid.SampledFrom(combat.PlayerArchetypes).Draw(rt, "class"), rapid.IntRange(1, 5).Draw(rt, "level"))
		e := foe(rt, rapid.SampledFrom(types).Draw(rt, "type"), p,
			rapid.SampledFrom([]combat.Profile{combat.ProfileNormal, combat.ProfileAggressive}).Draw(rt, "profile"))
		p.SetHP(rapid.IntRange(1, p.MaxHP).Draw(rt, "player_hp"))
		e.SetHP(rapid.IntRange(1, e.MaxHP).Draw(rt, "enemy_hp"))
		cds := map[combat.Cooldown]int{}
		for _, k := range e.Cooldowns().Keys() {
			cds[k] = rapid.IntRange(0, 3).Draw(rt, string(k))
		}
		require.NoError(rt, e.Cooldowns().Restore(cds))

		m := ai.NewModel(strategies(rt), dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil)
		d, err := m.Decide(e, p)
		require.NoError(rt, err)
		assert.True(rt, e.CanUse(d.Action), d.Action.String())
		for _, s := range d.Scores {
			assert.LessOrEqual(rt, s.Score, d.Scores[indexOf(d, d.Action)].Score)
		}
	})
}

func indexOf(d ai.Decision, a combat.Action) int {
	for i, s := range d.Scores {
		if s.Action == a {
			return i
		}
	}
	return -1
}

func TestNewModel_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ai.NewModel(nil, dice.NewScriptedSource(nil, nil), nil) })
	assert.Panics(t, func() { ai.NewModel(strategies(t), nil, nil) })
}
