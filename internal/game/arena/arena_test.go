package arena_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/arena"
	"github.com/cory-johannsen/arena/internal/game/class"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/enemy"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

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

func foe(t require.TestingT, typ string, p *combat.Combatant) *combat.Combatant {
	cat, err := enemy.DefaultCatalog()
	require.NoError(t, err)
	e, err := enemy.NewFactory(cat, registry(t), nil).Create(enemy.Descriptor{
		Type: typ, Stage: 1, Profile: combat.ProfileNormal, Player: enemy.StatsOf(p),
	}, dice.NewScriptedSource(nil, []float64{0.99}))
	require.NoError(t, err)
	return e
}

func session(t require.TestingT, p, e *combat.Combatant, src dice.Source) *arena.Session {
	s, err := arena.NewSession(p, e, arena.Options{
		Src:        src,
		Strategies: strategies(t),
		Clock:      fixedClock,
	})
	require.NoError(t, err)
	return s
}

func count(log []arena.Event, c arena.Category) int {
	return len(arena.Filter(log, c))
}

func TestSession_WarriorBeatsGoblin(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(1))

	result, err := s.Simulate(arena.LightOnly)
	require.NoError(t, err)
	assert.Equal(t, arena.ResultVictory, result)
	assert.Equal(t, arena.StateEnded, s.State())
	assert.True(t, p.IsAlive())
	assert.False(t, s.Enemy().IsAlive())

	log := s.Log()
	assert.Equal(t, 1, count(log, arena.CategoryCombatEnd))
	assert.Equal(t, 1, count(log, arena.CategoryRewards))
	assert.Equal(t, arena.CategoryRewards, log[len(log)-1].Category)

	r, ok := s.Rewards()
	require.True(t, ok)
	assert.Equal(t, 10, r.Gold)
	assert.Equal(t, 25, r.XP)

	st := s.Status()
	require.NotNil(t, st.Rewards)
	assert.Equal(t, 10, st.Rewards.Gold)
	assert.Equal(t, arena.ResultVictory, st.Result)
}

func TestSession_DrawAtTurnCeiling(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(2))

	result, err := s.Simulate(arena.DefendOnly)
	require.NoError(t, err)
	assert.Equal(t, arena.ResultDraw, result)
	assert.Equal(t, arena.DefaultTurnCeiling+1, s.Turn())

	log := s.Log()
	last := log[len(log)-1]
	assert.Equal(t, arena.CategoryCombatEnd, last.Category)
	assert.Equal(t, arena.DefaultTurnCeiling+1, last.Turn)
	assert.Zero(t, count(log, arena.CategoryRewards))
	_, ok := s.Rewards()
	assert.False(t, ok)
	assert.Equal(t, 2*arena.DefaultTurnCeiling, count(log, arena.CategoryTurnStart))
}

func TestSession_CustomTurnCeiling(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s, err := arena.NewSession(p, foe(t, enemy.TypeGoblin, p), arena.Options{
		TurnCeiling: 3,
		Src:         dice.NewSeededSource(3),
		Strategies:  strategies(t),
	})
	require.NoError(t, err)

	result, err := s.Simulate(arena.DefendOnly)
	require.NoError(t, err)
	assert.Equal(t, arena.ResultDraw, result)
	assert.Equal(t, 4, s.Turn())
}

func TestSession_HigherInitiativeActsFirst(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(4))
	require.NoError(t, s.Start())

	assert.Equal(t, arena.StatePlayerTurn, s.State())
	assert.Equal(t, 1, s.Turn())
	turns := arena.Filter(s.Log(), arena.CategoryTurnStart)
	require.Len(t, turns, 1)
	assert.Equal(t, "Warrior's turn", turns[0].Message)
	assert.Equal(t, []combat.ActionKind{combat.ActionLight, combat.ActionHeavy, combat.ActionDefend, combat.ActionHeal},
		s.PlayerAvailableActions())
}

func TestSession_TurnsAlternate(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(5))
	_, err := s.Simulate(arena.LightOnly)
	require.NoError(t, err)

	turns := arena.Filter(s.Log(), arena.CategoryTurnStart)
	require.NotEmpty(t, turns)
	for i, e := range turns {
		if i%2 == 0 {
			assert.Equal(t, "Warrior's turn", e.Message, "event %d", i)
			assert.Equal(t, i/2+1, e.Turn)
		} else {
			assert.Equal(t, "Goblin's turn", e.Message, "event %d", i)
		}
	}
}

func TestSession_InitiativeTiesAreFair(t *testing.T) {
	const trials = 1000
	p := player(t, combat.Warrior, 1)
	e := foe(t, enemy.TypeGoblin, p)
	e.BaseInitiative = p.BaseInitiative
	strats := strategies(t)

	playerFirst := 0
	for i := range trials {
		s, err := arena.NewSession(p, e, arena.Options{Src: dice.NewSeededSource(uint64(i)), Strategies: strats})
		require.NoError(t, err)
		require.NoError(t, s.Start())
		if arena.Filter(s.Log(), arena.CategoryTurnStart)[0].Message == "Warrior's turn" {
			playerFirst++
		}
		p.SetHP(p.MaxHP)
		e.SetHP(e.MaxHP)
	}
	assert.InDelta(t, trials/2, playerFirst, trials/10)
}

func TestSession_RejectedActionChangesNothing(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(6))
	require.NoError(t, s.Start())
	before, err := s.Snapshot()
	require.NoError(t, err)

	res, err := s.ExecutePlayerAction(combat.ActionElite)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "level 3")

	res, err = s.ExecuteCommand("dance")
	require.NoError(t, err)
	assert.False(t, res.Success)

	after, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before.Player, after.Player)
	assert.Equal(t, before.Enemy, after.Enemy)
	assert.Equal(t, before.Turn, after.Turn)
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.RNG, after.RNG)
	assert.Len(t, after.Log, len(before.Log)+2)
	assert.Equal(t, 2, count(after.Log, arena.CategoryFailedAction))
}

func TestSession_LifecycleErrors(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(7))

	_, err := s.ExecutePlayerAction(combat.ActionLight)
	assert.ErrorIs(t, err, arena.ErrNotStarted)
	_, err = s.ExecuteCommand("attack")
	assert.ErrorIs(t, err, arena.ErrNotStarted)
	assert.Empty(t, s.PlayerAvailableActions())

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), arena.ErrAlreadyStarted)

	_, err = s.Simulate(arena.LightOnly)
	require.NoError(t, err)
	final := len(s.Log())
	res, err := s.ExecutePlayerAction(combat.ActionLight)
	require.NoError(t, err)
	assert.False(t, res.Success)
	res, err = s.ExecuteCommand("dance")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, s.Log(), final, "an ended combat's log is closed")
	assert.Empty(t, s.PlayerAvailableActions())
}

func TestNewSession_Validation(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	e := foe(t, enemy.TypeGoblin, p)
	opts := arena.Options{Src: dice.NewSeededSource(8), Strategies: strategies(t)}

	_, err := arena.NewSession(e, p, opts)
	assert.Error(t, err, "swapped sides")
	_, err = arena.NewSession(p, nil, opts)
	assert.Error(t, err)

	dead := foe(t, enemy.TypeGoblin, p)
	dead.SetHP(0)
	_, err = arena.NewSession(p, dead, opts)
	assert.Error(t, err)

	opts.TurnCeiling = -1
	_, err = arena.NewSession(p, e, opts)
	assert.Error(t, err)

	assert.Panics(t, func() { _, _ = arena.NewSession(p, e, arena.Options{Strategies: strategies(t)}) })
}

func TestSession_SnapshotResumesIdentically(t *testing.T) {
	build := func(seed uint64) (*arena.Session, *combat.Combatant) {
		p := player(t, combat.Rogue, 2)
		return session(t, p, foe(t, enemy.TypeKnoll, p), dice.NewSeededSource(seed)), p
	}

	orig, _ := build(9)
	require.NoError(t, orig.Start())
	for range 2 {
		if orig.State() != arena.StatePlayerTurn {
			break
		}
		_, err := orig.ExecutePlayerAction(arena.Greedy(orig, orig.PlayerAvailableActions()))
		require.NoError(t, err)
	}
	snap, err := orig.Snapshot()
	require.NoError(t, err)
	data, err := arena.MarshalSnapshot(snap)
	require.NoError(t, err)

	decoded, err := arena.UnmarshalSnapshot(data)
	require.NoError(t, err)
	resumed, _ := build(12345)
	require.NoError(t, resumed.Restore(decoded))
	assert.Equal(t, orig.ID(), resumed.ID())
	assert.Equal(t, orig.Status().Player, resumed.Status().Player)
	assert.Equal(t, orig.Status().Enemy, resumed.Status().Enemy)

	want, err := orig.Simulate(arena.Greedy)
	require.NoError(t, err)
	got, err := resumed.Simulate(arena.Greedy)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	render := func(log []arena.Event) []string {
		out := make([]string, len(log))
		for i, e := range log {
			out[i] = e.String()
		}
		return out
	}
	assert.Equal(t, render(orig.Log()), render(resumed.Log()))
}

func TestSession_RestoreRejectsMismatch(t *testing.T) {
	p := player(t, combat.Warrior, 1)
	s := session(t, p, foe(t, enemy.TypeGoblin, p), dice.NewSeededSource(10))
	require.NoError(t, s.Start())
	snap, err := s.Snapshot()
	require.NoError(t, err)

	m := player(t, combat.Mage, 1)
	other := session(t, m, foe(t, enemy.TypeGoblin, m), dice.NewSeededSource(10))
	assert.ErrorIs(t, other.Restore(snap), arena.ErrSnapshotMismatch)

	assert.ErrorIs(t, s.Restore(snap), arena.ErrAlreadyStarted)
}

func TestSession_GladiatorSpeaks(t *testing.T) {
	p := player(t, combat.Warrior, 5)
	s := session(t, p, foe(t, enemy.TypeGladiatorWarrior, p), dice.NewSeededSource(11))
	require.NoError(t, s.Start())

	intro := arena.Filter(s.Log(), arena.CategoryDialogue)
	require.NotEmpty(t, intro)
	assert.Equal(t, 0, intro[0].Turn)
}

func TestSession_EveryCombatTerminates(t *testing.T) {
	types := []string{enemy.TypeGoblin, enemy.TypeKnoll, enemy.TypeGiantLizard, enemy.TypeGladiatorWarrior}
	rapid.Check(t, func(rt *rapid.T) {
		p := player(rt, rapid.SampledFrom(combat.PlayerArchetypes).Draw(rt, "class"), rapid.IntRange(1, 5).Draw(rt, "level"))
		e := foe(rt, rapid.SampledFrom(types).Draw(rt, "type"), p)
		s := session(rt, p, e, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		strategy := rapid.SampledFrom([]string{"light_only", "defend_only", "greedy"}).Draw(rt, "strategy")

		result, err := s.Simulate(arena.Strategies[strategy])
		require.NoError(rt, err)
		require.Equal(rt, arena.StateEnded, s.State())
		assert.LessOrEqual(rt, s.Turn(), arena.DefaultTurnCeiling+1)

		log := s.Log()
		assert.Equal(rt, 1, count(log, arena.CategoryCombatEnd))
		switch result {
		case arena.ResultVictory:
			assert.False(rt, e.IsAlive())
			assert.True(rt, p.IsAlive())
			assert.Equal(rt, 1, count(log, arena.CategoryRewards))
		case arena.ResultDefeat:
			assert.False(rt, p.IsAlive())
			assert.Zero(rt, count(log, arena.CategoryRewards))
		case arena.ResultDraw:
			assert.True(rt, p.IsAlive() && e.IsAlive())
			assert.Equal(rt, arena.DefaultTurnCeiling+1, s.Turn())
		default:
			rt.Fatalf("unexpected result %q", result)
		}

		turns := arena.Filter(log, arena.CategoryTurnStart)
		for i := 1; i < len(turns); i++ {
			assert.NotEqual(rt, turns[i-1].Message, turns[i].Message, "turn %d", i)
		}
	})
}

func TestEngine_Registry(t *testing.T) {
	eng := arena.NewEngine()
	p := player(t, combat.Warrior, 1)
	s, err := eng.Start(p, foe(t, enemy.TypeGoblin, p), arena.Options{
		Src: dice.NewSeededSource(12), Strategies: strategies(t),
	})
	require.NoError(t, err)
	assert.Equal(t, arena.StatePlayerTurn, s.State())
	assert.Equal(t, 1, eng.Len())

	got, ok := eng.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Error(t, eng.Add(s))

	eng.End(s.ID())
	_, ok = eng.Get(s.ID())
	assert.False(t, ok)
	assert.Zero(t, eng.Len())
	eng.End("missing")
}
