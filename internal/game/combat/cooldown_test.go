package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

func TestNewCooldowns_RejectsUnknownAndDuplicate(t *testing.T) {
	_, err := combat.NewCooldowns(combat.CooldownHeavy, "meteor")
	assert.Error(t, err)
	_, err = combat.NewCooldowns(combat.CooldownHeavy, combat.CooldownHeavy)
	assert.Error(t, err)
}

func TestCooldowns_UnregisteredKeyPanics(t *testing.T) {
	cd, err := combat.NewCooldowns(combat.CooldownHeavy)
	require.NoError(t, err)
	assert.Panics(t, func() { cd.Set(combat.CooldownFirestorm, 3) })
	assert.Panics(t, func() { cd.Get(combat.CooldownFirestorm) })
	assert.False(t, cd.Ready(combat.CooldownFirestorm))
}

func TestCooldowns_RestoreValidates(t *testing.T) {
	cd, err := combat.NewCooldowns(combat.CooldownHeavy, combat.CooldownHeal)
	require.NoError(t, err)
	assert.Error(t, cd.Restore(map[combat.Cooldown]int{combat.CooldownFirestorm: 1}))
	assert.Error(t, cd.Restore(map[combat.Cooldown]int{combat.CooldownHeavy: -1}))
	require.NoError(t, cd.Restore(map[combat.Cooldown]int{combat.CooldownHeavy: 2}))
	assert.Equal(t, 2, cd.Get(combat.CooldownHeavy))
}

func TestPropertyCooldowns_TickNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cd, err := combat.NewCooldowns(combat.CooldownHeavy, combat.CooldownHeal)
		require.NoError(rt, err)
		start := rapid.IntRange(-3, 6).Draw(rt, "start")
		cd.Set(combat.CooldownHeavy, start)
		ticks := rapid.IntRange(0, 10).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			cd.Tick()
		}
		want := max(0, max(0, start)-ticks)
		assert.Equal(rt, want, cd.Get(combat.CooldownHeavy))
		assert.Equal(rt, 0, cd.Get(combat.CooldownHeal))
	})
}

func TestMoves_SpendAndReset(t *testing.T) {
	m := combat.NewMoves(2)
	require.NoError(t, m.Spend(1))
	assert.Error(t, m.Spend(2))
	assert.Equal(t, 1, m.Remaining())
	m.Reset()
	assert.Equal(t, 2, m.Remaining())
	assert.Panics(t, func() { combat.NewMoves(0) })
}
