package ai

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Health thresholds on the HP ratio.
const (
	PlayerLowRatio     = 0.25
	PlayerHealthyRatio = 0.7
	EnemyLowRatio      = 0.3
	EnemyHealthyRatio  = 0.7
)

// Context is the snapshot the decision model scores against for one enemy turn.
type Context struct {
	PlayerClass   combat.Archetype
	PlayerHPRatio float64
	PlayerLow     bool
	PlayerHealthy bool
	// PlayerHeavyOnCooldown is set while the player's heavy attack is recharging.
	PlayerHeavyOnCooldown bool
	PlayerHealOnCooldown  bool
	PlayerEliteOnCooldown bool
	// PlayerHeavyReady and PlayerEliteReady report whether the player could
	// use them on its next turn, ignoring moves.
	PlayerHeavyReady   bool
	PlayerEliteReady   bool
	PlayerDefending    bool
	PlayerHasEffects   bool
	PlayerUntargetable bool

	EnemyHPRatio float64
	EnemyLow     bool
	EnemyHealthy bool
	Profile      combat.Profile
	Tags         []Tag
}

// BuildContext captures the decision context for enemy acting against player.
//
// Precondition: enemy and player must not be nil.
// Postcondition: Tags is empty; the model fills it from the strategy table.
func BuildContext(enemy, player *combat.Combatant) Context {
	if enemy == nil || player == nil {
		panic("ai.BuildContext: enemy and player must not be nil")
	}
	pr := player.HPRatio()
	er := enemy.HPRatio()
	cds := player.Cooldowns()
	ctx := Context{
		PlayerClass:           player.Archetype,
		PlayerHPRatio:         pr,
		PlayerLow:             pr < PlayerLowRatio,
		PlayerHealthy:         pr > PlayerHealthyRatio,
		PlayerHeavyOnCooldown: !cds.Ready(combat.CooldownHeavy),
		PlayerHealOnCooldown:  !cds.Ready(combat.CooldownHeal),
		PlayerDefending:       player.IsDefending(),
		PlayerHasEffects:      player.Statuses().Len() > 0,
		PlayerUntargetable:    player.Untargetable(),
		EnemyHPRatio:          er,
		EnemyLow:              er < EnemyLowRatio,
		EnemyHealthy:          er > EnemyHealthyRatio,
		Profile:               combat.ProfileNormal,
	}
	ctx.PlayerHeavyReady = !ctx.PlayerHeavyOnCooldown
	if key := player.Behavior().EliteCooldown(player); key != "" && player.Level >= combat.EliteMinLevel {
		ctx.PlayerEliteOnCooldown = !cds.Ready(key)
		ctx.PlayerEliteReady = !ctx.PlayerEliteOnCooldown
	}
	return ctx
}
