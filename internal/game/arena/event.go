package arena

import (
	"fmt"
	"time"
)

// Category tags an event log record.
type Category string

const (
	CategoryCombatStart   Category = "COMBAT_START"
	CategoryTurnStart     Category = "TURN_START"
	CategoryPlayerAction  Category = "PLAYER_ACTION"
	CategoryEnemyAction   Category = "ENEMY_ACTION"
	CategoryDamage        Category = "DAMAGE"
	CategoryStatusEffect  Category = "STATUS_EFFECT"
	CategoryStatusTick    Category = "STATUS_TICK"
	CategorySpecial       Category = "SPECIAL"
	CategoryReflection    Category = "REFLECTION"
	CategoryEnemyReaction Category = "ENEMY_REACTION"
	CategoryDialogue      Category = "DIALOGUE"
	CategoryFailedAction  Category = "FAILED_ACTION"
	CategoryCombatEnd     Category = "COMBAT_END"
	CategoryRewards       Category = "REWARDS"
)

// Event is one record of the combat's audit trail.
type Event struct {
	Turn      int       `json:"turn"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// String renders the event as "[turn] CATEGORY: message".
func (e Event) String() string {
	return fmt.Sprintf("[%d] %s: %s", e.Turn, e.Category, e.Message)
}

// Filter returns the events in log whose category is c, in order.
func Filter(log []Event, c Category) []Event {
	var out []Event
	for _, e := range log {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}
