// Package sim runs batches of scripted arena combats for balance testing.
package sim

import (
	"fmt"
	"path/filepath"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/class"
	"github.com/cory-johannsen/arena/internal/game/condition"
	"github.com/cory-johannsen/arena/internal/game/enemy"
)

// Content is the full set of data tables a combat needs.
type Content struct {
	Conditions *condition.Registry
	Classes    *class.Table
	Catalog    *enemy.Catalog
	Strategies *ai.Strategies
}

// LoadContent reads the content tables from dir, or the embedded defaults
// when dir is empty. dir mirrors the embedded layout: conditions/*.yaml,
// classes.yaml, enemies.yaml and strategies.yaml.
//
// Postcondition: Returns fully validated content or a non-nil error.
func LoadContent(dir string) (*Content, error) {
	if dir == "" {
		return defaultContent()
	}
	reg, err := condition.LoadDirectory(filepath.Join(dir, "conditions"))
	if err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	classes, err := class.LoadFile(filepath.Join(dir, "classes.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	cat, err := enemy.LoadCatalogFile(filepath.Join(dir, "enemies.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	strats, err := ai.LoadStrategiesFile(filepath.Join(dir, "strategies.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading strategies: %w", err)
	}
	return &Content{Conditions: reg, Classes: classes, Catalog: cat, Strategies: strats}, nil
}

func defaultContent() (*Content, error) {
	reg, err := condition.Default()
	if err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	classes, err := class.Default()
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	cat, err := enemy.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	strats, err := ai.DefaultStrategies()
	if err != nil {
		return nil, fmt.Errorf("loading strategies: %w", err)
	}
	return &Content{Conditions: reg, Classes: classes, Catalog: cat, Strategies: strats}, nil
}
