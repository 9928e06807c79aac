// Package content embeds the default arena content tables: status effect
// definitions, class stats, the enemy catalog, and AI counter strategies.
package content

import "embed"

// FS holds the default content. Paths are relative to this directory.
//
//go:embed conditions/*.yaml classes.yaml enemies.yaml strategies.yaml
var FS embed.FS
