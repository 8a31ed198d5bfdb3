package domain

import "strconv"

// Default drawer grid dimensions.
const (
	DefaultGridRows = 4
	DefaultGridCols = 6
)

// DrawerGrid holds the compartment layout of one drawer.
type DrawerGrid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Capacity returns the number of compartments in the grid.
func (g DrawerGrid) Capacity() int { return g.Rows * g.Cols }

// DrawerConfig maps cabinet -> drawer -> grid. Keys are decimal strings as
// stored in the JSON document.
type DrawerConfig map[string]map[string]DrawerGrid

// Grid returns the configured grid for (cabinet, drawer), filling missing
// or non-positive dimensions with the defaults.
func (c DrawerConfig) Grid(cabinet, drawer int) DrawerGrid {
	g := c[strconv.Itoa(cabinet)][strconv.Itoa(drawer)]
	if g.Rows <= 0 {
		g.Rows = DefaultGridRows
	}
	if g.Cols <= 0 {
		g.Cols = DefaultGridCols
	}
	return g
}

// Set records the grid for (cabinet, drawer).
func (c DrawerConfig) Set(cabinet, drawer int, grid DrawerGrid) {
	key := strconv.Itoa(cabinet)
	if c[key] == nil {
		c[key] = make(map[string]DrawerGrid)
	}
	c[key][strconv.Itoa(drawer)] = grid
}

// Clone returns an independent copy.
func (c DrawerConfig) Clone() DrawerConfig {
	out := make(DrawerConfig, len(c))
	for cabinet, drawers := range c {
		inner := make(map[string]DrawerGrid, len(drawers))
		for drawer, g := range drawers {
			inner[drawer] = g
		}
		out[cabinet] = inner
	}
	return out
}
