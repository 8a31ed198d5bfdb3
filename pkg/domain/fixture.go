package domain

import "fmt"

// Physical bounds of the fixture-tool storage.
const (
	MaxCabinet = 2
	MaxDrawer  = 15
)

// Location addresses one compartment of the fixture-tool storage. The zero
// value is the "unassigned" sentinel, which any number of tools may share.
type Location struct {
	Cabinet     int
	Drawer      int
	Compartment int
}

// IsUnassigned reports whether l is the (0,0,0) sentinel.
func (l Location) IsUnassigned() bool {
	return l == Location{}
}

func (l Location) String() string {
	return fmt.Sprintf("K%d/L%d/F%d", l.Cabinet, l.Drawer, l.Compartment)
}

// FixtureTool is a fixture tool kept in a drawer compartment with a stock
// count.
type FixtureTool struct {
	ID   string
	Name string
	Location
	Stock    int
	MinStock int
}

// BelowMinimum reports whether the stock has fallen under the advisory
// minimum.
func (f FixtureTool) BelowMinimum() bool {
	return f.Stock < f.MinStock
}

// LocationOccupant returns the fixture tool other than ignoreID occupying
// loc. The sentinel location is never occupied.
func LocationOccupant(tools []FixtureTool, loc Location, ignoreID string) (FixtureTool, bool) {
	if loc.IsUnassigned() {
		return FixtureTool{}, false
	}
	for _, t := range tools {
		if ignoreID != "" && t.ID == ignoreID {
			continue
		}
		if t.Location == loc {
			return t, true
		}
	}
	return FixtureTool{}, false
}

// LocationAvailable reports whether loc is free for a tool, ignoring the
// tool with id ignoreID.
func LocationAvailable(tools []FixtureTool, loc Location, ignoreID string) bool {
	_, occupied := LocationOccupant(tools, loc, ignoreID)
	return !occupied
}
