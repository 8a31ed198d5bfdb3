package core

import (
	"context"
	"fmt"

	"toolcrib/pkg/domain"
)

// NewCompartmentBoundsRule returns a warning rule flagging locations outside
// the physical storage or beyond the drawer's configured grid.
func NewCompartmentBoundsRule() domain.Rule {
	return compartmentBoundsRule{}
}

type compartmentBoundsRule struct{}

func (compartmentBoundsRule) Name() string { return RuleCompartmentBounds }

func (compartmentBoundsRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, tool := range changedFixtures(changes) {
		if tool.Location.IsUnassigned() {
			continue
		}
		msg := boundsProblem(tool.Location, view.DrawerGrid(tool.Cabinet, tool.Drawer))
		if msg == "" {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleCompartmentBounds,
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("fixture tool %s at %s: %s", tool.ID, tool.Location, msg),
			Entity:   domain.EntityFixtureTool,
			EntityID: tool.ID,
		})
	}
	return res, nil
}

func boundsProblem(loc domain.Location, grid domain.DrawerGrid) string {
	switch {
	case loc.Cabinet < 1 || loc.Cabinet > domain.MaxCabinet:
		return fmt.Sprintf("cabinet outside 1..%d", domain.MaxCabinet)
	case loc.Drawer < 1 || loc.Drawer > domain.MaxDrawer:
		return fmt.Sprintf("drawer outside 1..%d", domain.MaxDrawer)
	case loc.Compartment < 1 || loc.Compartment > grid.Capacity():
		return fmt.Sprintf("compartment outside 1..%d (%dx%d grid)", grid.Capacity(), grid.Rows, grid.Cols)
	}
	return ""
}
