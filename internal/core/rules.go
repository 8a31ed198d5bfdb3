// Package core holds the rule set guarding fixture-tool writes and the
// helpers that evaluate it over a candidate collection.
package core

import (
	"context"

	"toolcrib/pkg/domain"
)

// Rule names reported in violations.
const (
	RuleLocationUnique    = "location_unique"
	RuleCompartmentBounds = "compartment_bounds"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewLocationUniqueRule())
	engine.Register(NewCompartmentBoundsRule())
	return engine
}

// FixtureView is a RuleView over an in-memory fixture collection and drawer
// configuration.
type FixtureView struct {
	tools   []domain.FixtureTool
	drawers domain.DrawerConfig
}

// NewFixtureView wraps tools and drawers for rule evaluation.
func NewFixtureView(tools []domain.FixtureTool, drawers domain.DrawerConfig) FixtureView {
	return FixtureView{tools: tools, drawers: drawers}
}

// ListFixtureTools returns the candidate collection.
func (v FixtureView) ListFixtureTools() []domain.FixtureTool { return v.tools }

// FindFixtureTool looks up a tool by id.
func (v FixtureView) FindFixtureTool(id string) (domain.FixtureTool, bool) {
	for _, t := range v.tools {
		if t.ID == id {
			return t, true
		}
	}
	return domain.FixtureTool{}, false
}

// DrawerGrid returns the grid of (cabinet, drawer) with defaults applied.
func (v FixtureView) DrawerGrid(cabinet, drawer int) domain.DrawerGrid {
	return v.drawers.Grid(cabinet, drawer)
}

// AuditFixtures evaluates engine over every tool of the collection as if
// each had just been written.
func AuditFixtures(ctx context.Context, engine *domain.RulesEngine, tools []domain.FixtureTool, drawers domain.DrawerConfig) (domain.Result, error) {
	changes := make([]domain.Change, 0, len(tools))
	for _, t := range tools {
		changes = append(changes, domain.Change{Entity: domain.EntityFixtureTool, Action: domain.ActionUpdate, After: t})
	}
	return engine.Evaluate(ctx, NewFixtureView(tools, drawers), changes)
}

// changedFixtures extracts the written fixture tools from changes.
func changedFixtures(changes []domain.Change) []domain.FixtureTool {
	var out []domain.FixtureTool
	for _, c := range changes {
		if c.Entity != domain.EntityFixtureTool || c.Action == domain.ActionDelete {
			continue
		}
		if t, ok := c.After.(domain.FixtureTool); ok {
			out = append(out, t)
		}
	}
	return out
}
