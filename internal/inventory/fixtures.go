package inventory

import (
	"context"
	"fmt"

	"toolcrib/internal/core"
	"toolcrib/internal/journal"
	"toolcrib/pkg/domain"
)

// FixtureTools returns the cached fixture-tool collection.
func (s *Service) FixtureTools(ctx context.Context) []domain.FixtureTool {
	return s.store.LoadFixtureTools(ctx, false)
}

// AddFixtureTool registers tool. It returns false without error for a
// duplicate id and a domain.RuleViolationError when the location is taken.
func (s *Service) AddFixtureTool(ctx context.Context, tool domain.FixtureTool) (bool, domain.Result, error) {
	ok, res, err := s.store.AddFixtureTool(ctx, tool)
	if ok && err == nil {
		s.record(ctx, journal.Entry{Kind: journal.KindFixtureAdded, ToolID: tool.ID, ToolName: tool.Name, Quantity: tool.Stock})
	}
	return ok, res, err
}

// UpdateFixtureTool replaces the fixture tool with the same id.
func (s *Service) UpdateFixtureTool(ctx context.Context, tool domain.FixtureTool) (bool, domain.Result, error) {
	ok, res, err := s.store.UpdateFixtureTool(ctx, tool)
	if ok && err == nil {
		s.record(ctx, journal.Entry{Kind: journal.KindFixtureUpdated, ToolID: tool.ID, ToolName: tool.Name, Quantity: tool.Stock})
	}
	return ok, res, err
}

// DeleteFixtureTool removes the fixture tool with id.
func (s *Service) DeleteFixtureTool(ctx context.Context, id string) (bool, error) {
	var name string
	for _, t := range s.FixtureTools(ctx) {
		if t.ID == id {
			name = t.Name
			break
		}
	}
	ok, err := s.store.DeleteFixtureTool(ctx, id)
	if ok && err == nil {
		s.record(ctx, journal.Entry{Kind: journal.KindFixtureDeleted, ToolID: id, ToolName: name})
	}
	return ok, err
}

// TakeFixtureTool removes one piece from stock. It fails with ErrOutOfStock
// when none is left.
func (s *Service) TakeFixtureTool(ctx context.Context, id string) (domain.FixtureTool, error) {
	return s.adjustStock(ctx, id, -1, journal.KindStockTake)
}

// ReturnFixtureTool puts one piece back into stock.
func (s *Service) ReturnFixtureTool(ctx context.Context, id string) (domain.FixtureTool, error) {
	return s.adjustStock(ctx, id, 1, journal.KindStockReturn)
}

func (s *Service) adjustStock(ctx context.Context, id string, delta int, kind journal.Kind) (domain.FixtureTool, error) {
	var tool domain.FixtureTool
	found := false
	for _, t := range s.FixtureTools(ctx) {
		if t.ID == id {
			tool, found = t, true
			break
		}
	}
	if !found {
		return domain.FixtureTool{}, ErrNotFound{Entity: domain.EntityFixtureTool, ID: id}
	}
	if tool.Stock+delta < 0 {
		return tool, fmt.Errorf("%w: %s", ErrOutOfStock, id)
	}
	tool.Stock += delta
	if _, _, err := s.store.UpdateFixtureTool(ctx, tool); err != nil {
		return domain.FixtureTool{}, err
	}
	s.record(ctx, journal.Entry{Kind: kind, ToolID: id, ToolName: tool.Name, Quantity: 1})
	return tool, nil
}

// LowStock lists the fixture tools whose stock is below their minimum.
func (s *Service) LowStock(ctx context.Context) []domain.FixtureTool {
	var out []domain.FixtureTool
	for _, t := range s.FixtureTools(ctx) {
		if t.BelowMinimum() {
			out = append(out, t)
		}
	}
	return out
}

// DrawerOccupancy returns the grid of one drawer and the fixture tools
// stored in it keyed by compartment. When two tools share a compartment the
// first one listed wins.
func (s *Service) DrawerOccupancy(ctx context.Context, cabinet, drawer int) (domain.DrawerGrid, map[int]domain.FixtureTool) {
	grid := s.store.DrawerGrid(ctx, cabinet, drawer)
	occupied := make(map[int]domain.FixtureTool)
	for _, t := range s.FixtureTools(ctx) {
		if t.Cabinet != cabinet || t.Drawer != drawer || t.IsUnassigned() {
			continue
		}
		if _, taken := occupied[t.Compartment]; !taken {
			occupied[t.Compartment] = t
		}
	}
	return grid, occupied
}

// Audit evaluates the store's rules over the whole fixture-tool collection.
func (s *Service) Audit(ctx context.Context) (domain.Result, error) {
	return core.AuditFixtures(ctx, s.store.RulesEngine(), s.FixtureTools(ctx), s.store.LoadDrawerConfig(ctx))
}
