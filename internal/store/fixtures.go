package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"toolcrib/internal/core"
	"toolcrib/pkg/domain"
)

var fixtureColumns = []string{"ID", "Name", "Kasten", "Lade", "Fach", "Bestand", "MinBestand"}

// ErrFixtureIDRequired is returned when adding a fixture tool without an id.
var ErrFixtureIDRequired = errors.New("fixture tool id required")

// LoadFixtureTools returns the fixture-tool collection, reading the file
// unless a cached copy exists and forceReload is false. Rows whose integer
// columns do not parse are logged and skipped.
func (s *Store) LoadFixtureTools(ctx context.Context, forceReload bool) []domain.FixtureTool {
	if s.fixtures != nil && !forceReload {
		return slices.Clone(s.fixtures)
	}
	start := time.Now()
	tools, err := s.readFixtureTools()
	s.observe(ctx, "load_fixture_tools", start, err)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("fixture tools file not found", "path", s.paths.Fixtures)
		} else {
			s.logger.Error("load fixture tools failed", "path", s.paths.Fixtures, "error", err)
		}
		return []domain.FixtureTool{}
	}
	s.fixtures = tools
	return slices.Clone(tools)
}

func (s *Store) readFixtureTools() ([]domain.FixtureTool, error) {
	t, skipped, err := readTable(s.paths.Fixtures, 0)
	if err != nil {
		return nil, err
	}
	for _, re := range skipped {
		s.logger.Error("skipping unreadable fixture tool row", "path", s.paths.Fixtures, "line", re.line, "error", re.err)
	}
	tools := make([]domain.FixtureTool, 0, len(t.rows))
	for _, r := range t.rows {
		tool, err := parseFixtureRow(r)
		if err != nil {
			s.logger.Error("skipping invalid fixture tool row", "path", s.paths.Fixtures, "line", r.line, "error", err)
			continue
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

func parseFixtureRow(r row) (domain.FixtureTool, error) {
	id, ok := r.get("ID")
	if !ok {
		return domain.FixtureTool{}, errors.New("missing ID column")
	}
	name, ok := r.get("Name")
	if !ok {
		return domain.FixtureTool{}, errors.New("missing Name column")
	}
	tool := domain.FixtureTool{ID: id, Name: name}
	ints := []struct {
		col      string
		dst      *int
		optional bool
	}{
		{col: "Kasten", dst: &tool.Cabinet},
		{col: "Lade", dst: &tool.Drawer},
		{col: "Fach", dst: &tool.Compartment},
		{col: "Bestand", dst: &tool.Stock},
		{col: "MinBestand", dst: &tool.MinStock, optional: true},
	}
	for _, f := range ints {
		raw, ok := r.get(f.col)
		raw = strings.TrimSpace(raw)
		if f.optional && raw == "" {
			continue
		}
		if !ok {
			return domain.FixtureTool{}, fmt.Errorf("missing %s column", f.col)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.FixtureTool{}, fmt.Errorf("%s: %w", f.col, err)
		}
		*f.dst = n
	}
	return tool, nil
}

// SaveFixtureTools rewrites the fixture-tool file and replaces the cache.
func (s *Store) SaveFixtureTools(ctx context.Context, tools []domain.FixtureTool) error {
	start := time.Now()
	err := s.writeFixtureTools(ctx, tools)
	s.observe(ctx, "save_fixture_tools", start, err)
	if err != nil {
		s.fixtures = nil
		s.logger.Error("save fixture tools failed", "path", s.paths.Fixtures, "error", err)
		return fmt.Errorf("save fixture tools: %w", err)
	}
	s.fixtures = slices.Clone(tools)
	return nil
}

func (s *Store) writeFixtureTools(ctx context.Context, tools []domain.FixtureTool) error {
	records := make([][]string, 0, len(tools))
	for _, t := range tools {
		records = append(records, []string{
			t.ID,
			t.Name,
			strconv.Itoa(t.Cabinet),
			strconv.Itoa(t.Drawer),
			strconv.Itoa(t.Compartment),
			strconv.Itoa(t.Stock),
			strconv.Itoa(t.MinStock),
		})
	}
	payload, err := encodeTable(fixtureColumns, records, ';', true)
	if err != nil {
		return err
	}
	return s.writeFile(ctx, s.paths.Fixtures, payload)
}

// CheckLocationAvailability reports whether loc is free, ignoring the tool
// with id ignoreID. The unassigned location is always available.
func (s *Store) CheckLocationAvailability(ctx context.Context, loc domain.Location, ignoreID string) bool {
	return domain.LocationAvailable(s.LoadFixtureTools(ctx, false), loc, ignoreID)
}

// AddFixtureTool appends tool and saves. It returns false without error when
// the id already exists and a domain.RuleViolationError when the location is
// taken. Non-blocking violations are returned in the result.
func (s *Store) AddFixtureTool(ctx context.Context, tool domain.FixtureTool) (bool, domain.Result, error) {
	if strings.TrimSpace(tool.ID) == "" {
		return false, domain.Result{}, ErrFixtureIDRequired
	}
	tools := s.LoadFixtureTools(ctx, false)
	if slices.ContainsFunc(tools, func(t domain.FixtureTool) bool { return t.ID == tool.ID }) {
		return false, domain.Result{}, nil
	}
	candidate := append(tools, tool)
	res, err := s.evaluateFixtureChange(ctx, candidate, domain.Change{Entity: domain.EntityFixtureTool, Action: domain.ActionCreate, After: tool})
	if err != nil {
		return false, res, err
	}
	if err := s.SaveFixtureTools(ctx, candidate); err != nil {
		return false, res, err
	}
	return true, res, nil
}

// UpdateFixtureTool replaces the tool with the same id and saves. The
// location check runs first and excludes the tool itself; an unknown id
// returns false without error.
func (s *Store) UpdateFixtureTool(ctx context.Context, tool domain.FixtureTool) (bool, domain.Result, error) {
	tools := s.LoadFixtureTools(ctx, false)
	idx := slices.IndexFunc(tools, func(t domain.FixtureTool) bool { return t.ID == tool.ID })
	candidate := slices.Clone(tools)
	change := domain.Change{Entity: domain.EntityFixtureTool, Action: domain.ActionUpdate, After: tool}
	if idx >= 0 {
		change.Before = tools[idx]
		candidate[idx] = tool
	}
	res, err := s.evaluateFixtureChange(ctx, candidate, change)
	if err != nil {
		return false, res, err
	}
	if idx < 0 {
		return false, res, nil
	}
	if err := s.SaveFixtureTools(ctx, candidate); err != nil {
		return false, res, err
	}
	return true, res, nil
}

// DeleteFixtureTool removes the tool with id and saves. It reports whether a
// tool was removed.
func (s *Store) DeleteFixtureTool(ctx context.Context, id string) (bool, error) {
	tools := s.LoadFixtureTools(ctx, false)
	before := len(tools)
	kept := slices.DeleteFunc(tools, func(t domain.FixtureTool) bool { return t.ID == id })
	if len(kept) == before {
		return false, nil
	}
	if err := s.SaveFixtureTools(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// evaluateFixtureChange runs the rules engine over the candidate collection
// and converts blocking violations into a domain.RuleViolationError.
func (s *Store) evaluateFixtureChange(ctx context.Context, candidate []domain.FixtureTool, change domain.Change) (domain.Result, error) {
	view := core.NewFixtureView(candidate, s.LoadDrawerConfig(ctx))
	res, err := s.engine.Evaluate(ctx, view, []domain.Change{change})
	if err != nil {
		return res, fmt.Errorf("evaluate rules: %w", err)
	}
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.logger.Warn("fixture tool rule warning", "rule", v.Rule, "id", v.EntityID, "message", v.Message)
		}
	}
	if res.HasBlocking() {
		return res, domain.RuleViolationError{Result: res}
	}
	return res, nil
}
